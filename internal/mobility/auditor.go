package mobility

import (
	"fmt"
	"sort"

	"github.com/soleview/worklens/internal/model"
)

// Mismatch flags a team whose data-derived mobility level contradicts what
// its name suggests, for human review of the baseline inputs.
type Mismatch struct {
	TeamName         string
	WorkScheduleType string
	TeamType         model.TeamType
	Level            model.MobilityLevel
	T1ToORatio       float64
	Reason           string
}

// Audit scans cached profiles for field teams that look sedentary and office
// teams that look like road crews. Either usually means the team's events are
// landing under the wrong team name upstream.
func (s *Store) Audit() []Mismatch {
	var out []Mismatch
	for _, p := range s.Profiles() {
		reason := auditProfile(p)
		if reason == "" {
			continue
		}
		out = append(out, Mismatch{
			TeamName:         p.TeamName,
			WorkScheduleType: p.WorkScheduleType,
			TeamType:         p.TeamType,
			Level:            p.MobilityLevel,
			T1ToORatio:       p.T1ToORatio,
			Reason:           reason,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamName != out[j].TeamName {
			return out[i].TeamName < out[j].TeamName
		}
		return out[i].WorkScheduleType < out[j].WorkScheduleType
	})
	return out
}

func auditProfile(p model.TeamMobilityProfile) string {
	switch p.TeamType {
	case model.TeamField:
		// Field teams floor at MEDIUM, so a ratio under the ladder's lowest
		// cutoff means the floor fired on sedentary-looking data.
		if p.T1ToORatio < fieldLadder[len(fieldLadder)-1].Min {
			return fmt.Sprintf("field team held at floor %s (ratio %.2f)", p.MobilityLevel, p.T1ToORatio)
		}
	case model.TeamOffice:
		if levelRank[p.MobilityLevel] > levelRank[model.MobilityHigh] {
			return fmt.Sprintf("office team measured %s (ratio %.2f)", p.MobilityLevel, p.T1ToORatio)
		}
	}
	return ""
}
