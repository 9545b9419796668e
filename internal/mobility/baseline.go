package mobility

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/soleview/worklens/internal/common"
	"github.com/soleview/worklens/internal/model"
	"github.com/soleview/worklens/internal/service"
)

// Config controls baseline computation.
type Config struct {
	// MinSampleSize is the minimum event count a team's aggregate must have
	// before a real baseline is computed; smaller teams fall back to the
	// default profile so a handful of badge taps can't set team policy.
	MinSampleSize int
}

// DefaultConfig returns production baseline settings.
func DefaultConfig() Config {
	return Config{MinSampleSize: 500}
}

// DefaultBaselineConfidence is used for teams without a usable baseline.
const DefaultBaselineConfidence = 0.35

// Store caches team mobility profiles computed from aggregate tag statistics.
// Lookups are lock-cheap; Refresh replaces the whole cache atomically.
type Store struct {
	stats  service.MobilityStatsStore
	cfg    Config
	rules  []TeamTypeRule
	logger *slog.Logger

	mu       sync.RWMutex
	profiles map[string]model.TeamMobilityProfile
}

// NewStore creates a Store with default configuration.
func NewStore(stats service.MobilityStatsStore, logger *slog.Logger) *Store {
	return NewStoreWithConfig(stats, logger, DefaultConfig())
}

// NewStoreWithConfig creates a Store with explicit configuration.
func NewStoreWithConfig(stats service.MobilityStatsStore, logger *slog.Logger, cfg Config) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		stats:    stats,
		cfg:      cfg,
		rules:    DefaultTeamTypeRules(),
		logger:   logger,
		profiles: make(map[string]model.TeamMobilityProfile),
	}
}

func profileKey(teamName, scheduleType string) string {
	return teamName + "|" + scheduleType
}

// Refresh recomputes every team profile from the stats store and swaps the
// cache. The previous cache stays live until the swap, so concurrent lookups
// never observe a half-built state.
func (s *Store) Refresh(ctx context.Context) error {
	stats, err := s.stats.TeamStats(ctx)
	if err != nil {
		return fmt.Errorf("%w: loading team stats: %v", common.ErrBaselineUnavailable, err)
	}

	profiles := make(map[string]model.TeamMobilityProfile, len(stats))
	skipped := 0
	for _, st := range stats {
		if st.TotalEvents < s.cfg.MinSampleSize {
			skipped++
			continue
		}
		p := s.Compute(st)
		profiles[profileKey(p.TeamName, p.WorkScheduleType)] = p
	}

	s.mu.Lock()
	s.profiles = profiles
	s.mu.Unlock()

	s.logger.Info("mobility baselines refreshed",
		"teams", len(profiles),
		"below_sample_floor", skipped,
	)
	return nil
}

// Compute derives a single team's mobility profile from its tag aggregate.
func (s *Store) Compute(st model.TeamTagStats) model.TeamMobilityProfile {
	oEvents := st.OEvents
	if oEvents < 1 {
		oEvents = 1
	}
	ratio := float64(st.T1Events) / float64(oEvents)

	teamType := TeamTypeFor(s.rules, st.TeamName)
	level := LevelFor(ratio, teamType)
	conf := adjustForTeamSize(BaselineConfidence(level), st.TeamSize)

	return model.TeamMobilityProfile{
		TeamName:           st.TeamName,
		WorkScheduleType:   st.WorkScheduleType,
		TeamType:           teamType,
		MobilityLevel:      level,
		TotalEvents:        st.TotalEvents,
		T1Events:           st.T1Events,
		OEvents:            st.OEvents,
		T1ToORatio:         ratio,
		BaselineConfidence: conf,
	}
}

// adjustForTeamSize nudges the baseline for very small or very large teams.
// Small teams carry more per-person noise; large ones average it out.
func adjustForTeamSize(conf float64, teamSize int) float64 {
	switch {
	case teamSize > 0 && teamSize < 5:
		conf *= 0.95
	case teamSize > 50:
		conf *= 1.05
	}
	return math.Max(0.15, math.Min(0.70, conf))
}

// Lookup returns the profile for a team and schedule type. It falls back to
// the team's lexicographically first schedule variant, then to the default
// profile. The second return reports whether a computed (non-default) profile
// was found.
func (s *Store) Lookup(teamName, scheduleType string) (model.TeamMobilityProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.profiles[profileKey(teamName, scheduleType)]; ok {
		return p, true
	}
	// Map order is random; pick the fallback variant deterministically so the
	// same lookup always resolves to the same baseline.
	var fallback *model.TeamMobilityProfile
	for _, p := range s.profiles {
		if p.TeamName != teamName {
			continue
		}
		if fallback == nil || p.WorkScheduleType < fallback.WorkScheduleType {
			v := p
			fallback = &v
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return DefaultProfile(teamName, scheduleType), false
}

// DefaultProfile is the conservative fallback for teams without enough data.
func DefaultProfile(teamName, scheduleType string) model.TeamMobilityProfile {
	return model.TeamMobilityProfile{
		TeamName:           teamName,
		WorkScheduleType:   scheduleType,
		TeamType:           model.TeamUnknown,
		MobilityLevel:      model.MobilityMedium,
		BaselineConfidence: DefaultBaselineConfidence,
	}
}

// Profiles returns a snapshot of all cached profiles, ordered by team then
// schedule.
func (s *Store) Profiles() []model.TeamMobilityProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TeamMobilityProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamName != out[j].TeamName {
			return out[i].TeamName < out[j].TeamName
		}
		return out[i].WorkScheduleType < out[j].WorkScheduleType
	})
	return out
}
