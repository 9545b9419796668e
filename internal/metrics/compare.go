package metrics

import (
	"fmt"
	"math"

	"github.com/soleview/worklens/internal/common"
	"github.com/soleview/worklens/internal/model"
)

// Compare contrasts the traditional and Ground Rules estimates against the
// hours the employee claimed. Claims under the configured minimum return
// ErrInsufficientClaim: dividing by a near-zero claim produces percentages
// nobody should act on.
func (c *Calculator) Compare(m model.WorkMetrics, claimedHours float64) (model.ComparisonResult, error) {
	if claimedHours < c.cfg.MinClaimHours {
		return model.ComparisonResult{}, fmt.Errorf("%w: claimed %.2fh", common.ErrInsufficientClaim, claimedHours)
	}

	traditionalHours := float64(m.WorkTime) / 60
	groundRulesHours := traditionalHours
	if m.GroundRules != nil {
		groundRulesHours = m.GroundRules.GroundRulesWorkTime / 60
	}

	result := model.ComparisonResult{
		ClaimedHours: claimedHours,
		Traditional:  c.deviation(traditionalHours, claimedHours),
		GroundRules:  c.deviation(groundRulesHours, claimedHours),
	}

	traditionalErr := math.Abs(result.Traditional.DifferenceHours)
	groundRulesErr := math.Abs(result.GroundRules.DifferenceHours)
	if traditionalErr > 0 {
		result.ImprovementPct = (traditionalErr - groundRulesErr) / traditionalErr * 100
	}
	return result, nil
}

func (c *Calculator) deviation(estimateHours, claimedHours float64) model.Deviation {
	diff := estimateHours - claimedHours
	d := model.Deviation{
		DifferenceHours: diff,
		Percentage:      diff / claimedHours * 100,
	}
	switch {
	case math.Abs(diff) < c.cfg.MatchToleranceHours:
		d.Status = model.DeviationMatch
	case diff < 0:
		d.Status = model.DeviationUnder
	default:
		d.Status = model.DeviationOver
	}
	return d
}
