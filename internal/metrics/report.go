package metrics

import (
	"fmt"

	"github.com/soleview/worklens/internal/model"
)

// GenerateAnomalyReport grades the day's anomaly score and attaches review
// guidance proportional to how far the pattern strays from the team's.
func GenerateAnomalyReport(m model.WorkMetrics) model.AnomalyReport {
	var score, confidence float64
	if m.GroundRules != nil {
		score = m.GroundRules.AnomalyScore
		confidence = m.GroundRules.GroundRulesConfidence
	}

	report := model.AnomalyReport{HasAnomalies: score > 0}

	switch {
	case score == 0:
		report.Level = model.AnomalyNone
		report.Summary = "Movement pattern matches the team baseline."
	case score <= 20:
		report.Level = model.AnomalyLow
		report.Summary = fmt.Sprintf("Some movement deviates from the team baseline (score %.0f).", score)
		report.Recommendations = append(report.Recommendations,
			"Check for special assignments or schedule changes on this day.")
	case score <= 50:
		report.Level = model.AnomalyMedium
		report.Summary = fmt.Sprintf("Movement pattern differs noticeably from the team average (score %.0f).", score)
		report.Recommendations = append(report.Recommendations,
			"Review whether the work schedule or duty type changed.",
			"Check for project work or offsite duties on this day.")
	default:
		report.Level = model.AnomalyHigh
		report.Summary = fmt.Sprintf("Movement pattern diverges strongly from the team baseline (score %.0f).", score)
		report.Recommendations = append(report.Recommendations,
			"A detailed review of this day's work record is needed.",
			"Confirm the pattern with the employee's manager.",
			"Rule out badge reader or data collection faults.")
	}

	if m.GroundRules != nil && confidence < 50 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Classification confidence is low (%.0f); more tag data may be needed.", confidence))
	}
	return report
}
