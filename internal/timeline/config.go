package timeline

import "github.com/soleview/worklens/internal/model"

// Config holds every tunable the state machine uses. Injecting it keeps the
// confidence tables out of the classification logic and makes threshold
// tuning a config change rather than a redeploy.
type Config struct {
	// BaseConfidence per tag code. G1 is absent here: its confidence
	// scales with dwell time through the ladder below.
	BaseConfidence map[model.TagCode]float64

	// G1 dwell ladder.
	G1ShortDwellMinutes  int
	G1MediumDwellMinutes int
	G1ShortConfidence    float64
	G1MediumConfidence   float64
	G1LongConfidence     float64

	// Fixed meal durations.
	MealDineInMinutes  int
	MealTakeoutMinutes int

	// T1 handling.
	T1ToG1WindowMinutes int                        // fold window for the T1->T1->G1 pattern
	T1LongDwellMinutes  int                        // dwell beyond this is flagged as an outlier
	T1FoldConfidence    map[model.JobGroup]float64 // confidence of a folded T1, per job group
}

// DefaultConfig returns the fixed confidence and duration tables.
func DefaultConfig() Config {
	return Config{
		BaseConfidence: map[model.TagCode]float64{
			model.TagT2: 1.0,
			model.TagT3: 1.0,
			model.TagM1: 1.0,
			model.TagM2: 1.0,
			model.TagO:  1.0,
			model.TagG3: 0.95,
			model.TagG4: 0.95,
			model.TagG2: 0.90,
			model.TagN1: 0.90,
			model.TagN2: 0.90,
			model.TagT1: 0.85,
		},
		G1ShortDwellMinutes:  5,
		G1MediumDwellMinutes: 15,
		G1ShortConfidence:    0.75,
		G1MediumConfidence:   0.85,
		G1LongConfidence:     0.95,
		MealDineInMinutes:    30,
		MealTakeoutMinutes:   10,
		T1ToG1WindowMinutes:  30,
		T1LongDwellMinutes:   120,
		T1FoldConfidence: map[model.JobGroup]float64{
			model.JobProduction: 0.95,
			model.JobResearch:   0.90,
			model.JobOffice:     0.85,
			model.JobManagement: 0.80,
		},
	}
}
