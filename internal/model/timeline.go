package model

// ActivityState is the work-semantic state assigned to a timeline entry.
type ActivityState string

// Activity states.
const (
	StateEntry       ActivityState = "ENTRY"
	StateExit        ActivityState = "EXIT"
	StateWork        ActivityState = "WORK"
	StatePreparation ActivityState = "PREPARATION"
	StateMeeting     ActivityState = "MEETING"
	StateEducation   ActivityState = "EDUCATION"
	StateRest        ActivityState = "REST"
	StateMeal        ActivityState = "MEAL"
	StateTransit     ActivityState = "TRANSIT"
	StateNonWork     ActivityState = "NON_WORK"
)

// WorkJudgment is the coarse work/non-work verdict derived from a state.
type WorkJudgment string

// Work judgments.
const (
	JudgmentClockIn  WorkJudgment = "CLOCK_IN"
	JudgmentClockOut WorkJudgment = "CLOCK_OUT"
	JudgmentWork     WorkJudgment = "WORK"
	JudgmentFocused  WorkJudgment = "FOCUSED"
	JudgmentNonWork  WorkJudgment = "NON_WORK"
	JudgmentMovement WorkJudgment = "MOVEMENT"
	JudgmentMeal     WorkJudgment = "MEAL"
)

// JudgmentFor maps an activity state to its work judgment.
func JudgmentFor(state ActivityState) WorkJudgment {
	switch state {
	case StateWork, StatePreparation, StateMeeting, StateEducation:
		return JudgmentWork
	case StateMeal:
		return JudgmentMeal
	case StateRest, StateNonWork:
		return JudgmentNonWork
	case StateEntry:
		return JudgmentClockIn
	case StateExit:
		return JudgmentClockOut
	default:
		return JudgmentMovement
	}
}

// Heuristic rule labels recorded on timeline entries for diagnostics.
const (
	RuleT1G1Fold      = "t1_g1_fold"
	RuleT1LongDwell   = "t1_long_dwell"
	RuleG2Preparation = "g2_preparation"
)

// TimelineEntry is a classified tag event. Duration of entry i is the gap to
// event i+1; the final entry of a day has no derived duration.
type TimelineEntry struct {
	Event           TagEvent
	State           ActivityState
	Judgment        WorkJudgment
	Rule            string // heuristic that fired, empty when classification was direct
	Confidence      float64
	DurationMinutes int
}
