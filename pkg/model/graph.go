package model

// Mastery represents a learner's recorded mastery of a concept
type Mastery string

const (
	MasteryNotStarted Mastery = "not_started"
	MasteryWeak       Mastery = "weak"
	MasteryLearning   Mastery = "learning"
	MasteryMastered   Mastery = "mastered"
)

// Valid returns true for the four known mastery levels
func (m Mastery) Valid() bool {
	switch m {
	case MasteryNotStarted, MasteryWeak, MasteryLearning, MasteryMastered:
		return true
	}
	return false
}

// Label returns the human-readable mastery name
func (m Mastery) Label() string {
	switch m {
	case MasteryNotStarted:
		return "Not Started"
	case MasteryWeak:
		return "Weak"
	case MasteryLearning:
		return "Learning"
	case MasteryMastered:
		return "Mastered"
	}
	return "Unknown"
}

// Score scale used by the rubric scorer (0..MaxScore)
const (
	MaxScore             = 15
	MasteredScoreMinimum = 12
	LearningScoreMinimum = 7
	MinDifficulty        = 1
	MaxDifficulty        = 5
)

// MasteryFromScore maps a rubric score onto a mastery level
func MasteryFromScore(score float64) Mastery {
	switch {
	case score >= MasteredScoreMinimum:
		return MasteryMastered
	case score >= LearningScoreMinimum:
		return MasteryLearning
	default:
		return MasteryWeak
	}
}

// ReadinessState is the derived, per-node classification that drives rendering
type ReadinessState string

const (
	StateStartHere  ReadinessState = "start_here"
	StateUnlocked   ReadinessState = "unlocked"
	StateInProgress ReadinessState = "in_progress"
	StateCompleted  ReadinessState = "completed"
	StateLocked     ReadinessState = "locked"
)

// AllStates lists every readiness state in display order
var AllStates = []ReadinessState{
	StateStartHere,
	StateUnlocked,
	StateInProgress,
	StateCompleted,
	StateLocked,
}

// Valid returns true if s is one of the five readiness states
func (s ReadinessState) Valid() bool {
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

// Actionable returns true if clicking a node in this state should open its detail view
func (s ReadinessState) Actionable() bool {
	return s != StateLocked
}
