package wizard

import "fmt"

// StepKind discriminates the wizard's display states.
type StepKind int

const (
	KindPersonalInfo StepKind = iota // Collecting age, gender, family history
	KindSymptom                      // Rating one symptom question
	KindResults                      // Showing the scorer's verdict
)

func (k StepKind) String() string {
	switch k {
	case KindPersonalInfo:
		return "personal-info"
	case KindSymptom:
		return "symptom"
	case KindResults:
		return "results"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// Step is the wizard's position. Index is meaningful only for KindSymptom,
// where it ranges over 1..QuestionCount.
type Step struct {
	Kind  StepKind
	Index int
}

// StepPersonalInfo is the first step.
func StepPersonalInfo() Step { return Step{Kind: KindPersonalInfo} }

// StepSymptom returns the step for symptom question k (1-based).
func StepSymptom(k int) Step { return Step{Kind: KindSymptom, Index: k} }

// StepResults is the terminal display step.
func StepResults() Step { return Step{Kind: KindResults} }

// Number maps the step onto the numeric progress counter: 0 for personal
// info, k for Symptom(k), and QuestionCount for results.
func (s Step) Number() int {
	switch s.Kind {
	case KindPersonalInfo:
		return 0
	case KindSymptom:
		return s.Index
	case KindResults:
		return QuestionCount
	}
	return 0
}

// Question returns the symptom question shown at this step.
func (s Step) Question() (Question, bool) {
	if s.Kind != KindSymptom || s.Index < 1 || s.Index > QuestionCount {
		return Question{}, false
	}
	return Questions[s.Index-1], true
}

func (s Step) String() string {
	if s.Kind == KindSymptom {
		return fmt.Sprintf("symptom(%d)", s.Index)
	}
	return s.Kind.String()
}
