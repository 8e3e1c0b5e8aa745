package wizard

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SliderStep is the granularity of a severity slider.
const SliderStep = 0.1

// Gender values accepted in PersonalInfo.
const (
	GenderUnset  = ""
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// FamilyHistory values accepted in PersonalInfo.
const (
	FamilyHistoryNo      = "no"
	FamilyHistoryYes     = "yes"
	FamilyHistoryUnknown = "unknown"
)

// Genders lists the selectable gender values in display order.
var Genders = []string{GenderMale, GenderFemale, GenderOther}

// FamilyHistories lists the selectable family-history values in display order.
var FamilyHistories = []string{FamilyHistoryNo, FamilyHistoryYes, FamilyHistoryUnknown}

// PersonalInfo is collected on the first step. Age stays a string because
// it is sent to the scorer verbatim.
type PersonalInfo struct {
	Age           string `json:"age" yaml:"age"`
	Gender        string `json:"gender" yaml:"gender"`
	FamilyHistory string `json:"familyHistory" yaml:"familyHistory"`
}

// BlankPersonalInfo returns the values a fresh wizard starts with.
func BlankPersonalInfo() PersonalInfo {
	return PersonalInfo{FamilyHistory: FamilyHistoryNo}
}

// Validate checks the fields required to leave the personal-info step.
func (p PersonalInfo) Validate() error {
	age, err := strconv.Atoi(strings.TrimSpace(p.Age))
	if err != nil {
		return &ValidationError{Field: "age", Reason: "must be a whole number"}
	}
	if age < 1 || age > 120 {
		return &ValidationError{Field: "age", Reason: "must be between 1 and 120"}
	}
	if err := p.validateEnums(); err != nil {
		return err
	}
	if p.Gender == GenderUnset {
		return &ValidationError{Field: "gender", Reason: "is required"}
	}
	return nil
}

func (p PersonalInfo) validateEnums() error {
	switch p.Gender {
	case GenderUnset, GenderMale, GenderFemale, GenderOther:
	default:
		return &ValidationError{Field: "gender", Reason: fmt.Sprintf("unknown value %q", p.Gender)}
	}
	switch p.FamilyHistory {
	case FamilyHistoryNo, FamilyHistoryYes, FamilyHistoryUnknown:
	default:
		return &ValidationError{Field: "familyHistory", Reason: fmt.Sprintf("unknown value %q", p.FamilyHistory)}
	}
	return nil
}

// Answers maps symptom ids to severities in [0, 1].
type Answers map[string]float64

// NewAnswers returns an answer set with every question at 0.0.
func NewAnswers() Answers {
	a := make(Answers, QuestionCount)
	for _, q := range Questions {
		a[q.ID] = 0
	}
	return a
}

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Clamp forces v into [0, 1]. NaN becomes 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// snap rounds to the slider granularity so repeated nudges don't drift.
func snap(v float64) float64 {
	return math.Round(v*10) / 10
}

// Submission is the snapshot of wizard state sent to the scorer.
type Submission struct {
	Answers      Answers
	PersonalInfo PersonalInfo
}

// MarshalJSON flattens the answers into the top-level object alongside a
// nested "personalInfo".
func (s Submission) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(s.Answers)+1)
	for k, v := range s.Answers {
		body[k] = v
	}
	body["personalInfo"] = s.PersonalInfo
	return json.Marshal(body)
}

// UnmarshalJSON reverses MarshalJSON. Unknown numeric keys are kept as answers.
func (s *Submission) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Answers = make(Answers, len(raw))
	for k, v := range raw {
		if k == "personalInfo" {
			if err := json.Unmarshal(v, &s.PersonalInfo); err != nil {
				return fmt.Errorf("personalInfo: %w", err)
			}
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			return fmt.Errorf("answer %q: %w", k, err)
		}
		s.Answers[k] = f
	}
	return nil
}

// Validate checks shape before transmission: exactly one in-range answer
// per question and complete personal info (age 1-120, gender set).
func (s Submission) Validate() error {
	if len(s.Answers) != QuestionCount {
		return &ValidationError{Field: "answers", Reason: fmt.Sprintf("expected %d answers, got %d", QuestionCount, len(s.Answers))}
	}
	for _, q := range Questions {
		v, ok := s.Answers[q.ID]
		if !ok {
			return &ValidationError{Field: q.ID, Reason: "missing"}
		}
		if math.IsNaN(v) || v < 0 || v > 1 {
			return &ValidationError{Field: q.ID, Reason: "must be within [0, 1]"}
		}
	}
	return s.PersonalInfo.Validate()
}
