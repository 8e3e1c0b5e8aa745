package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/carescope/internal/store"
)

// LungFactor is one yes/no input of the lung model.
type LungFactor struct {
	Key   string
	Label string
	// Primary factors are shown in their own group.
	Primary bool
}

// LungFactors lists the yes/no inputs in form order.
var LungFactors = []LungFactor{
	{"SMOKING", "Smoking Habit", true},
	{"ALCOHOL", "Alcohol Consumption", true},
	{"YELLOW_FINGERS", "Yellow Fingers", true},
	{"PEER_PRESSURE", "Peer Pressure", true},
	{"ANXIETY", "Anxiety", false},
	{"CHRONIC DISEASE", "Chronic Disease", false},
	{"FATIGUE", "Fatigue", false},
	{"ALLERGY", "Allergy", false},
	{"WHEEZING", "Wheezing", false},
	{"COUGHING", "Coughing", false},
	{"SHORTNESS OF BREATH", "Shortness of Breath", false},
	{"SWALLOWING DIFFICULTY", "Swallowing Difficulty", false},
	{"CHEST PAIN", "Chest Pain", false},
}

// LungRequest is the lung model's input.
type LungRequest struct {
	Gender string // "M" or "F"
	Age    int
	// Factors maps LungFactor keys to yes. Missing keys are no.
	Factors map[string]bool
}

// NewLungRequest returns the form defaults: male, 30, every factor no.
func NewLungRequest() LungRequest {
	return LungRequest{Gender: "M", Age: 30, Factors: map[string]bool{}}
}

// Validate checks gender and age.
func (r LungRequest) Validate() error {
	if r.Gender != "M" && r.Gender != "F" {
		return fmt.Errorf("gender must be M or F, got %q", r.Gender)
	}
	if r.Age < 1 || r.Age > 120 {
		return fmt.Errorf("age must be between 1 and 120")
	}
	for k := range r.Factors {
		if !knownLungFactor(k) {
			return fmt.Errorf("unknown factor %q", k)
		}
	}
	return nil
}

func knownLungFactor(key string) bool {
	for _, f := range LungFactors {
		if f.Key == key {
			return true
		}
	}
	return false
}

// MarshalJSON encodes factors as 1 = no, 2 = yes.
func (r LungRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(LungFactors)+2)
	body["GENDER"] = r.Gender
	body["AGE"] = r.Age
	for _, f := range LungFactors {
		v := 1
		if r.Factors[f.Key] {
			v = 2
		}
		body[f.Key] = v
	}
	return json.Marshal(body)
}

// LungResult is the model's answer.
type LungResult struct {
	Prediction  string  `json:"prediction"` // YES or NO
	Probability float64 `json:"probability"`
	Message     string  `json:"message"`
}

// Positive reports a YES prediction.
func (r LungResult) Positive() bool { return r.Prediction == "YES" }

// Risk levels for a lung probability.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
)

// RiskLevel buckets p: below 0.3 Low, below 0.6 Moderate, otherwise High.
func RiskLevel(p float64) string {
	switch {
	case p < 0.3:
		return RiskLow
	case p < 0.6:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// PredictLung posts the form to /predict_form.
func (c *Client) PredictLung(ctx context.Context, req LungRequest) (*LungResult, error) {
	started := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sent, _ := req.MarshalJSON()

	var res LungResult
	raw, err := c.postJSON(ctx, call{
		service: ServiceLung,
		path:    "/predict_form",
		schema:  schemaLung,
	}, req, &res)

	summary := ""
	if err == nil {
		summary = fmt.Sprintf("%s risk (%.1f%%)", RiskLevel(res.Probability), res.Probability*100)
	}
	c.record(ctx, store.KindLung, sent, raw, summary, started, err)

	if err != nil {
		return nil, err
	}
	return &res, nil
}
