package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/carescope/internal/store"
)

// LabFieldKind says how a thyroid lab field is entered.
type LabFieldKind int

const (
	LabNumeric LabFieldKind = iota // free decimal, "" = not measured
	LabSex                         // "0" female, "1" male
	LabFlag                        // "0" no, "1" yes, "" unknown
)

// LabField describes one input of the thyroid classifier.
type LabField struct {
	Key   string
	Label string
	Kind  LabFieldKind
}

// ThyroidFields lists the classifier inputs in form order.
var ThyroidFields = []LabField{
	{"age", "Age", LabNumeric},
	{"sex", "Sex", LabSex},
	{"TSH", "TSH Level", LabNumeric},
	{"T3", "T3 Level", LabNumeric},
	{"TT4", "TT4 Level", LabNumeric},
	{"on_thyroxine", "On Thyroxine", LabFlag},
	{"query_on_thyroxine", "Query On Thyroxine", LabFlag},
	{"on_antithyroid_medication", "On Antithyroid Medication", LabFlag},
	{"sick", "Sick", LabFlag},
	{"pregnant", "Pregnant", LabFlag},
	{"thyroid_surgery", "Thyroid Surgery", LabFlag},
	{"I131_treatment", "I131 Treatment", LabFlag},
	{"query_hypothyroid", "Query Hypothyroid", LabFlag},
	{"query_hyperthyroid", "Query Hyperthyroid", LabFlag},
	{"tumor", "Tumor", LabFlag},
	{"psych", "Psych", LabFlag},
}

// ThyroidLabRequest holds every field as the string the service expects.
// An empty string means unknown.
type ThyroidLabRequest map[string]string

// NewThyroidLabRequest returns a request with every field unknown.
func NewThyroidLabRequest() ThyroidLabRequest {
	r := make(ThyroidLabRequest, len(ThyroidFields))
	for _, f := range ThyroidFields {
		r[f.Key] = ""
	}
	return r
}

// Validate checks each present value against its field kind.
func (r ThyroidLabRequest) Validate() error {
	for _, f := range ThyroidFields {
		v := strings.TrimSpace(r[f.Key])
		if v == "" {
			continue
		}
		switch f.Kind {
		case LabNumeric:
			n, err := strconv.ParseFloat(v, 64)
			if err != nil || n < 0 {
				return fmt.Errorf("%s: must be a non-negative number", f.Label)
			}
		case LabSex, LabFlag:
			if v != "0" && v != "1" {
				return fmt.Errorf("%s: must be 0 or 1", f.Label)
			}
		}
	}
	for k := range r {
		if !knownLabField(k) {
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}

func knownLabField(key string) bool {
	for _, f := range ThyroidFields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Food is one diet recommendation.
type Food struct {
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

// DietRecommendations lists foods to favour and to limit.
type DietRecommendations struct {
	Include []Food `json:"include"`
	Avoid   []Food `json:"avoid"`
}

// Empty reports whether both lists are empty.
func (d DietRecommendations) Empty() bool {
	return len(d.Include) == 0 && len(d.Avoid) == 0
}

// ThyroidLabResult is the classifier's answer.
type ThyroidLabResult struct {
	Prediction string `json:"prediction"`
	// Explanation may contain simple HTML paragraphs.
	Explanation string              `json:"explanation"`
	Diet        DietRecommendations `json:"dietRecommendations"`
}

type thyroidReply struct {
	ThyroidLabResult
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// PredictThyroid posts lab values to /api/predict. A reply with
// success=false wraps ErrPredictionFailed with the server's message.
func (c *Client) PredictThyroid(ctx context.Context, req ThyroidLabRequest) (*ThyroidLabResult, error) {
	started := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Send every key, even unknown ones, the way the form does.
	body := NewThyroidLabRequest()
	for k, v := range req {
		body[k] = strings.TrimSpace(v)
	}
	sent, _ := json.Marshal(body)

	var reply thyroidReply
	raw, err := c.postJSON(ctx, call{
		service: ServiceThyroid,
		path:    "/api/predict",
		schema:  schemaThyroid,
	}, body, &reply)
	if err == nil && !reply.Success {
		msg := reply.Error
		if msg == "" {
			msg = "Unknown error occurred"
		}
		err = fmt.Errorf("%s: %w: %s", ServiceThyroid, ErrPredictionFailed, msg)
	}

	summary := ""
	if err == nil {
		summary = "Classified as " + reply.Prediction
	}
	c.record(ctx, store.KindThyroidLab, sent, raw, summary, started, err)

	if err != nil {
		return nil, err
	}
	res := reply.ThyroidLabResult
	return &res, nil
}
