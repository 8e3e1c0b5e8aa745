package predict

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/carescope/internal/store"
	"github.com/abhisek/carescope/internal/wizard"
)

var _ wizard.Scorer = (*Client)(nil)

// Assess posts a symptom survey to /api/assess. The token header is only
// sent when token is non-empty.
func (c *Client) Assess(ctx context.Context, token string, sub wizard.Submission) (*wizard.Result, error) {
	started := time.Now()

	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ServiceAssess, err)
	}
	body, err := sub.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", ServiceAssess, err)
	}
	if err := validate(schemaAssessRequest, body); err != nil {
		return nil, fmt.Errorf("%s: request does not match schema: %w", ServiceAssess, err)
	}

	var res wizard.Result
	raw, err := c.postJSON(ctx, call{
		service: ServiceAssess,
		path:    "/api/assess",
		token:   token,
		schema:  schemaAssessResponse,
	}, sub, &res)

	summary := ""
	if err == nil {
		summary = fmt.Sprintf("%s (%.0f%% confidence)", wizard.Headline(res), res.Confidence*100)
	}
	c.record(ctx, store.KindSymptomSurvey, body, raw, summary, started, err)

	if err != nil {
		return nil, err
	}
	return &res, nil
}
