package store

import (
	"context"
	"time"
)

// QueryOpts configures list queries.
type QueryOpts struct {
	Limit int    // max results (0 = unlimited)
	Kind  string // assessments only; "" = all kinds
}

// Assessment kinds recorded in history.
const (
	KindSymptomSurvey = "symptom-survey"
	KindThyroidLab    = "thyroid-lab"
	KindLung          = "lung"
	KindBrainScan     = "brain-scan"
)

// KindLabel is the display name of an assessment kind.
func KindLabel(kind string) string {
	switch kind {
	case KindSymptomSurvey:
		return "Symptom survey"
	case KindThyroidLab:
		return "Thyroid lab test"
	case KindLung:
		return "Lung risk"
	case KindBrainScan:
		return "Brain scan"
	}
	return kind
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo records and reads LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one event, or nil if it doesn't exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)
}

// AssessmentData describes one submission to a remote scorer.
type AssessmentData struct {
	Kind         string
	Request      string // JSON body as sent (file name for uploads)
	Response     string // raw response body, empty on transport failure
	Summary      string // one-line human summary of the outcome
	Success      bool
	ErrorMessage string
	LatencyMs    int64
}

// AssessmentRecord is a stored submission.
type AssessmentRecord struct {
	ID        string
	Sequence  int64
	Timestamp time.Time
	AssessmentData
}

// AssessmentRepo keeps the local submission history.
type AssessmentRepo interface {
	// Record stores a submission and returns its generated ID.
	Record(ctx context.Context, data AssessmentData) (string, error)

	// Recent returns submissions newest first.
	Recent(ctx context.Context, opts QueryOpts) ([]AssessmentRecord, error)

	// Get returns one submission, or nil if it doesn't exist.
	Get(ctx context.Context, id string) (*AssessmentRecord, error)
}

// Credential is the persisted session token.
type Credential struct {
	Token     string
	UserName  string
	UserEmail string
	SavedAt   time.Time
}

// CredentialRepo persists at most one session credential.
type CredentialRepo interface {
	Save(ctx context.Context, c Credential) error

	// Load returns the saved credential, or nil if none.
	Load(ctx context.Context) (*Credential, error)

	Clear(ctx context.Context) error
}
