package wizard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
)

// Result is the scorer's verdict. This package never computes one.
type Result struct {
	NeedsTesting   bool    `json:"needs_testing"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
}

// Scorer turns a completed submission into a Result. credential is the
// session token, or "" when there is none.
type Scorer interface {
	Assess(ctx context.Context, credential string, sub Submission) (*Result, error)
}

// CredentialFunc returns the current session credential, or "".
type CredentialFunc func() string

// Notifier surfaces a failed submission to the user.
type Notifier interface {
	Alert(err *SubmissionError)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(err *SubmissionError)

// Alert calls f(err).
func (f NotifierFunc) Alert(err *SubmissionError) { f(err) }

// Option configures a Wizard.
type Option func(*Wizard)

// WithNotifier sets the alert sink for failed submissions.
func WithNotifier(n Notifier) Option {
	return func(w *Wizard) { w.notifier = n }
}

// Ticket identifies one in-flight submission. It carries the request
// snapshot so later edits don't leak into the outgoing body.
type Ticket struct {
	gen        uint64
	Credential string
	Submission Submission
}

// Wizard drives the symptom survey: personal info, one step per question,
// then submission to a Scorer and display of the result.
type Wizard struct {
	mu sync.Mutex

	scorer      Scorer
	credentials CredentialFunc
	notifier    Notifier

	step     Step
	personal PersonalInfo
	answers  Answers
	result   *Result
	loading  bool

	// gen is bumped on Reset and Close so responses for an abandoned
	// submission can be recognised and dropped.
	gen    uint64
	closed bool
}

// New creates a wizard at the personal-info step with default answers.
// credentials may be nil, in which case no credential is ever attached.
func New(scorer Scorer, credentials CredentialFunc, opts ...Option) *Wizard {
	w := &Wizard{
		scorer:      scorer,
		credentials: credentials,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.resetLocked()
	return w
}

func (w *Wizard) resetLocked() {
	w.step = StepPersonalInfo()
	w.personal = BlankPersonalInfo()
	w.answers = NewAnswers()
	w.result = nil
	w.loading = false
}

// Step returns the current display state.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// PersonalInfo returns the personal-info fields.
func (w *Wizard) PersonalInfo() PersonalInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.personal
}

// Answers returns a copy of the current answers.
func (w *Wizard) Answers() Answers {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.answers.Clone()
}

// Answer returns the severity recorded for id.
func (w *Wizard) Answer(id string) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.answers[id]
}

// Result returns the scorer's result, or nil before a successful submission.
func (w *Wizard) Result() *Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return nil
	}
	r := *w.result
	return &r
}

// Loading reports whether a submission is in flight.
func (w *Wizard) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// IsFinalStep reports whether the forward action is Submit.
func (w *Wizard) IsFinalStep() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step == StepSymptom(QuestionCount)
}

// SetPersonalInfo replaces the personal-info fields. Enumerated fields must
// hold known values; completeness is checked when leaving the step.
func (w *Wizard) SetPersonalInfo(p PersonalInfo) error {
	if err := p.validateEnums(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.personal = p
	return nil
}

// SetAnswer records a severity for id, clamped to [0, 1].
func (w *Wizard) SetAnswer(id string, v float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if _, ok := w.answers[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
	}
	w.answers[id] = Clamp(v)
	return nil
}

// Nudge moves the answer for id by delta slider steps and returns the new
// value. The result stays on the 0.1 grid inside [0, 1].
func (w *Wizard) Nudge(id string, delta int) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return 0, err
	}
	cur, ok := w.answers[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
	}
	v := Clamp(snap(cur + float64(delta)*SliderStep))
	w.answers[id] = v
	return v, nil
}

func (w *Wizard) editableLocked() error {
	if w.closed {
		return ErrClosed
	}
	if w.result != nil {
		return ErrHasResult
	}
	return nil
}

// Next advances one step. Leaving personal info requires a valid age and
// gender. On the last question it returns ErrFinalStep.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	switch w.step.Kind {
	case KindPersonalInfo:
		if err := w.personal.Validate(); err != nil {
			return err
		}
		w.step = StepSymptom(1)
	case KindSymptom:
		if w.step.Index >= QuestionCount {
			return ErrFinalStep
		}
		w.step = StepSymptom(w.step.Index + 1)
	case KindResults:
		return ErrHasResult
	}
	return nil
}

// Previous goes back one step. It is a no-op on personal info.
func (w *Wizard) Previous() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	switch w.step.Kind {
	case KindPersonalInfo:
	case KindSymptom:
		if w.step.Index <= 1 {
			w.step = StepPersonalInfo()
		} else {
			w.step = StepSymptom(w.step.Index - 1)
		}
	case KindResults:
		return ErrHasResult
	}
	return nil
}

// Begin starts a submission from the last question. It marks the wizard as
// loading and returns the snapshot to send. Hosts with an event loop call
// Begin, run the scorer off-loop, then feed the outcome to Complete.
func (w *Wizard) Begin() (Ticket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return Ticket{}, err
	}
	if w.step != StepSymptom(QuestionCount) {
		return Ticket{}, ErrNotSubmittable
	}
	if w.loading {
		return Ticket{}, ErrInFlight
	}

	sub := Submission{Answers: w.answers.Clone(), PersonalInfo: w.personal}
	if err := sub.Validate(); err != nil {
		return Ticket{}, err
	}

	var cred string
	if w.credentials != nil {
		cred = w.credentials()
	}

	w.loading = true
	return Ticket{gen: w.gen, Credential: cred, Submission: sub}, nil
}

// Complete applies the outcome of the submission identified by t. On
// success the wizard moves to Results. On failure it stays where it is,
// alerts the notifier once and returns a *SubmissionError. If the wizard
// was reset or closed since Begin, nothing changes and ErrStale is returned.
func (w *Wizard) Complete(t Ticket, res *Result, err error) error {
	w.mu.Lock()
	if w.closed || t.gen != w.gen {
		w.mu.Unlock()
		return ErrStale
	}
	w.loading = false

	if err == nil {
		err = checkResult(res)
	}
	if err == nil {
		r := *res
		w.result = &r
		w.step = StepResults()
		w.mu.Unlock()
		return nil
	}

	serr := &SubmissionError{Err: err}
	var existing *SubmissionError
	if errors.As(err, &existing) {
		serr = existing
	}
	notifier := w.notifier
	w.mu.Unlock()

	if notifier != nil {
		notifier.Alert(serr)
	}
	return serr
}

func checkResult(res *Result) error {
	if res == nil {
		return errors.New("empty response")
	}
	if math.IsNaN(res.Confidence) || res.Confidence < 0 || res.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0, 1]", res.Confidence)
	}
	return nil
}

// Submit runs Begin, the scorer and Complete in sequence.
func (w *Wizard) Submit(ctx context.Context) (*Result, error) {
	t, err := w.Begin()
	if err != nil {
		return nil, err
	}
	res, err := w.scorer.Assess(ctx, t.Credential, t.Submission)
	if err := w.Complete(t, res, err); err != nil {
		return nil, err
	}
	return w.Result(), nil
}

// Reset returns the wizard to personal info with default answers and
// blank personal info. Any in-flight submission becomes stale.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	w.resetLocked()
}

// Close abandons the wizard. In-flight responses are discarded and every
// later mutation fails with ErrClosed.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	w.closed = true
	w.loading = false
}
