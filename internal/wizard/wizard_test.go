package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScorer records every call and replies with a canned result or error.
type fakeScorer struct {
	mu    sync.Mutex
	calls []scorerCall
	res   *Result
	err   error
}

type scorerCall struct {
	credential string
	sub        Submission
}

func (f *fakeScorer) Assess(_ context.Context, credential string, sub Submission) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, scorerCall{credential: credential, sub: sub})
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

// alertRecorder counts notifications.
type alertRecorder struct {
	alerts []*SubmissionError
}

func (a *alertRecorder) Alert(err *SubmissionError) { a.alerts = append(a.alerts, err) }

func validInfo() PersonalInfo {
	return PersonalInfo{Age: "45", Gender: GenderFemale, FamilyHistory: FamilyHistoryYes}
}

// toLastQuestion fills personal info and walks to Symptom(N).
func toLastQuestion(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.SetPersonalInfo(validInfo()))
	for i := 0; i < QuestionCount; i++ {
		require.NoError(t, w.Next())
	}
	require.Equal(t, StepSymptom(QuestionCount), w.Step())
}

func TestNew_Defaults(t *testing.T) {
	w := New(&fakeScorer{}, nil)

	assert.Equal(t, StepPersonalInfo(), w.Step())
	assert.Equal(t, 0, w.Step().Number())
	assert.Equal(t, BlankPersonalInfo(), w.PersonalInfo())
	assert.Nil(t, w.Result())
	assert.False(t, w.Loading())

	answers := w.Answers()
	require.Len(t, answers, QuestionCount)
	for _, q := range Questions {
		v, ok := answers[q.ID]
		assert.True(t, ok, "missing answer for %s", q.ID)
		assert.Equal(t, 0.0, v)
	}
}

func TestNext_RequiresValidPersonalInfo(t *testing.T) {
	tests := []struct {
		name  string
		info  PersonalInfo
		field string
	}{
		{"blank age", PersonalInfo{Gender: GenderMale, FamilyHistory: FamilyHistoryNo}, "age"},
		{"non-numeric age", PersonalInfo{Age: "abc", Gender: GenderMale, FamilyHistory: FamilyHistoryNo}, "age"},
		{"age zero", PersonalInfo{Age: "0", Gender: GenderMale, FamilyHistory: FamilyHistoryNo}, "age"},
		{"age too high", PersonalInfo{Age: "121", Gender: GenderMale, FamilyHistory: FamilyHistoryNo}, "age"},
		{"missing gender", PersonalInfo{Age: "30", FamilyHistory: FamilyHistoryNo}, "gender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(&fakeScorer{}, nil)
			require.NoError(t, w.SetPersonalInfo(tt.info))

			err := w.Next()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, StepPersonalInfo(), w.Step())
		})
	}
}

func TestSetPersonalInfo_RejectsUnknownEnums(t *testing.T) {
	w := New(&fakeScorer{}, nil)

	err := w.SetPersonalInfo(PersonalInfo{Age: "30", Gender: "robot", FamilyHistory: FamilyHistoryNo})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "gender", verr.Field)

	err = w.SetPersonalInfo(PersonalInfo{Age: "30", Gender: GenderMale, FamilyHistory: "maybe"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "familyHistory", verr.Field)

	assert.Equal(t, BlankPersonalInfo(), w.PersonalInfo())
}

func TestNavigation_RoundTrip(t *testing.T) {
	w := New(&fakeScorer{}, nil)
	require.NoError(t, w.SetPersonalInfo(validInfo()))
	require.NoError(t, w.Next())

	for k := 1; k < QuestionCount; k++ {
		require.Equal(t, StepSymptom(k), w.Step())
		q, _ := w.Step().Question()
		require.NoError(t, w.SetAnswer(q.ID, float64(k)/10))
		before := w.Answers()

		require.NoError(t, w.Next())
		require.NoError(t, w.Previous())

		assert.Equal(t, StepSymptom(k), w.Step())
		assert.Equal(t, before, w.Answers())

		require.NoError(t, w.Next())
	}
}

func TestPrevious_FromFirstSymptomGoesToPersonalInfo(t *testing.T) {
	w := New(&fakeScorer{}, nil)
	require.NoError(t, w.SetPersonalInfo(validInfo()))
	require.NoError(t, w.Next())

	require.NoError(t, w.Previous())
	assert.Equal(t, StepPersonalInfo(), w.Step())

	// No-op at the start.
	require.NoError(t, w.Previous())
	assert.Equal(t, StepPersonalInfo(), w.Step())
}

func TestNext_OnLastQuestionRequiresSubmit(t *testing.T) {
	w := New(&fakeScorer{}, nil)
	toLastQuestion(t, w)

	assert.True(t, w.IsFinalStep())
	assert.ErrorIs(t, w.Next(), ErrFinalStep)
	assert.Equal(t, StepSymptom(QuestionCount), w.Step())
}

func TestSetAnswer_Clamps(t *testing.T) {
	w := New(&fakeScorer{}, nil)

	inputs := []float64{-5, -0.01, 0, 0.35, 1, 1.0001, 42}
	for _, in := range inputs {
		require.NoError(t, w.SetAnswer("fatigue", in))
		got := w.Answer("fatigue")
		assert.GreaterOrEqual(t, got, 0.0, "input %v", in)
		assert.LessOrEqual(t, got, 1.0, "input %v", in)
	}

	require.NoError(t, w.SetAnswer("fatigue", -5))
	assert.Equal(t, 0.0, w.Answer("fatigue"))
	require.NoError(t, w.SetAnswer("fatigue", 42))
	assert.Equal(t, 1.0, w.Answer("fatigue"))
}

func TestSetAnswer_UnknownQuestion(t *testing.T) {
	w := New(&fakeScorer{}, nil)
	err := w.SetAnswer("headache", 0.5)
	assert.ErrorIs(t, err, ErrUnknownQuestion)
	assert.Len(t, w.Answers(), QuestionCount)
}

func TestNudge_StaysOnGrid(t *testing.T) {
	w := New(&fakeScorer{}, nil)

	for i := 1; i <= 12; i++ {
		v, err := w.Nudge("dry_skin", 1)
		require.NoError(t, err)
		want := float64(i) / 10
		if want > 1 {
			want = 1
		}
		assert.Equal(t, want, v)
	}

	for i := 0; i < 15; i++ {
		_, err := w.Nudge("dry_skin", -1)
		require.NoError(t, err)
	}
	assert.Equal(t, 0.0, w.Answer("dry_skin"))
}

func TestSubmit_SendsMergedBody(t *testing.T) {
	scorer := &fakeScorer{res: &Result{NeedsTesting: false, Confidence: 0.82, Recommendation: "monitor"}}
	w := New(scorer, func() string { return "tok-123" })

	require.NoError(t, w.SetPersonalInfo(validInfo()))
	require.NoError(t, w.Next())
	require.NoError(t, w.SetAnswer("fatigue", 0.5))
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	require.NoError(t, w.SetAnswer("cold_sensitivity", 0.2))
	for w.Step() != StepSymptom(QuestionCount) {
		require.NoError(t, w.Next())
	}

	res, err := w.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Len(t, scorer.calls, 1)
	assert.Equal(t, "tok-123", scorer.calls[0].credential)

	got, err := json.Marshal(scorer.calls[0].sub)
	require.NoError(t, err)
	want := `{
		"fatigue": 0.5, "weight_change": 0, "cold_sensitivity": 0.2, "hair_loss": 0,
		"dry_skin": 0, "mood_changes": 0, "neck_swelling": 0, "heart_rate_changes": 0,
		"personalInfo": {"age": "45", "gender": "female", "familyHistory": "yes"}
	}`
	assert.JSONEq(t, want, string(got))
}

func TestSubmit_SuccessShowsResults(t *testing.T) {
	scorer := &fakeScorer{res: &Result{NeedsTesting: true, Confidence: 0.91, Recommendation: "see a doctor"}}
	w := New(scorer, nil)
	toLastQuestion(t, w)

	res, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, res.NeedsTesting)
	assert.Equal(t, StepResults(), w.Step())
	assert.False(t, w.Loading())
	assert.Equal(t, res, w.Result())

	// Results only exits through Reset.
	assert.ErrorIs(t, w.Next(), ErrHasResult)
	assert.ErrorIs(t, w.Previous(), ErrHasResult)
	assert.ErrorIs(t, w.SetAnswer("fatigue", 1), ErrHasResult)
}

func TestSubmit_FailureKeepsStateAndAlertsOnce(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("status 500")}
	alerts := &alertRecorder{}
	w := New(scorer, nil, WithNotifier(alerts))
	toLastQuestion(t, w)
	require.NoError(t, w.SetAnswer("heart_rate_changes", 0.7))
	before := w.Answers()

	res, err := w.Submit(context.Background())
	assert.Nil(t, res)

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Len(t, alerts.alerts, 1)
	assert.Same(t, serr, alerts.alerts[0])

	assert.Equal(t, StepSymptom(QuestionCount), w.Step())
	assert.Nil(t, w.Result())
	assert.False(t, w.Loading())
	assert.Equal(t, before, w.Answers())
	assert.Equal(t, validInfo(), w.PersonalInfo())

	// The user may resubmit manually.
	scorer.err = nil
	scorer.res = &Result{Confidence: 0.6}
	_, err = w.Submit(context.Background())
	require.NoError(t, err)
	assert.Len(t, alerts.alerts, 1)
}

func TestSubmit_MalformedResultIsSubmissionError(t *testing.T) {
	tests := []struct {
		name string
		res  *Result
	}{
		{"nil result", nil},
		{"confidence above one", &Result{Confidence: 1.5}},
		{"negative confidence", &Result{Confidence: -0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := &alertRecorder{}
			w := New(&fakeScorer{res: tt.res}, nil, WithNotifier(alerts))
			toLastQuestion(t, w)

			_, err := w.Submit(context.Background())
			var serr *SubmissionError
			require.ErrorAs(t, err, &serr)
			assert.Len(t, alerts.alerts, 1)
			assert.Equal(t, StepSymptom(QuestionCount), w.Step())
		})
	}
}

func TestBegin_OnlyFromLastQuestion(t *testing.T) {
	w := New(&fakeScorer{}, nil)
	_, err := w.Begin()
	assert.ErrorIs(t, err, ErrNotSubmittable)
	assert.False(t, w.Loading())
}

func TestBegin_RevalidatesPersonalInfo(t *testing.T) {
	scorer := &fakeScorer{res: &Result{Confidence: 0.5, Recommendation: "ok"}}
	alerts := &alertRecorder{}
	w := New(scorer, nil, WithNotifier(alerts))
	toLastQuestion(t, w)

	require.NoError(t, w.SetPersonalInfo(PersonalInfo{Age: "", Gender: GenderUnset, FamilyHistory: FamilyHistoryNo}))

	_, err := w.Begin()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "age", verr.Field)
	assert.False(t, w.Loading())

	_, err = w.Submit(context.Background())
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, scorer.calls, "nothing may reach the scorer")
	assert.Empty(t, alerts.alerts)
	assert.Equal(t, StepSymptom(QuestionCount), w.Step())
	assert.Nil(t, w.Result())
}

func TestBegin_RejectsDoubleSubmit(t *testing.T) {
	w := New(&fakeScorer{}, nil)
	toLastQuestion(t, w)

	_, err := w.Begin()
	require.NoError(t, err)
	assert.True(t, w.Loading())

	_, err = w.Begin()
	assert.ErrorIs(t, err, ErrInFlight)
}

func TestBegin_SnapshotsAnswers(t *testing.T) {
	w := New(&fakeScorer{}, nil)
	toLastQuestion(t, w)

	ticket, err := w.Begin()
	require.NoError(t, err)

	// Navigation stays possible while loading; edits don't leak into
	// the outgoing body.
	require.NoError(t, w.Previous())
	require.NoError(t, w.SetAnswer("mood_changes", 0.9))
	assert.Equal(t, 0.0, ticket.Submission.Answers["mood_changes"])
}

func TestComplete_DiscardedAfterReset(t *testing.T) {
	alerts := &alertRecorder{}
	w := New(&fakeScorer{}, nil, WithNotifier(alerts))
	toLastQuestion(t, w)

	ticket, err := w.Begin()
	require.NoError(t, err)
	w.Reset()

	err = w.Complete(ticket, &Result{NeedsTesting: true, Confidence: 0.9}, nil)
	assert.ErrorIs(t, err, ErrStale)
	assert.Nil(t, w.Result())
	assert.Equal(t, StepPersonalInfo(), w.Step())

	err = w.Complete(ticket, nil, errors.New("boom"))
	assert.ErrorIs(t, err, ErrStale)
	assert.Empty(t, alerts.alerts)
}

func TestComplete_DiscardedAfterClose(t *testing.T) {
	w := New(&fakeScorer{}, nil)
	toLastQuestion(t, w)

	ticket, err := w.Begin()
	require.NoError(t, err)
	w.Close()

	assert.ErrorIs(t, w.Complete(ticket, &Result{Confidence: 0.5}, nil), ErrStale)
	assert.Nil(t, w.Result())
	assert.ErrorIs(t, w.Next(), ErrClosed)
	_, err = w.Begin()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReset_RestoresDefaults(t *testing.T) {
	w := New(&fakeScorer{res: &Result{NeedsTesting: true, Confidence: 0.7}}, nil)
	toLastQuestion(t, w)
	for _, q := range Questions {
		require.NoError(t, w.SetAnswer(q.ID, 0.8))
	}
	_, err := w.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, StepResults(), w.Step())

	w.Reset()

	assert.Equal(t, StepPersonalInfo(), w.Step())
	assert.Equal(t, 0, w.Step().Number())
	assert.Nil(t, w.Result())
	assert.Equal(t, BlankPersonalInfo(), w.PersonalInfo())
	assert.Equal(t, NewAnswers(), w.Answers())
}

func TestCredentialReadAtSubmitTime(t *testing.T) {
	token := ""
	scorer := &fakeScorer{res: &Result{Confidence: 0.5}}
	w := New(scorer, func() string { return token })
	toLastQuestion(t, w)

	token = "late-token"
	_, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late-token", scorer.calls[0].credential)
}
