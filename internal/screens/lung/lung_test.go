package lung

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/carescope/internal/explain"
	"github.com/abhisek/carescope/internal/predict"
)

type fakePredictor struct {
	reqs []predict.LungRequest
	res  predict.LungResult
}

func (f *fakePredictor) PredictLung(_ context.Context, req predict.LungRequest) (*predict.LungResult, error) {
	f.reqs = append(f.reqs, req)
	res := f.res
	return &res, nil
}

type fakeExplainer struct{ calls int }

func (f *fakeExplainer) Lung(context.Context, predict.LungRequest, predict.LungResult) explain.Explanation {
	f.calls++
	return explain.Explanation{Summary: "Smoking is the biggest factor here.", Tips: []string{"Ask about a low-dose CT"}}
}

func press(s *LungScreen, code rune) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: code})
	return cmd
}

func pressText(s *LungScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func result(t *testing.T, cmd tea.Cmd) predictDoneMsg {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "expected a batch")
	for _, c := range batch {
		if msg, ok := c().(predictDoneMsg); ok {
			return msg
		}
	}
	t.Fatal("no prediction message")
	return predictDoneMsg{}
}

func TestDefaults(t *testing.T) {
	s := New(&fakePredictor{}, nil)
	req, err := s.Request()
	require.NoError(t, err)
	assert.Equal(t, "M", req.Gender)
	assert.Equal(t, 30, req.Age)
	assert.Empty(t, req.Factors)
}

func TestChecklistAndPredict(t *testing.T) {
	fp := &fakePredictor{res: predict.LungResult{Prediction: "YES", Probability: 0.64, Message: "High risk of lung cancer detected."}}
	fe := &fakeExplainer{}
	s := New(fp, fe)
	s.Init()

	press(s, tea.KeyRight) // female
	press(s, tea.KeyTab)
	press(s, tea.KeyBackspace)
	press(s, tea.KeyBackspace)
	pressText(s, "67")
	press(s, tea.KeyTab)
	require.True(t, s.onChecklist())
	assert.True(t, s.checklist.Focused)

	press(s, tea.KeySpace) // smoking
	press(s, tea.KeyDown)
	press(s, tea.KeyDown)
	pressText(s, "x") // yellow fingers

	msg := result(t, press(s, tea.KeyEnter))
	require.Len(t, fp.reqs, 1)
	req := fp.reqs[0]
	assert.Equal(t, "F", req.Gender)
	assert.Equal(t, 67, req.Age)
	assert.Equal(t, map[string]bool{"SMOKING": true, "YELLOW_FINGERS": true}, req.Factors)
	assert.Equal(t, 1, fe.calls)

	s.Update(msg)
	view := s.View(100, 50)
	for _, want := range []string{"Elevated likelihood", "High risk", "High risk of lung cancer detected.", "Smoking is the biggest factor here."} {
		assert.Contains(t, view, want)
	}

	press(s, tea.KeyEnter)
	assert.Nil(t, s.result)
	assert.True(t, s.checklist.Checked[0], "answers survive going back to the form")
}

func TestUpFromChecklistReturnsToForm(t *testing.T) {
	s := New(&fakePredictor{}, nil)
	s.Init()
	press(s, tea.KeyTab)
	press(s, tea.KeyTab)
	require.True(t, s.onChecklist())

	press(s, tea.KeyUp)
	assert.False(t, s.onChecklist())
	assert.False(t, s.checklist.Focused)
	assert.Equal(t, "age", s.form.Fields[s.form.Focus].Key)
}

func TestInvalidAge(t *testing.T) {
	fp := &fakePredictor{}
	s := New(fp, nil)
	s.Init()
	press(s, tea.KeyTab)
	press(s, tea.KeyBackspace)
	press(s, tea.KeyBackspace)
	pressText(s, "0")

	press(s, tea.KeyEnter)
	assert.Empty(t, fp.reqs)
	assert.False(t, s.busy)
	assert.True(t, strings.Contains(s.View(100, 50), "age must be between 1 and 120"))
}
