package survey

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/explain"
	"github.com/abhisek/carescope/internal/screen"
	"github.com/abhisek/carescope/internal/ui/components"
	"github.com/abhisek/carescope/internal/ui/layout"
	"github.com/abhisek/carescope/internal/ui/theme"
	"github.com/abhisek/carescope/internal/wizard"
)

// Explainer writes a plain-language note for a survey result.
type Explainer interface {
	Survey(ctx context.Context, sub wizard.Submission, res wizard.Result) explain.Explanation
}

type assessDoneMsg struct {
	Ticket wizard.Ticket
	Result *wizard.Result
	Err    error
}

type explainDoneMsg struct {
	Explanation explain.Explanation
}

// SurveyScreen hosts the symptom-survey wizard.
type SurveyScreen struct {
	wiz       *wizard.Wizard
	scorer    wizard.Scorer
	explainer Explainer

	form    components.Form
	spinner spinner.Model

	// alert is the pending submission failure, shown until dismissed.
	alert  *wizard.SubmissionError
	alerts int
	errMsg string

	submitted   wizard.Submission
	explanation *explain.Explanation
	explaining  bool
}

var (
	_ screen.Screen          = (*SurveyScreen)(nil)
	_ screen.KeyHintProvider = (*SurveyScreen)(nil)
	_ screen.Closer          = (*SurveyScreen)(nil)
	_ screen.BackInterceptor = (*SurveyScreen)(nil)
)

// New creates a SurveyScreen. credentials supplies the session token per
// submission; explainer may be nil.
func New(scorer wizard.Scorer, credentials wizard.CredentialFunc, explainer Explainer) *SurveyScreen {
	s := &SurveyScreen{
		scorer:    scorer,
		explainer: explainer,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary))),
	}
	s.wiz = wizard.New(scorer, credentials, wizard.WithNotifier(wizard.NotifierFunc(func(err *wizard.SubmissionError) {
		s.alert = err
		s.alerts++
	})))
	s.buildForm()
	return s
}

func (s *SurveyScreen) buildForm() {
	p := s.wiz.PersonalInfo()
	s.form = components.NewForm(
		components.TextField("age", "Age", "1-120", components.Digits, 3),
		components.ChoiceField("gender", "Gender",
			append([]string{wizard.GenderUnset}, wizard.Genders...),
			[]string{"Select...", "Male", "Female", "Other"}, p.Gender),
		components.ChoiceField("familyHistory", "Family history",
			wizard.FamilyHistories,
			[]string{"No", "Yes", "Not sure"}, p.FamilyHistory),
	)
	s.form.Set("age", p.Age)
}

func (s *SurveyScreen) Init() tea.Cmd {
	return s.form.Init()
}

func (s *SurveyScreen) Title() string {
	return "Thyroid Symptom Survey"
}

// Close abandons the wizard so a late response is dropped.
func (s *SurveyScreen) Close() {
	s.wiz.Close()
}

// InterceptsBack is true while the alert is open.
func (s *SurveyScreen) InterceptsBack() bool {
	return s.alert != nil
}

func (s *SurveyScreen) KeyHints() []layout.KeyHint {
	if s.alert != nil {
		return []layout.KeyHint{{Key: "Enter", Description: "Dismiss"}}
	}
	step := s.wiz.Step()
	switch step.Kind {
	case wizard.KindPersonalInfo:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next field"},
			{Key: "←→", Description: "Change"},
			{Key: "Enter", Description: "Next"},
			{Key: "Esc", Description: "Back"},
		}
	case wizard.KindSymptom:
		forward := "Next"
		if s.wiz.IsFinalStep() {
			forward = "Get Assessment"
		}
		return []layout.KeyHint{
			{Key: "←→", Description: "Severity"},
			{Key: "0-9/End", Description: "Set"},
			{Key: "Enter", Description: forward},
			{Key: "Bksp", Description: "Previous"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start New Assessment"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SurveyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case assessDoneMsg:
		return s, s.handleAssessDone(msg)

	case explainDoneMsg:
		s.explaining = false
		s.explanation = &msg.Explanation
		return s, nil

	case spinner.TickMsg:
		if !s.wiz.Loading() && !s.explaining {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		if s.alert != nil {
			switch msg.String() {
			case "enter", "esc", "space":
				s.alert = nil
			}
			return s, nil
		}
		switch s.wiz.Step().Kind {
		case wizard.KindPersonalInfo:
			return s, s.updatePersonalInfo(msg)
		case wizard.KindSymptom:
			return s, s.updateSymptom(msg)
		case wizard.KindResults:
			switch msg.String() {
			case "enter", "r":
				s.reset()
				return s, s.form.Init()
			}
		}
		return s, nil
	}

	if s.wiz.Step().Kind == wizard.KindPersonalInfo {
		var cmd tea.Cmd
		s.form, cmd = s.form.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SurveyScreen) updatePersonalInfo(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "enter" {
		s.syncPersonalInfo()
		if err := s.wiz.Next(); err != nil {
			s.errMsg = err.Error()
			var verr *wizard.ValidationError
			if errors.As(err, &verr) {
				return s.form.MarkInvalid(verr.Field)
			}
			return nil
		}
		s.errMsg = ""
		return nil
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	s.syncPersonalInfo()
	return cmd
}

func (s *SurveyScreen) syncPersonalInfo() {
	err := s.wiz.SetPersonalInfo(wizard.PersonalInfo{
		Age:           s.form.Value("age"),
		Gender:        s.form.Value("gender"),
		FamilyHistory: s.form.Value("familyHistory"),
	})
	if err != nil {
		s.errMsg = err.Error()
	}
}

func (s *SurveyScreen) updateSymptom(msg tea.KeyPressMsg) tea.Cmd {
	q, _ := s.wiz.Step().Question()
	key := msg.String()

	var err error
	switch key {
	case "left", "h":
		_, err = s.wiz.Nudge(q.ID, -1)
	case "right", "l":
		_, err = s.wiz.Nudge(q.ID, 1)
	case "backspace", "p":
		err = s.wiz.Previous()
	case "enter", "n":
		if s.wiz.IsFinalStep() {
			return s.submit()
		}
		err = s.wiz.Next()
	default:
		v, ok := keySeverity(key)
		if !ok {
			return nil
		}
		err = s.wiz.SetAnswer(q.ID, v)
	}
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.errMsg = ""
	return nil
}

// keySeverity maps a direct-entry key to a slider value: digits set
// tenths, home and end jump to the ends of the scale.
func keySeverity(key string) (float64, bool) {
	switch key {
	case "home":
		return 0, true
	case "end":
		return 1, true
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return float64(key[0]-'0') / 10, true
	}
	return 0, false
}

func (s *SurveyScreen) submit() tea.Cmd {
	t, err := s.wiz.Begin()
	if errors.Is(err, wizard.ErrInFlight) {
		return nil
	}
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.errMsg = ""
	s.submitted = t.Submission

	scorer := s.scorer
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		res, err := scorer.Assess(context.Background(), t.Credential, t.Submission)
		return assessDoneMsg{Ticket: t, Result: res, Err: err}
	})
}

func (s *SurveyScreen) handleAssessDone(msg assessDoneMsg) tea.Cmd {
	if err := s.wiz.Complete(msg.Ticket, msg.Result, msg.Err); err != nil {
		// Failures reach the user through the notifier; stale responses
		// are dropped.
		return nil
	}
	if s.explainer == nil {
		return nil
	}

	s.explaining = true
	explainer, sub, res := s.explainer, s.submitted, *s.wiz.Result()
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		return explainDoneMsg{Explanation: explainer.Survey(context.Background(), sub, res)}
	})
}

func (s *SurveyScreen) reset() {
	s.wiz.Reset()
	s.explanation = nil
	s.explaining = false
	s.errMsg = ""
	s.buildForm()
}

func (s *SurveyScreen) View(width, height int) string {
	if s.alert != nil {
		return components.Alert("Assessment failed", s.alert.UserMessage(), width, height)
	}

	cw := components.ContentWidth(width)
	var body string
	switch step := s.wiz.Step(); step.Kind {
	case wizard.KindPersonalInfo:
		body = s.viewPersonalInfo(cw)
	case wizard.KindSymptom:
		body = s.viewSymptom(step, cw)
	case wizard.KindResults:
		body = s.viewResults(cw)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (s *SurveyScreen) viewPersonalInfo(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Personal Information") + "\n")
	b.WriteString(theme.Subtitle.Render("Tell us a little about yourself before the symptom questions.") + "\n\n")
	b.WriteString(s.form.View(16, 0) + "\n")
	if s.errMsg != "" {
		b.WriteString("\n" + theme.ErrorText.Render(s.errMsg) + "\n")
	}
	b.WriteString("\n" + components.ButtonRow(components.Button{Label: "Next", Focused: true}))
	return components.Panel(b.String(), cw)
}

func (s *SurveyScreen) viewSymptom(step wizard.Step, cw int) string {
	q, _ := step.Question()
	v := s.wiz.Answer(q.ID)
	inner := cw - 6

	var b strings.Builder
	progress := components.NewProgressBar(
		fmt.Sprintf("Question %d of %d", step.Index, wizard.QuestionCount),
		float64(step.Number())/float64(wizard.QuestionCount), false, inner)
	b.WriteString(progress.View() + "\n\n")
	b.WriteString(theme.Title.Width(inner).Render(q.Prompt) + "\n")
	b.WriteString(theme.Hint.Width(inner).Render(q.Info) + "\n\n")
	b.WriteString(components.Slider{Value: v, Steps: 10, Width: inner}.View() + "\n")
	b.WriteString(theme.Label.Render("Severity: ") + theme.Body.Render(wizard.SeverityLabel(v)) + "\n\n")

	if s.errMsg != "" {
		b.WriteString(theme.ErrorText.Render(s.errMsg) + "\n\n")
	}

	if s.wiz.Loading() {
		// Only the submit control is replaced; going back stays available.
		b.WriteString(components.Button{Label: "Previous"}.View() + "   " +
			s.spinner.View() + " " + theme.Body.Render("Assessing your answers..."))
	} else {
		forward := "Next"
		if s.wiz.IsFinalStep() {
			forward = "Get Assessment"
		}
		b.WriteString(components.ButtonRow(
			components.Button{Label: "Previous"},
			components.Button{Label: forward, Focused: true},
		))
	}
	return components.Panel(b.String(), cw)
}

func (s *SurveyScreen) viewResults(cw int) string {
	res := s.wiz.Result()
	if res == nil {
		return ""
	}
	inner := cw - 6

	headline := theme.Positive
	if res.NeedsTesting {
		headline = theme.Negative
	}

	var b strings.Builder
	b.WriteString(headline.Render(wizard.Headline(*res)) + "\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Confidence: %.0f%%", res.Confidence*100)) + "\n\n")
	b.WriteString(theme.Body.Width(inner).Render(res.Recommendation) + "\n\n")

	b.WriteString(theme.Label.Render("Next steps") + "\n")
	for _, step := range wizard.NextSteps(*res) {
		b.WriteString(theme.Body.Width(inner).Render("• "+step) + "\n")
	}

	switch {
	case s.explaining:
		b.WriteString("\n" + s.spinner.View() + " " + theme.Hint.Render("Preparing an explanation..."))
	case s.explanation != nil:
		b.WriteString("\n" + theme.Label.Render("What this means") + "\n")
		b.WriteString(theme.Body.Width(inner).Render(s.explanation.Summary) + "\n")
		for _, tip := range s.explanation.Tips {
			b.WriteString(theme.Body.Width(inner).Render("• "+tip) + "\n")
		}
	}

	b.WriteString("\n" + theme.Hint.Width(inner).Render(wizard.Disclaimer) + "\n\n")
	b.WriteString(components.ButtonRow(components.Button{Label: "Start New Assessment", Focused: true}))
	return components.Panel(b.String(), cw)
}
