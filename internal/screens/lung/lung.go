// Package lung is the lung cancer risk form.
package lung

import (
	"context"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/explain"
	"github.com/abhisek/carescope/internal/predict"
	"github.com/abhisek/carescope/internal/screen"
	"github.com/abhisek/carescope/internal/ui/components"
	"github.com/abhisek/carescope/internal/ui/layout"
	"github.com/abhisek/carescope/internal/ui/theme"
)

// Predictor scores lung risk factors.
type Predictor interface {
	PredictLung(ctx context.Context, req predict.LungRequest) (*predict.LungResult, error)
}

// Explainer describes a lung result in plain language.
type Explainer interface {
	Lung(ctx context.Context, req predict.LungRequest, res predict.LungResult) explain.Explanation
}

type predictDoneMsg struct {
	Request     predict.LungRequest
	Result      *predict.LungResult
	Explanation *explain.Explanation
	Err         error
}

// LungScreen collects gender, age and yes/no risk factors.
type LungScreen struct {
	predictor Predictor
	explainer Explainer

	form      components.Form
	checklist components.Checklist
	spinner   spinner.Model
	pane      components.ScrollPane

	busy      bool
	errMsg    string
	result    *predictDoneMsg
	paneWidth int
}

var (
	_ screen.Screen          = (*LungScreen)(nil)
	_ screen.KeyHintProvider = (*LungScreen)(nil)
)

// New creates the screen. explainer may be nil.
func New(p Predictor, explainer Explainer) *LungScreen {
	def := predict.NewLungRequest()
	labels := make([]string, len(predict.LungFactors))
	for i, f := range predict.LungFactors {
		labels[i] = f.Label
	}

	s := &LungScreen{
		predictor: p,
		explainer: explainer,
		form: components.NewForm(
			components.ChoiceField("gender", "Gender", []string{"M", "F"}, []string{"Male", "Female"}, def.Gender),
			components.TextField("age", "Age", "1-120", components.Digits, 3),
		),
		checklist: components.NewChecklist(labels),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary))),
		pane:      components.NewScrollPane(),
	}
	s.form.Set("age", strconv.Itoa(def.Age))
	return s
}

func (s *LungScreen) Init() tea.Cmd {
	return s.form.Init()
}

func (s *LungScreen) Title() string {
	return "Lung Cancer Risk"
}

func (s *LungScreen) KeyHints() []layout.KeyHint {
	if s.result != nil {
		return append(s.pane.ScrollHints(),
			layout.KeyHint{Key: "Enter", Description: "Edit answers"},
			layout.KeyHint{Key: "Esc", Description: "Back"},
		)
	}
	if s.onChecklist() {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Move"},
			{Key: "Space", Description: "Toggle"},
			{Key: "Enter", Description: "Predict"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Predict"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LungScreen) onChecklist() bool {
	return s.form.OnSubmitRow()
}

func (s *LungScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case predictDoneMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.result = &msg
		s.paneWidth = 0
		return s, nil

	case spinner.TickMsg:
		if !s.busy {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		if s.result != nil {
			if msg.String() == "enter" {
				s.result = nil
				return s, nil
			}
			var cmd tea.Cmd
			s.pane, cmd = s.pane.Update(msg)
			return s, cmd
		}
		if msg.String() == "enter" {
			return s, s.submit()
		}
		if s.onChecklist() {
			return s, s.updateChecklist(msg)
		}
	}

	if s.result != nil {
		return s, nil
	}
	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	s.checklist.Focused = s.onChecklist()
	return s, cmd
}

func (s *LungScreen) updateChecklist(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "shift+tab" {
		return s.leaveChecklist()
	}
	var atEdge bool
	s.checklist, atEdge = s.checklist.Update(msg)
	if atEdge && s.checklist.Cursor == 0 && (msg.String() == "up" || msg.String() == "k") {
		return s.leaveChecklist()
	}
	return nil
}

func (s *LungScreen) leaveChecklist() tea.Cmd {
	s.checklist.Focused = false
	s.form.Focus = len(s.form.Fields) - 1
	return s.form.Init()
}

// Request builds the model input from the current answers.
func (s *LungScreen) Request() (predict.LungRequest, error) {
	req := predict.NewLungRequest()
	req.Gender = s.form.Value("gender")
	age, err := strconv.Atoi(s.form.Value("age"))
	if err != nil {
		return req, fmt.Errorf("age must be a whole number")
	}
	req.Age = age
	for i, f := range predict.LungFactors {
		if s.checklist.Checked[i] {
			req.Factors[f.Key] = true
		}
	}
	return req, req.Validate()
}

func (s *LungScreen) submit() tea.Cmd {
	req, err := s.Request()
	if err != nil {
		s.errMsg = err.Error()
		return s.form.MarkInvalid("age")
	}

	s.busy = true
	s.errMsg = ""
	p, ex := s.predictor, s.explainer
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		ctx := context.Background()
		res, err := p.PredictLung(ctx, req)
		if err != nil {
			return predictDoneMsg{Request: req, Err: err}
		}
		out := predictDoneMsg{Request: req, Result: res}
		if ex != nil {
			e := ex.Lung(ctx, req, *res)
			out.Explanation = &e
		}
		return out
	})
}

func riskColor(level string) color.Color {
	switch level {
	case predict.RiskLow:
		return theme.Success
	case predict.RiskModerate:
		return theme.Warning
	}
	return theme.Error
}

func (s *LungScreen) renderResult(width int) string {
	res := s.result.Result
	level := predict.RiskLevel(res.Probability)

	var b strings.Builder
	headline := "Low likelihood of lung cancer"
	style := theme.Positive
	if res.Positive() {
		headline = "Elevated likelihood of lung cancer"
		style = theme.Negative
	}
	b.WriteString(style.Render(headline) + "\n\n")

	bar := components.NewProgressBar("Probability", res.Probability, true, width)
	bar.Color = riskColor(level)
	b.WriteString(bar.View() + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(riskColor(level)).Bold(true).Render(level+" risk") + "\n\n")

	if res.Message != "" {
		b.WriteString(theme.Body.Width(width).Render(res.Message) + "\n\n")
	}
	if e := s.result.Explanation; e != nil {
		b.WriteString(theme.Label.Render("What this means") + "\n")
		b.WriteString(theme.Body.Width(width).Render(e.Summary) + "\n")
		for _, tip := range e.Tips {
			b.WriteString(theme.Body.Width(width).Render("• "+tip) + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(theme.Hint.Width(width).Render("This estimate is not a diagnosis. Talk to a doctor about screening if you have concerns."))
	return b.String()
}

func (s *LungScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	if s.result != nil {
		if s.paneWidth != cw-6 {
			s.paneWidth = cw - 6
			s.pane.SetContent(s.renderResult(s.paneWidth))
		}
		h := height - 6
		if h < 3 {
			h = 3
		}
		header := theme.Title.Render("Lung Risk Result") + "\n\n"
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
			components.Panel(header+s.pane.View(cw-6, h), cw))
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Lung Cancer Risk") + "\n")
	b.WriteString(theme.Subtitle.Render("Tick every factor that applies to you.") + "\n\n")
	b.WriteString(s.form.View(10, 0) + "\n\n")
	b.WriteString(theme.Label.Render("Risk factors") + "\n")
	b.WriteString(s.checklist.View() + "\n")

	switch {
	case s.busy:
		b.WriteString(s.spinner.View() + " " + theme.Body.Render("Estimating risk..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	default:
		b.WriteString(components.Button{Label: "Predict", Focused: true}.View())
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, components.Panel(b.String(), cw))
}
