// Package thyroidlab is the lab-value classifier screen: a form over the
// classifier's sixteen inputs and a result pane with an explanation and
// diet lists.
package thyroidlab

import (
	"context"
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

// Predictor classifies lab values.
type Predictor interface {
	PredictThyroid(ctx context.Context, req predict.ThyroidLabRequest) (*predict.ThyroidLabResult, error)
}

// Explainer fills in what the classifier leaves out.
type Explainer interface {
	ThyroidCondition(ctx context.Context, class string) explain.Explanation
	Diet(ctx context.Context, class string) (predict.DietRecommendations, bool)
}

type predictDoneMsg struct {
	Result *predict.ThyroidLabResult
	// Explanation is plain text, generated when the service sent none.
	Explanation string
	Err         error
}

// ThyroidLabScreen collects lab values and shows the classification.
type ThyroidLabScreen struct {
	predictor Predictor
	explainer Explainer

	form    components.Form
	spinner spinner.Model
	pane    components.ScrollPane

	busy   bool
	errMsg string
	result *predictDoneMsg
	// paneWidth is the width the result was last rendered at.
	paneWidth int
}

var (
	_ screen.Screen          = (*ThyroidLabScreen)(nil)
	_ screen.KeyHintProvider = (*ThyroidLabScreen)(nil)
)

// New creates the screen. explainer may be nil.
func New(p Predictor, explainer Explainer) *ThyroidLabScreen {
	s := &ThyroidLabScreen{
		predictor: p,
		explainer: explainer,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary))),
		pane:      components.NewScrollPane(),
	}
	s.form = components.NewForm(fields()...)
	return s
}

func fields() []components.FormField {
	out := make([]components.FormField, 0, len(predict.ThyroidFields))
	for _, f := range predict.ThyroidFields {
		switch f.Kind {
		case predict.LabNumeric:
			out = append(out, components.TextField(f.Key, f.Label, "not measured", components.Decimal, 8))
		case predict.LabSex:
			out = append(out, components.ChoiceField(f.Key, f.Label,
				[]string{"", "0", "1"}, []string{"Unknown", "Female", "Male"}, ""))
		case predict.LabFlag:
			out = append(out, components.ChoiceField(f.Key, f.Label,
				[]string{"", "0", "1"}, []string{"Unknown", "No", "Yes"}, ""))
		}
	}
	return out
}

func (s *ThyroidLabScreen) Init() tea.Cmd {
	return s.form.Init()
}

func (s *ThyroidLabScreen) Title() string {
	return "Thyroid Lab Test"
}

func (s *ThyroidLabScreen) KeyHints() []layout.KeyHint {
	if s.result != nil {
		return append(s.pane.ScrollHints(),
			layout.KeyHint{Key: "Enter", Description: "Edit values"},
			layout.KeyHint{Key: "Esc", Description: "Back"},
		)
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Classify"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ThyroidLabScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
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
				return s, s.form.Init()
			}
			var cmd tea.Cmd
			s.pane, cmd = s.pane.Update(msg)
			return s, cmd
		}
		if msg.String() == "enter" {
			return s, s.submit()
		}
	}

	if s.result != nil {
		return s, nil
	}
	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

func (s *ThyroidLabScreen) submit() tea.Cmd {
	req := predict.NewThyroidLabRequest()
	for k, v := range s.form.Values() {
		req[k] = v
	}
	if err := req.Validate(); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	if strings.TrimSpace(req["TSH"]) == "" {
		s.errMsg = "Please enter at least your TSH level"
		return s.form.MarkInvalid("TSH")
	}

	s.busy = true
	s.errMsg = ""
	p, ex := s.predictor, s.explainer
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		return classify(context.Background(), p, ex, req)
	})
}

// classify runs the prediction and fills any missing explanation or diet
// from the explainer.
func classify(ctx context.Context, p Predictor, ex Explainer, req predict.ThyroidLabRequest) predictDoneMsg {
	res, err := p.PredictThyroid(ctx, req)
	if err != nil {
		return predictDoneMsg{Err: err}
	}
	out := predictDoneMsg{Result: res, Explanation: predict.PlainText(res.Explanation)}
	if ex == nil {
		return out
	}
	if out.Explanation == "" {
		out.Explanation = ex.ThyroidCondition(ctx, res.Prediction).Summary
	}
	if res.Diet.Empty() {
		res.Diet, _ = ex.Diet(ctx, res.Prediction)
	}
	return out
}

func (s *ThyroidLabScreen) renderResult(width int) string {
	res := s.result.Result

	var b strings.Builder
	b.WriteString(theme.Label.Render("Prediction") + "\n")
	style := theme.Negative
	if strings.EqualFold(res.Prediction, "negative") {
		style = theme.Positive
	}
	b.WriteString(style.Render(res.Prediction) + "\n\n")

	if s.result.Explanation != "" {
		b.WriteString(theme.Label.Render("About this result") + "\n")
		b.WriteString(theme.Body.Width(width).Render(s.result.Explanation) + "\n\n")
	}

	writeFoods := func(title string, foods []predict.Food) {
		if len(foods) == 0 {
			return
		}
		b.WriteString(theme.Label.Render(title) + "\n")
		for _, f := range foods {
			line := "• " + f.Name
			if f.Reason != "" {
				line += ": " + f.Reason
			}
			b.WriteString(theme.Body.Width(width).Render(line) + "\n")
		}
		b.WriteString("\n")
	}
	writeFoods("Foods to include", res.Diet.Include)
	writeFoods("Foods to avoid", res.Diet.Avoid)

	b.WriteString(theme.Hint.Width(width).Render("This result is not a diagnosis. Discuss your lab values with a healthcare professional."))
	return b.String()
}

func (s *ThyroidLabScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	if s.result != nil {
		h := height - 6
		if h < 3 {
			h = 3
		}
		if s.paneWidth != cw-6 {
			s.paneWidth = cw - 6
			s.pane.SetContent(s.renderResult(s.paneWidth))
		}
		header := theme.Title.Render("Thyroid Lab Result") + "\n\n"
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
			components.Panel(header+s.pane.View(cw-6, h), cw))
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Thyroid Lab Test") + "\n")
	b.WriteString(theme.Subtitle.Render("Enter the values from your lab report. Leave unknown values blank.") + "\n\n")
	rows := height - 10
	if rows < 4 {
		rows = 4
	}
	b.WriteString(s.form.View(28, rows) + "\n\n")

	switch {
	case s.busy:
		b.WriteString(s.spinner.View() + " " + theme.Body.Render("Classifying..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	default:
		b.WriteString(components.Button{Label: "Classify", Focused: s.form.OnSubmitRow()}.View())
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, components.Panel(b.String(), cw))
}
