// Package brain uploads an MRI scan for tumor classification.
package brain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/explain"
	"github.com/abhisek/carescope/internal/imaging"
	"github.com/abhisek/carescope/internal/predict"
	"github.com/abhisek/carescope/internal/screen"
	"github.com/abhisek/carescope/internal/ui/components"
	"github.com/abhisek/carescope/internal/ui/layout"
	"github.com/abhisek/carescope/internal/ui/theme"
)

// Classifier labels a prepared scan.
type Classifier interface {
	ClassifyBrainScan(ctx context.Context, up imaging.Upload) (*predict.BrainResult, error)
}

// Explainer describes a scan result when the service sent no explanation.
type Explainer interface {
	BrainScan(ctx context.Context, res predict.BrainResult) explain.Explanation
}

type classifyDoneMsg struct {
	Upload      *imaging.Upload
	Result      *predict.BrainResult
	Explanation string
	Err         error
}

// BrainScreen takes a file path, prepares the image and shows the verdict.
type BrainScreen struct {
	classifier Classifier
	explainer  Explainer

	path    components.TextInput
	spinner spinner.Model
	pane    components.ScrollPane

	busy      bool
	errMsg    string
	result    *classifyDoneMsg
	paneWidth int
}

const msgNotAnImage = "Please upload an image file"

var (
	_ screen.Screen          = (*BrainScreen)(nil)
	_ screen.KeyHintProvider = (*BrainScreen)(nil)
)

// New creates the screen. explainer may be nil.
func New(c Classifier, explainer Explainer) *BrainScreen {
	return &BrainScreen{
		classifier: c,
		explainer:  explainer,
		path:       components.NewTextInput("~/scans/mri.png", components.AnyText, 4096),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary))),
		pane:       components.NewScrollPane(),
	}
}

func (s *BrainScreen) Init() tea.Cmd {
	return s.path.Focus()
}

func (s *BrainScreen) Title() string {
	return "Brain Scan"
}

func (s *BrainScreen) KeyHints() []layout.KeyHint {
	if s.result != nil {
		return append(s.pane.ScrollHints(),
			layout.KeyHint{Key: "Enter", Description: "Another scan"},
			layout.KeyHint{Key: "Esc", Description: "Back"},
		)
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Upload"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *BrainScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case classifyDoneMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = describe(msg.Err)
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
				s.path.SetValue("")
				return s, s.path.Focus()
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
	s.path, cmd = s.path.Update(msg)
	return s, cmd
}

func (s *BrainScreen) submit() tea.Cmd {
	path := expandHome(strings.Trim(strings.TrimSpace(s.path.Value()), `"'`))
	if path == "" {
		s.errMsg = "Please select an image file"
		return nil
	}

	s.busy = true
	s.errMsg = ""
	c, ex := s.classifier, s.explainer
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		return classify(context.Background(), c, ex, path)
	})
}

func classify(ctx context.Context, c Classifier, ex Explainer, path string) classifyDoneMsg {
	up, err := imaging.Prepare(path)
	if err != nil {
		return classifyDoneMsg{Err: err}
	}
	res, err := c.ClassifyBrainScan(ctx, *up)
	if err != nil {
		return classifyDoneMsg{Upload: up, Err: err}
	}
	out := classifyDoneMsg{Upload: up, Result: res, Explanation: predict.PlainText(res.Explanation)}
	if out.Explanation == "" && ex != nil {
		out.Explanation = ex.BrainScan(ctx, *res).Summary
	}
	return out
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func describe(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "File not found"
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return msgNotAnImage
	}
	return err.Error()
}

func (s *BrainScreen) renderResult(width int) string {
	res, up := s.result.Result, s.result.Upload

	var b strings.Builder
	style := theme.Positive
	if res.TumorDetected() {
		style = theme.Negative
	}
	b.WriteString(style.Render(res.Result) + "\n")
	if conf, err := res.ConfidenceValue(); err == nil {
		bar := components.NewProgressBar("Confidence", conf, true, width)
		b.WriteString(bar.View() + "\n")
	} else if res.Confidence != "" {
		b.WriteString(theme.Subtitle.Render("Confidence: "+res.Confidence) + "\n")
	}

	source := fmt.Sprintf("%s, %d×%d %s", up.Filename, up.Width, up.Height, up.Source)
	if up.Resized {
		source += ", downscaled"
	}
	b.WriteString(theme.Hint.Render(source) + "\n\n")

	if s.result.Explanation != "" {
		b.WriteString(theme.Label.Render("About this result") + "\n")
		b.WriteString(theme.Body.Width(width).Render(s.result.Explanation) + "\n\n")
	}
	b.WriteString(theme.Hint.Width(width).Render("Automated scan reading is not a diagnosis. A radiologist must review every scan."))
	return b.String()
}

func (s *BrainScreen) View(width, height int) string {
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
		header := theme.Title.Render("Brain Scan Result") + "\n\n"
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
			components.Panel(header+s.pane.View(cw-6, h), cw))
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Brain MRI Scan") + "\n")
	b.WriteString(theme.Subtitle.Width(cw-6).Render("Enter the path of a PNG, JPEG or DICOM image. Large images are scaled down before upload.") + "\n\n")
	b.WriteString(theme.Label.Render("Image file") + "\n")
	b.WriteString(s.path.View() + "\n\n")

	switch {
	case s.busy:
		b.WriteString(s.spinner.View() + " " + theme.Body.Render("Analyzing scan..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	default:
		b.WriteString(components.Button{Label: "Upload", Focused: true}.View())
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, components.Panel(b.String(), cw))
}
