package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/screen"
	"github.com/abhisek/carescope/internal/store"
	"github.com/abhisek/carescope/internal/ui/components"
	"github.com/abhisek/carescope/internal/ui/layout"
	"github.com/abhisek/carescope/internal/ui/theme"
)

// pageSize caps how many records are loaded at once.
const pageSize = 50

// kinds is the filter cycle; "" shows everything.
var kinds = []string{"", store.KindSymptomSurvey, store.KindThyroidLab, store.KindLung, store.KindBrainScan}

type historyLoadedMsg struct {
	Kind    string
	Records []store.AssessmentRecord
	Err     error
}

// HistoryScreen lists past submissions, newest first.
type HistoryScreen struct {
	repo     store.AssessmentRepo
	kind     int
	records  []store.AssessmentRecord
	selected int
	expanded map[string]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.AssessmentRepo) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		expanded: make(map[string]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	repo, kind := s.repo, kinds[s.kind]
	return func() tea.Msg {
		recs, err := repo.Recent(context.Background(), store.QueryOpts{Limit: pageSize, Kind: kind})
		return historyLoadedMsg{Kind: kind, Records: recs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "F", Description: "Filter"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Kind != kinds[s.kind] {
			return s, nil
		}
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.records = msg.Records
		if s.selected >= len(s.records) {
			s.selected = max(0, len(s.records)-1)
		}
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
		case "enter", "space":
			if s.selected < len(s.records) {
				id := s.records[s.selected].ID
				s.expanded[id] = !s.expanded[id]
			}
		case "f":
			s.kind = (s.kind + 1) % len(kinds)
			s.selected = 0
			s.loaded = false
			return s, s.load()
		}
	}
	return s, nil
}

func (s *HistoryScreen) filterLabel() string {
	if k := kinds[s.kind]; k != "" {
		return store.KindLabel(k)
	}
	return "All assessments"
}

func (s *HistoryScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	switch {
	case s.errMsg != "":
		return layout.Centered(width, theme.ErrorText, "\n\nError: "+s.errMsg)
	case !s.loaded:
		return layout.Message(width, "Loading history...")
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Assessment History") + "\n")
	b.WriteString(theme.Hint.Render("Showing: "+s.filterLabel()) + "\n\n")

	if len(s.records) == 0 {
		b.WriteString(theme.Hint.Italic(true).Render("No assessments yet. Results are saved here after each screening."))
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, components.Panel(b.String(), cw))
	}

	// Keep the selection visible by starting the window near it.
	rows := height - 8
	start := 0
	if s.selected >= rows/2 && rows > 0 {
		start = s.selected - rows/2
	}
	used := 0
	for i := start; i < len(s.records) && used < rows; i++ {
		block := s.renderRecord(i, cw-6)
		used += lipgloss.Height(block)
		b.WriteString(block + "\n")
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, components.Panel(strings.TrimRight(b.String(), "\n"), cw))
}

func (s *HistoryScreen) renderRecord(i, width int) string {
	rec := s.records[i]

	prefix := "  "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		prefix = "▸ "
		style = style.Foreground(theme.Primary).Bold(true)
	}
	status := theme.Positive.Render("✓")
	if !rec.Success {
		status = theme.Negative.Render("✗")
	}

	line := fmt.Sprintf("%s%s  %-17s", prefix, rec.Timestamp.Format("Jan 02 15:04"), store.KindLabel(rec.Kind))
	summary := rec.Summary
	if !rec.Success {
		summary = rec.ErrorMessage
	}
	out := style.Render(line) + " " + status + " " + theme.Body.Render(truncate(summary, width-lipgloss.Width(line)-4))

	if !s.expanded[rec.ID] {
		return out
	}

	detail := lipgloss.NewStyle().Foreground(theme.TextDim).PaddingLeft(4).Width(width)
	var d strings.Builder
	fmt.Fprintf(&d, "ID %s  ·  #%d  ·  %d ms\n", rec.ID, rec.Sequence, rec.LatencyMs)
	if rec.ErrorMessage != "" {
		fmt.Fprintf(&d, "Error: %s\n", rec.ErrorMessage)
	}
	if rec.Request != "" {
		fmt.Fprintf(&d, "Request:\n%s\n", indentJSON(rec.Request))
	}
	if rec.Response != "" {
		fmt.Fprintf(&d, "Response:\n%s", indentJSON(rec.Response))
	}
	return out + "\n" + detail.Render(strings.TrimRight(d.String(), "\n"))
}

func indentJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
