// Package hospitals lists nearby hospitals by specialty.
package hospitals

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/directory"
	"github.com/abhisek/carescope/internal/screen"
	"github.com/abhisek/carescope/internal/ui/components"
	"github.com/abhisek/carescope/internal/ui/layout"
	"github.com/abhisek/carescope/internal/ui/theme"
)

// HospitalsScreen shows the directory filtered by one specialty.
type HospitalsScreen struct {
	filter components.Selector
	list   []directory.Hospital
	pane   components.ScrollPane

	paneWidth int
}

var (
	_ screen.Screen          = (*HospitalsScreen)(nil)
	_ screen.KeyHintProvider = (*HospitalsScreen)(nil)
)

// New creates the screen filtered by specialty, or everything when it is
// "" or unknown.
func New(specialty string) *HospitalsScreen {
	specs := directory.Specialties()
	labels := make([]string, len(specs))
	for i, sp := range specs {
		labels[i] = directory.Label(sp)
	}
	s := &HospitalsScreen{
		filter: components.NewSelector(specs, specialty),
		pane:   components.NewScrollPane(),
	}
	s.filter.Display = labels
	s.filter.Focused = true
	s.refresh()
	return s
}

func (s *HospitalsScreen) refresh() {
	list, err := directory.Filter(s.filter.Value())
	if err != nil {
		list = nil
	}
	s.list = list
	s.paneWidth = 0
}

func (s *HospitalsScreen) Init() tea.Cmd {
	return nil
}

func (s *HospitalsScreen) Title() string {
	return "Find Hospitals"
}

func (s *HospitalsScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "←→", Description: "Specialty"}}
	hints = append(hints, s.pane.ScrollHints()...)
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *HospitalsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "left", "right", "h", "l", "space":
		before := s.filter.Value()
		s.filter, _ = s.filter.Update(kmsg)
		if s.filter.Value() != before {
			s.refresh()
		}
		return s, nil
	}
	var cmd tea.Cmd
	s.pane, cmd = s.pane.Update(kmsg)
	return s, cmd
}

// Hospitals returns the entries currently shown.
func (s *HospitalsScreen) Hospitals() []directory.Hospital {
	return s.list
}

func (s *HospitalsScreen) renderList(width int) string {
	if len(s.list) == 0 {
		return theme.Hint.Render("No hospitals found for this specialty.")
	}

	var b strings.Builder
	for i, h := range s.list {
		if i > 0 {
			b.WriteString("\n")
		}
		name := theme.Label.Render(h.Name)
		dist := theme.Hint.Render(fmt.Sprintf("%.1f mi", h.DistanceMi))
		gap := width - lipgloss.Width(name) - lipgloss.Width(dist)
		if gap < 1 {
			gap = 1
		}
		b.WriteString(name + strings.Repeat(" ", gap) + dist + "\n")

		specs := make([]string, len(h.Specialties))
		for j, sp := range h.Specialties {
			specs[j] = directory.Label(sp)
		}
		stars := lipgloss.NewStyle().Foreground(theme.Warning).Render(directory.Stars(h.Rating))
		b.WriteString(stars + theme.Hint.Render(fmt.Sprintf(" %.1f  ·  %s", h.Rating, strings.Join(specs, ", "))) + "\n")
		b.WriteString(theme.Body.Width(width).Render(h.Address) + "\n")
		b.WriteString(theme.Body.Render("☎ "+h.Phone) + "\n")
	}
	return b.String()
}

func (s *HospitalsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if s.paneWidth != cw-6 {
		s.paneWidth = cw - 6
		s.pane.SetContent(s.renderList(s.paneWidth))
	}

	h := height - 8
	if h < 3 {
		h = 3
	}
	var b strings.Builder
	b.WriteString(theme.Title.Render("Hospitals Near You") + "\n")
	b.WriteString(theme.Label.Render("Specialty ") + s.filter.View() + "\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d found, nearest first", len(s.list))) + "\n\n")
	b.WriteString(s.pane.View(cw-6, h))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, components.Panel(b.String(), cw))
}
