package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/ui/theme"
)

// Selector cycles through a fixed set of options with left/right.
type Selector struct {
	Options []string
	// Display overrides the rendered text per option. Optional.
	Display  []string
	Selected int
	Focused  bool
}

// NewSelector creates a selector with the option equal to value selected,
// or the first option when value is not found.
func NewSelector(options []string, value string) Selector {
	s := Selector{Options: options}
	s.SetValue(value)
	return s
}

// Update handles left/right (and h/l, space) cycling.
func (s Selector) Update(msg tea.Msg) (Selector, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(s.Options) == 0 {
		return s, nil
	}
	switch kmsg.String() {
	case "left", "h":
		s.Selected = (s.Selected - 1 + len(s.Options)) % len(s.Options)
	case "right", "l", "space":
		s.Selected = (s.Selected + 1) % len(s.Options)
	}
	return s, nil
}

// Value returns the selected option.
func (s Selector) Value() string {
	if s.Selected < 0 || s.Selected >= len(s.Options) {
		return ""
	}
	return s.Options[s.Selected]
}

// SetValue selects the option equal to v.
func (s *Selector) SetValue(v string) {
	for i, o := range s.Options {
		if o == v {
			s.Selected = i
			return
		}
	}
	s.Selected = 0
}

// View renders "‹ option ›" with the arrows highlighted when focused.
func (s Selector) View() string {
	text := s.Value()
	if s.Display != nil && s.Selected < len(s.Display) {
		text = s.Display[s.Selected]
	}
	arrow := lipgloss.NewStyle().Foreground(theme.Border)
	value := lipgloss.NewStyle().Foreground(theme.Text)
	if s.Focused {
		arrow = arrow.Foreground(theme.Primary)
		value = value.Bold(true)
	}
	return arrow.Render("‹ ") + value.Render(text) + arrow.Render(" ›")
}
