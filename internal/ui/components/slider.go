package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/ui/theme"
)

// Slider renders a 0..1 value as a notched track with a knob.
type Slider struct {
	Value float64
	Steps int // notches between 0 and 1
	Width int
}

// View renders the track followed by the numeric value.
func (s Slider) View() string {
	steps := s.Steps
	if steps <= 0 {
		steps = 10
	}
	track := s.Width - 6
	if track < steps+1 {
		track = steps + 1
	}

	pos := int(s.Value*float64(track-1) + 0.5)
	if pos < 0 {
		pos = 0
	}
	if pos > track-1 {
		pos = track - 1
	}

	filled := lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Repeat("━", pos))
	knob := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("●")
	empty := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", track-1-pos))
	value := lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf(" %.1f", s.Value))

	return filled + knob + empty + value
}
