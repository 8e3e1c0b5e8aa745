package components

import (
	"strings"

	"github.com/abhisek/carescope/internal/ui/theme"
)

// Button is a styled, focusable button.
type Button struct {
	Label    string
	Focused  bool
	Disabled bool
}

// View renders the button.
func (b Button) View() string {
	switch {
	case b.Disabled:
		return theme.ButtonDisabled.Render(b.Label)
	case b.Focused:
		return theme.ButtonActive.Render("▸ " + b.Label)
	default:
		return theme.ButtonInactive.Render(b.Label)
	}
}

// ButtonRow renders buttons side by side.
func ButtonRow(buttons ...Button) string {
	parts := make([]string, 0, len(buttons))
	for _, b := range buttons {
		parts = append(parts, b.View())
	}
	return strings.Join(parts, "   ")
}
