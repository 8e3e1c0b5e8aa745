package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for stacked panels so
// boxes line up.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Panel wraps content in a rounded-border card at the given content width.
func Panel(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw-2).
		Padding(1, 2).
		Render(content)
}

// Alert renders a blocking error dialog centered in the frame.
func Alert(title, message string, width, height int) string {
	body := lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render(title) +
		"\n\n" + lipgloss.NewStyle().Foreground(theme.Text).Render(message) +
		"\n\n" + theme.ButtonActive.Render("OK")
	box := theme.Alert.Width(ContentWidth(width) - 10).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
