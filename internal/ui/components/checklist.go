package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/ui/theme"
)

// Checklist is a vertical list of yes/no toggles.
type Checklist struct {
	Items   []string
	Checked []bool
	Cursor  int
	Focused bool
}

// NewChecklist creates a checklist with every item unchecked.
func NewChecklist(items []string) Checklist {
	return Checklist{Items: items, Checked: make([]bool, len(items))}
}

// Update moves the cursor and toggles with space or x. Moving past either
// end is reported through the returned bool so a parent can move focus.
func (c Checklist) Update(msg tea.Msg) (Checklist, bool) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return c, false
	}
	switch kmsg.String() {
	case "up", "k":
		if c.Cursor == 0 {
			return c, true
		}
		c.Cursor--
	case "down", "j":
		if c.Cursor >= len(c.Items)-1 {
			return c, true
		}
		c.Cursor++
	case "space", "x":
		c.Checked[c.Cursor] = !c.Checked[c.Cursor]
	}
	return c, false
}

// View renders one "[x] item" line per entry.
func (c Checklist) View() string {
	var s string
	for i, item := range c.Items {
		box := "[ ]"
		if c.Checked[i] {
			box = "[x]"
		}
		line := box + " " + item
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if c.Focused && i == c.Cursor {
			style = style.Foreground(theme.Primary).Bold(true)
			line = "▸ " + line
		} else {
			line = "  " + line
		}
		s += style.Render(line) + "\n"
	}
	return s
}
