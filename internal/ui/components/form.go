package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/ui/theme"
)

// FormField is one labelled row of a Form: a text input or a selector.
type FormField struct {
	Key    string
	Label  string
	Input  *TextInput
	Choice *Selector
}

// TextField builds a text row.
func TextField(key, label, placeholder string, mode InputMode, limit int) FormField {
	in := NewTextInput(placeholder, mode, limit)
	return FormField{Key: key, Label: label, Input: &in}
}

// ChoiceField builds a selector row. display may be nil.
func ChoiceField(key, label string, options, display []string, value string) FormField {
	sel := NewSelector(options, value)
	sel.Display = display
	return FormField{Key: key, Label: label, Choice: &sel}
}

// Form moves focus between rows with tab/shift+tab or up/down and forwards
// other keys to the focused row. Focus may also rest past the last row
// (on the parent's submit button), reported by OnSubmitRow.
type Form struct {
	Fields []FormField
	Focus  int
}

// NewForm creates a form with the first row focused.
func NewForm(fields ...FormField) Form {
	return Form{Fields: fields}
}

// Init focuses the current row.
func (f *Form) Init() tea.Cmd {
	return f.applyFocus()
}

// OnSubmitRow reports whether focus is past the last field.
func (f Form) OnSubmitRow() bool {
	return f.Focus >= len(f.Fields)
}

// Update handles navigation and editing.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			if f.Focus < len(f.Fields) {
				f.Focus++
			}
			return f, f.applyFocus()
		case "shift+tab", "up":
			if f.Focus > 0 {
				f.Focus--
			}
			return f, f.applyFocus()
		}
	}
	if f.OnSubmitRow() {
		return f, nil
	}

	field := f.Fields[f.Focus]
	var cmd tea.Cmd
	if field.Input != nil {
		*field.Input, cmd = field.Input.Update(msg)
	} else if field.Choice != nil {
		*field.Choice, cmd = field.Choice.Update(msg)
	}
	return f, cmd
}

func (f *Form) applyFocus() tea.Cmd {
	var cmd tea.Cmd
	for i, field := range f.Fields {
		focused := i == f.Focus
		if field.Input != nil {
			if focused {
				cmd = field.Input.Focus()
			} else {
				field.Input.Blur()
			}
		}
		if field.Choice != nil {
			field.Choice.Focused = focused
		}
	}
	return cmd
}

// Value returns the value of the row with key.
func (f Form) Value(key string) string {
	for _, field := range f.Fields {
		if field.Key != key {
			continue
		}
		if field.Input != nil {
			return strings.TrimSpace(field.Input.Value())
		}
		if field.Choice != nil {
			return field.Choice.Value()
		}
	}
	return ""
}

// Raw returns a text row's value untrimmed.
func (f Form) Raw(key string) string {
	for _, field := range f.Fields {
		if field.Key == key && field.Input != nil {
			return field.Input.Value()
		}
	}
	return ""
}

// Values returns every row's value keyed by Key.
func (f Form) Values() map[string]string {
	out := make(map[string]string, len(f.Fields))
	for _, field := range f.Fields {
		out[field.Key] = f.Value(field.Key)
	}
	return out
}

// Set assigns a value to the row with key.
func (f *Form) Set(key, value string) {
	for _, field := range f.Fields {
		if field.Key != key {
			continue
		}
		if field.Input != nil {
			field.Input.SetValue(value)
		}
		if field.Choice != nil {
			field.Choice.SetValue(value)
		}
	}
}

// MarkInvalid flags the row with key and moves focus to it.
func (f *Form) MarkInvalid(key string) tea.Cmd {
	for i, field := range f.Fields {
		if field.Key == key {
			if field.Input != nil {
				field.Input.MarkInvalid()
			}
			f.Focus = i
			return f.applyFocus()
		}
	}
	return nil
}

// View renders at most rows lines, scrolling to keep focus visible.
// rows <= 0 renders every row.
func (f Form) View(labelWidth, rows int) string {
	start, end := 0, len(f.Fields)
	if rows > 0 && len(f.Fields) > rows {
		focus := f.Focus
		if focus >= len(f.Fields) {
			focus = len(f.Fields) - 1
		}
		start = focus - rows/2
		if start < 0 {
			start = 0
		}
		end = start + rows
		if end > len(f.Fields) {
			end = len(f.Fields)
			start = end - rows
		}
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(theme.Hint.Render("  ↑ more") + "\n")
	}
	for i := start; i < end; i++ {
		field := f.Fields[i]
		label := lipgloss.NewStyle().Width(labelWidth).Foreground(theme.TextDim)
		marker := "  "
		if i == f.Focus {
			label = label.Foreground(theme.Primary).Bold(true)
			marker = lipgloss.NewStyle().Foreground(theme.Primary).Render("▸ ")
		}
		var value string
		if field.Input != nil {
			value = field.Input.View()
		} else if field.Choice != nil {
			value = field.Choice.View()
		}
		b.WriteString(marker + label.Render(field.Label) + " " + value + "\n")
	}
	if end < len(f.Fields) {
		b.WriteString(theme.Hint.Render("  ↓ more") + "\n")
	}
	return b.String()
}
