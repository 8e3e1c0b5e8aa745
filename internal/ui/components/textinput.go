package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/ui/theme"
)

// InputMode restricts which characters a TextInput accepts.
type InputMode int

const (
	AnyText InputMode = iota
	Digits            // 0-9
	Decimal           // 0-9 and one '.'
	Secret            // any text, echoed as bullets
)

// TextInput wraps bubbles/textinput with app styling.
type TextInput struct {
	Model    textinput.Model
	Mode     InputMode
	MaxWidth int
	invalid  bool
}

// NewTextInput creates a new styled, unfocused text input.
func NewTextInput(placeholder string, mode InputMode, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}
	if mode == Secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return TextInput{
		Model:    ti,
		Mode:     mode,
		MaxWidth: maxWidth,
	}
}

// Focus focuses the input.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Update handles messages. Characters the mode forbids are dropped.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && !t.accepts(kmsg.Text) {
		return t, nil
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	t.invalid = false
	return t, cmd
}

func (t TextInput) accepts(text string) bool {
	for _, r := range text {
		switch t.Mode {
		case Digits:
			if r < '0' || r > '9' {
				return false
			}
		case Decimal:
			if r == '.' {
				if strings.Contains(t.Model.Value(), ".") {
					return false
				}
				continue
			}
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.invalid {
		view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}

// MarkInvalid flags the input until its next edit.
func (t *TextInput) MarkInvalid() {
	t.invalid = true
}
