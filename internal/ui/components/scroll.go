package components

import (
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/carescope/internal/ui/layout"
)

// ScrollPane shows long result text in a fixed-height window scrolled with
// the arrow, j/k and page keys.
type ScrollPane struct {
	vp      viewport.Model
	content string
}

// NewScrollPane returns an empty pane.
func NewScrollPane() ScrollPane {
	return ScrollPane{vp: viewport.New()}
}

// SetContent replaces the text and scrolls back to the top.
func (p *ScrollPane) SetContent(s string) {
	p.content = s
	p.vp.SetContent(s)
	p.vp.GotoTop()
}

// Update forwards scroll keys to the viewport.
func (p ScrollPane) Update(msg tea.Msg) (ScrollPane, tea.Cmd) {
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return p, cmd
}

// View sizes the pane to width x height and renders the visible lines.
func (p *ScrollPane) View(width, height int) string {
	if p.vp.Width() != width || p.vp.Height() != height {
		p.vp.SetWidth(width)
		p.vp.SetHeight(height)
		p.vp.SetContent(p.content)
	}
	return p.vp.View()
}

// ScrollHints returns the footer hint for scrolling, or nothing when the
// content fits.
func (p ScrollPane) ScrollHints() []layout.KeyHint {
	if !p.Scrollable() {
		return nil
	}
	return []layout.KeyHint{{Key: "↑↓", Description: "Scroll"}}
}

// Scrollable reports whether the content is taller than the pane.
func (p ScrollPane) Scrollable() bool {
	return p.vp.TotalLineCount() > p.vp.Height()
}
