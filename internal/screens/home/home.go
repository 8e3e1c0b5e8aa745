package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/router"
	"github.com/abhisek/carescope/internal/screen"
	"github.com/abhisek/carescope/internal/store"
	"github.com/abhisek/carescope/internal/ui/components"
	"github.com/abhisek/carescope/internal/ui/layout"
	"github.com/abhisek/carescope/internal/ui/theme"
)

// Entry is one menu destination.
type Entry struct {
	Label       string
	Description string
	// Open builds the screen to push. Nil shows the entry disabled.
	Open func() screen.Screen
}

// Options configures the home screen.
type Options struct {
	UserName string
	Entries  []Entry
	// History feeds the "last screening" line. Optional.
	History store.AssessmentRepo
	// Logout runs when the user picks Log Out. Nil hides the entry.
	Logout func() tea.Cmd
}

type lastLoadedMsg struct {
	Record *store.AssessmentRecord
}

// HomeScreen is the main menu.
type HomeScreen struct {
	opts Options
	menu components.Menu
	last *store.AssessmentRecord
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a HomeScreen.
func New(opts Options) *HomeScreen {
	items := make([]components.MenuItem, 0, len(opts.Entries)+2)
	for _, e := range opts.Entries {
		open := e.Open
		item := components.MenuItem{Label: e.Label, Description: e.Description, Disabled: open == nil}
		if open != nil {
			item.Action = func() tea.Cmd {
				next := open()
				return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		}
		items = append(items, item)
	}
	if opts.Logout != nil {
		items = append(items, components.MenuItem{Label: "Log Out", Description: "Forget this session on this device", Action: opts.Logout})
	}
	items = append(items, components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }})

	return &HomeScreen{opts: opts, menu: components.NewMenu(items)}
}

func (h *HomeScreen) Init() tea.Cmd {
	repo := h.opts.History
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		recs, err := repo.Recent(context.Background(), store.QueryOpts{Limit: 1})
		if err != nil || len(recs) == 0 {
			return lastLoadedMsg{}
		}
		return lastLoadedMsg{Record: &recs[0]}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(lastLoadedMsg); ok {
		h.last = msg.Record
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	greeting := "Welcome to CareScope"
	if h.opts.UserName != "" {
		greeting = "Welcome, " + h.opts.UserName
	}

	var sections []string
	sections = append(sections, theme.Title.Width(cw).Render(greeting))
	sections = append(sections, theme.Subtitle.Width(cw).Render("Quick screenings for thyroid, lung and brain health"))
	if h.last != nil {
		line := fmt.Sprintf("Last screening: %s, %s", store.KindLabel(h.last.Kind), h.last.Timestamp.Local().Format("Jan 02 15:04"))
		if h.last.Summary != "" {
			line += " · " + h.last.Summary
		}
		sections = append(sections, theme.Hint.Width(cw).Align(lipgloss.Center).Render(line))
	}
	sections = append(sections, components.Panel(h.menu.View(), cw))
	sections = append(sections, theme.Hint.Width(cw).Align(lipgloss.Center).Render(
		"Screenings are not a diagnosis. Always consult a healthcare professional."))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n\n"))
}
