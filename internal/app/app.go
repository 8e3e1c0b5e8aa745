package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/auth"
	"github.com/abhisek/carescope/internal/directory"
	"github.com/abhisek/carescope/internal/explain"
	"github.com/abhisek/carescope/internal/predict"
	"github.com/abhisek/carescope/internal/router"
	"github.com/abhisek/carescope/internal/screen"
	"github.com/abhisek/carescope/internal/screens/brain"
	"github.com/abhisek/carescope/internal/screens/history"
	"github.com/abhisek/carescope/internal/screens/home"
	"github.com/abhisek/carescope/internal/screens/hospitals"
	"github.com/abhisek/carescope/internal/screens/login"
	"github.com/abhisek/carescope/internal/screens/lung"
	"github.com/abhisek/carescope/internal/screens/survey"
	"github.com/abhisek/carescope/internal/screens/thyroidlab"
	"github.com/abhisek/carescope/internal/store"
	"github.com/abhisek/carescope/internal/ui/layout"
)

// Options holds the services the screens run against.
type Options struct {
	Session *auth.Session
	Predict *predict.Client
	// Explain may be nil or unconfigured; screens then show what the
	// services return and nothing more.
	Explain *explain.Service
	// History is optional.
	History store.AssessmentRepo
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	width  int
	height int
}

// newAppModel starts on the home screen when the session is signed in and
// on the login screen otherwise.
func newAppModel(opts Options) AppModel {
	m := AppModel{opts: opts}
	var first screen.Screen
	if opts.Session.SignedIn() {
		first = m.homeScreen()
	} else {
		first = m.loginScreen()
	}
	m.router = router.New(first)
	return m
}

func (m AppModel) loginScreen() screen.Screen {
	return login.New(m.opts.Session, m.homeScreen)
}

func (m AppModel) homeScreen() screen.Screen {
	ex := m.opts.Explain
	// A nil interface keeps screens from asking an unconfigured model and
	// printing canned text under every result.
	var surveyEx survey.Explainer
	var lungEx lung.Explainer
	var brainEx brain.Explainer
	if ex.Available() {
		surveyEx, lungEx, brainEx = ex, ex, ex
	}

	p, session := m.opts.Predict, m.opts.Session
	entries := []home.Entry{
		{
			Label:       "Thyroid Symptom Survey",
			Description: "Answer 8 questions about how you feel",
			Open:        func() screen.Screen { return survey.New(p, session.Token, surveyEx) },
		},
		{
			Label:       "Thyroid Lab Test",
			Description: "Classify TSH, T3 and TT4 results",
			// Diet lists fall back to a fixed list, so the explainer is
			// always passed here.
			Open: func() screen.Screen { return thyroidlab.New(p, ex) },
		},
		{
			Label:       "Lung Cancer Risk",
			Description: "Estimate risk from lifestyle and symptoms",
			Open:        func() screen.Screen { return lung.New(p, lungEx) },
		},
		{
			Label:       "Brain Scan",
			Description: "Upload an MRI image for tumor screening",
			Open:        func() screen.Screen { return brain.New(p, brainEx) },
		},
		{
			Label:       "Find Hospitals",
			Description: "Nearby care by specialty",
			Open:        func() screen.Screen { return hospitals.New(directory.All) },
		},
	}
	histEntry := home.Entry{Label: "History", Description: "Past screenings on this device"}
	if m.opts.History != nil {
		repo := m.opts.History
		histEntry.Open = func() screen.Screen { return history.New(repo) }
	}
	entries = append(entries, histEntry)

	return home.New(home.Options{
		UserName: displayName(session.User()),
		Entries:  entries,
		History:  m.opts.History,
		Logout:   m.logout,
	})
}

func (m AppModel) logout() tea.Cmd {
	session := m.opts.Session
	next := m.loginScreen()
	return func() tea.Msg {
		if err := session.SignOut(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: clearing saved session: %v\n", err)
		}
		return router.ResetScreenMsg{Screen: next}
	}
}

func displayName(u *auth.User) string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bi, ok := m.router.Active().(screen.BackInterceptor); ok && bi.InterceptsBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.frame())
	v.AltScreen = true
	return v
}

// frame renders header, active screen and footer for the current size.
func (m AppModel) frame() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, displayName(m.opts.Session.User()), m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
