package login

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/carescope/internal/auth"
	"github.com/abhisek/carescope/internal/router"
	"github.com/abhisek/carescope/internal/screen"
	"github.com/abhisek/carescope/internal/ui/components"
	"github.com/abhisek/carescope/internal/ui/layout"
	"github.com/abhisek/carescope/internal/ui/theme"
)

// Authenticator signs a user in or up.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*auth.User, error)
	SignUp(ctx context.Context, name, email, password string) (*auth.User, error)
}

type authDoneMsg struct {
	User *auth.User
	Err  error
}

// LoginScreen collects credentials and hands over to the next screen once
// the account service accepts them.
type LoginScreen struct {
	auth    Authenticator
	next    func() screen.Screen
	signUp  bool
	form    components.Form
	busy    bool
	errMsg  string
	leaving bool
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. next builds the screen shown after sign-in.
func New(a Authenticator, next func() screen.Screen) *LoginScreen {
	s := &LoginScreen{auth: a, next: next}
	s.buildForm()
	return s
}

func (s *LoginScreen) buildForm() {
	var fields []components.FormField
	if s.signUp {
		fields = append(fields, components.TextField("name", "Name", "Your name", components.AnyText, 60))
	}
	fields = append(fields,
		components.TextField("email", "Email", "you@example.com", components.AnyText, 120),
		components.TextField("password", "Password", "", components.Secret, 72),
	)
	s.form = components.NewForm(fields...)
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.form.Init()
}

func (s *LoginScreen) Title() string {
	if s.signUp {
		return "Create Account"
	}
	return "Sign In"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	toggle := "Create account"
	if s.signUp {
		toggle = "Have an account"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+N", Description: toggle},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = describe(msg.Err)
			return s, nil
		}
		return s, s.leave()

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "ctrl+n":
			email := s.form.Value("email")
			s.signUp = !s.signUp
			s.errMsg = ""
			s.buildForm()
			s.form.Set("email", email)
			return s, s.form.Init()
		case "enter":
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

func (s *LoginScreen) leave() tea.Cmd {
	if s.leaving {
		return nil
	}
	s.leaving = true
	next := s.next()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *LoginScreen) submit() tea.Cmd {
	name := s.form.Value("name")
	email := s.form.Value("email")
	password := s.form.Raw("password")

	switch {
	case s.signUp && name == "":
		s.errMsg = "Please enter your name"
		return s.form.MarkInvalid("name")
	case email == "":
		s.errMsg = "Please enter your email"
		return s.form.MarkInvalid("email")
	case password == "":
		s.errMsg = "Please enter your password"
		return s.form.MarkInvalid("password")
	case s.signUp && len(password) < 6:
		s.errMsg = "Password must be at least 6 characters"
		return s.form.MarkInvalid("password")
	}

	s.busy = true
	s.errMsg = ""
	a, signUp := s.auth, s.signUp
	return func() tea.Msg {
		ctx := context.Background()
		var u *auth.User
		var err error
		if signUp {
			u, err = a.SignUp(ctx, name, email, password)
		} else {
			u, err = a.SignIn(ctx, email, password)
		}
		return authDoneMsg{User: u, Err: err}
	}
}

func describe(err error) string {
	var apiErr *auth.APIError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return fmt.Sprintf("Could not reach the account service: %v", err)
	}
}

func (s *LoginScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	heading := "Welcome back"
	sub := "Sign in to run your health screenings."
	if s.signUp {
		heading = "Create your account"
		sub = "Your results stay on this device."
	}
	b.WriteString(theme.Title.Width(cw - 6).Render(heading))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(cw - 6).Render(sub))
	b.WriteString("\n\n")
	b.WriteString(s.form.View(10, 0))
	b.WriteString("\n")

	switch {
	case s.busy:
		b.WriteString(theme.Hint.Render("Contacting account service..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	default:
		label := "Sign In"
		if s.signUp {
			label = "Sign Up"
		}
		b.WriteString(components.Button{Label: label, Focused: s.form.OnSubmitRow()}.View())
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, components.Panel(b.String(), cw))
}
