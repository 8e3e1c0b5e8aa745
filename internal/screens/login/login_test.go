package login

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/carescope/internal/auth"
	"github.com/abhisek/carescope/internal/router"
	"github.com/abhisek/carescope/internal/screen"
)

type fakeAuth struct {
	signIns []string
	signUps []string
	err     error
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*auth.User, error) {
	f.signIns = append(f.signIns, email+"/"+password)
	if f.err != nil {
		return nil, f.err
	}
	return &auth.User{ID: "u1", Email: email}, nil
}

func (f *fakeAuth) SignUp(_ context.Context, name, email, password string) (*auth.User, error) {
	f.signUps = append(f.signUps, name+"/"+email+"/"+password)
	if f.err != nil {
		return nil, f.err
	}
	return &auth.User{ID: "u2", Name: name, Email: email}, nil
}

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "home" }
func (s *stubScreen) Title() string                           { return "Home" }

func typeText(s *LoginScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func press(s *LoginScreen, code rune) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: code})
	return cmd
}

func newTestLogin(a Authenticator) (*LoginScreen, *int) {
	calls := 0
	s := New(a, func() screen.Screen {
		calls++
		return &stubScreen{}
	})
	s.Init()
	return s, &calls
}

func TestSignInSuccessReplacesScreen(t *testing.T) {
	fa := &fakeAuth{}
	s, calls := newTestLogin(fa)

	typeText(s, "ada@example.com")
	press(s, tea.KeyTab)
	typeText(s, "pw 123")

	cmd := press(s, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("expected a sign-in command")
	}
	if !s.busy {
		t.Error("expected screen to be busy while signing in")
	}
	msg := cmd()
	if len(fa.signIns) != 1 || fa.signIns[0] != "ada@example.com/pw 123" {
		t.Fatalf("unexpected sign-in calls: %v", fa.signIns)
	}

	_, cmd = s.Update(msg)
	if cmd == nil {
		t.Fatal("expected navigation after sign-in")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if *calls != 1 {
		t.Errorf("next factory should be called once, got %d", *calls)
	}
}

func TestSignInRejected(t *testing.T) {
	fa := &fakeAuth{err: auth.ErrInvalidCredentials}
	s, calls := newTestLogin(fa)

	typeText(s, "ada@example.com")
	press(s, tea.KeyTab)
	typeText(s, "wrong")
	msg := press(s, tea.KeyEnter)()
	s.Update(msg)

	if *calls != 0 {
		t.Error("should not navigate after a rejected sign-in")
	}
	if !strings.Contains(s.View(100, 30), "Invalid email or password") {
		t.Error("expected the rejection to be shown")
	}
}

func TestMissingFieldsDoNotSubmit(t *testing.T) {
	fa := &fakeAuth{}
	s, _ := newTestLogin(fa)

	press(s, tea.KeyEnter)
	if s.busy || len(fa.signIns) != 0 {
		t.Fatal("empty form must not be submitted")
	}
	if !strings.Contains(s.View(100, 30), "Please enter your email") {
		t.Error("expected a missing-email message")
	}
}

func TestToggleSignUp(t *testing.T) {
	fa := &fakeAuth{}
	s, _ := newTestLogin(fa)
	typeText(s, "bo@example.com")

	s.Update(tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})
	if !s.signUp || s.Title() != "Create Account" {
		t.Fatal("expected sign-up mode")
	}
	if s.form.Value("email") != "bo@example.com" {
		t.Error("email should carry over when switching modes")
	}

	typeText(s, "Bo")
	press(s, tea.KeyTab)
	press(s, tea.KeyTab)
	typeText(s, "12345")
	press(s, tea.KeyEnter)
	if len(fa.signUps) != 0 {
		t.Fatal("short password must not be submitted")
	}

	typeText(s, "6")
	msg := press(s, tea.KeyEnter)()
	if len(fa.signUps) != 1 || fa.signUps[0] != "Bo/bo@example.com/123456" {
		t.Fatalf("unexpected sign-up calls: %v", fa.signUps)
	}
	if done, ok := msg.(authDoneMsg); !ok || done.Err != nil {
		t.Fatalf("unexpected message %#v", msg)
	}
}
