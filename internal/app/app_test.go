package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/carescope/internal/auth"
	"github.com/abhisek/carescope/internal/config"
	"github.com/abhisek/carescope/internal/devserver"
	"github.com/abhisek/carescope/internal/predict"
	"github.com/abhisek/carescope/internal/router"
	"github.com/abhisek/carescope/internal/screen"
	"github.com/abhisek/carescope/internal/screens/home"
	"github.com/abhisek/carescope/internal/screens/login"
	"github.com/abhisek/carescope/internal/screens/survey"
	"github.com/abhisek/carescope/internal/store"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(devserver.New(devserver.Options{Quiet: true}).Router())
	t.Cleanup(srv.Close)

	st, err := store.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	eps := config.SingleHost(srv.URL)
	return Options{
		Session: auth.NewSession(auth.NewClient(eps.Auth, 5*time.Second), st.CredentialRepo()),
		Predict: predict.New(eps, 5*time.Second, predict.WithHistory(st.AssessmentRepo())),
		History: st.AssessmentRepo(),
	}
}

func update(m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(AppModel), cmd
}

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestStartsOnLoginWhenSignedOut(t *testing.T) {
	m := newAppModel(testOptions(t))
	_, ok := m.router.Active().(*login.LoginScreen)
	assert.True(t, ok)

	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Contains(t, m.frame(), "not signed in")

	m, cmd := update(m, key(tea.KeyEscape))
	assert.Nil(t, cmd, "esc on the root screen does nothing")
	assert.Equal(t, 1, m.router.Depth())

	_, cmd = update(m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSignedInStartsOnHomeAndLogsOut(t *testing.T) {
	opts := testOptions(t)
	_, err := opts.Session.SignUp(context.Background(), "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	m := newAppModel(opts)
	_, ok := m.router.Active().(*home.HomeScreen)
	require.True(t, ok)

	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Contains(t, m.frame(), "Ada")

	// Log Out sits after the six destinations.
	for range 6 {
		m, _ = update(m, key(tea.KeyDown))
	}
	_, cmd := update(m, key(tea.KeyEnter))
	require.NotNil(t, cmd)
	action := cmd()
	reset, ok := action.(router.ResetScreenMsg)
	require.True(t, ok, "expected a reset to login, got %T", action)

	m, _ = update(m, reset)
	_, ok = m.router.Active().(*login.LoginScreen)
	assert.True(t, ok)
	assert.False(t, opts.Session.SignedIn())
}

type interceptingScreen struct{ got []string }

func (s *interceptingScreen) Init() tea.Cmd        { return nil }
func (s *interceptingScreen) View(int, int) string { return "" }
func (s *interceptingScreen) Title() string        { return "Dialog" }
func (s *interceptingScreen) InterceptsBack() bool { return true }
func (s *interceptingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		s.got = append(s.got, k.String())
	}
	return s, nil
}

func TestEscReachesInterceptingScreen(t *testing.T) {
	m := newAppModel(testOptions(t))
	dlg := &interceptingScreen{}
	m, _ = update(m, router.PushScreenMsg{Screen: dlg})
	require.Equal(t, 2, m.router.Depth())

	m, cmd := update(m, key(tea.KeyEscape))
	assert.Nil(t, cmd)
	assert.Equal(t, 2, m.router.Depth())
	assert.Equal(t, []string{"esc"}, dlg.got)
}

func TestEscPopsAndClosesSurvey(t *testing.T) {
	opts := testOptions(t)
	m := newAppModel(opts)
	sv := survey.New(opts.Predict, opts.Session.Token, nil)
	m, _ = update(m, router.PushScreenMsg{Screen: sv})

	_, cmd := update(m, key(tea.KeyEscape))
	require.NotNil(t, cmd)
	m, _ = update(m, cmd())
	assert.Equal(t, 1, m.router.Depth())
}
