package home

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/carescope/internal/router"
	"github.com/abhisek/carescope/internal/screen"
	"github.com/abhisek/carescope/internal/store"
)

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

type fakeHistory struct {
	recs []store.AssessmentRecord
}

func (f *fakeHistory) Record(context.Context, store.AssessmentData) (string, error) { return "", nil }
func (f *fakeHistory) Recent(_ context.Context, opts store.QueryOpts) ([]store.AssessmentRecord, error) {
	return f.recs, nil
}
func (f *fakeHistory) Get(context.Context, string) (*store.AssessmentRecord, error) { return nil, nil }

func TestEnterPushesEntry(t *testing.T) {
	h := New(Options{Entries: []Entry{
		{Label: "Survey", Open: func() screen.Screen { return &stubScreen{title: "Survey"} }},
		{Label: "Lung", Open: func() screen.Screen { return &stubScreen{title: "Lung"} }},
	}})

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if push.Screen.Title() != "Lung" {
		t.Errorf("expected Lung screen, got %q", push.Screen.Title())
	}
}

func TestDisabledEntrySkipped(t *testing.T) {
	h := New(Options{Entries: []Entry{
		{Label: "Survey", Open: func() screen.Screen { return &stubScreen{title: "Survey"} }},
		{Label: "Offline"},
		{Label: "History", Open: func() screen.Screen { return &stubScreen{title: "History"} }},
	}})

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if h.menu.Selected != 2 {
		t.Errorf("expected disabled entry to be skipped, selected=%d", h.menu.Selected)
	}
}

func TestLogoutEntry(t *testing.T) {
	called := false
	h := New(Options{Logout: func() tea.Cmd {
		called = true
		return nil
	}})
	h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !called {
		t.Error("expected Log Out to be the first entry and to run")
	}
}

func TestLastScreeningLine(t *testing.T) {
	repo := &fakeHistory{recs: []store.AssessmentRecord{{
		Timestamp:      time.Now(),
		AssessmentData: store.AssessmentData{Kind: store.KindLung, Summary: "Low risk"},
	}}}
	h := New(Options{UserName: "Ada", History: repo})
	h.Update(h.Init()())

	view := h.View(100, 30)
	if !strings.Contains(view, "Welcome, Ada") {
		t.Error("expected greeting with user name")
	}
	if !strings.Contains(view, "Lung risk") || !strings.Contains(view, "Low risk") {
		t.Error("expected last screening line")
	}
}
