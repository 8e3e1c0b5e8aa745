package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.AssessmentRepo().Record(ctx, AssessmentData{Kind: KindLung, Request: "{}", Success: true}); err != nil {
		t.Fatalf("record: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	recs, err := s.AssessmentRepo().Recent(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record after reopen, got %d", len(recs))
	}
}

func TestSequenceMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		n, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if n <= last {
			t.Fatalf("sequence not increasing: %d after %d", n, last)
		}
		last = n
	}
}

func TestLLMEventAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, purpose := range []string{"survey-explain", "diet"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "gemini",
			Model:        "gemini-2.0-flash",
			Purpose:      purpose,
			InputTokens:  100,
			OutputTokens: 50,
			LatencyMs:    250,
			Success:      true,
			RequestBody:  "[user]\nhello",
			ResponseBody: `{"summary":"ok"}`,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Purpose != "diet" {
		t.Errorf("expected newest first, got %q", events[0].Purpose)
	}
	if !events[0].Success || events[0].InputTokens != 100 {
		t.Errorf("unexpected event: %+v", events[0])
	}
	if time.Since(events[0].Timestamp) > time.Minute {
		t.Errorf("timestamp not recent: %v", events[0].Timestamp)
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("query limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 event with limit, got %d", len(limited))
	}

	got, err := repo.GetLLMEvent(ctx, events[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.ResponseBody != `{"summary":"ok"}` {
		t.Fatalf("unexpected event: %+v", got)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing event")
	}
}

func TestAssessmentRecordAndFilter(t *testing.T) {
	s := openTestStore(t)
	repo := s.AssessmentRepo()
	ctx := context.Background()

	id1, err := repo.Record(ctx, AssessmentData{
		Kind:     KindSymptomSurvey,
		Request:  `{"fatigue":0.5}`,
		Response: `{"needs_testing":true,"confidence":0.9,"recommendation":"x"}`,
		Summary:  "Testing Recommended (90%)",
		Success:  true,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(id1) != 36 {
		t.Fatalf("expected uuid id, got %q", id1)
	}

	_, err = repo.Record(ctx, AssessmentData{
		Kind:         KindLung,
		Request:      `{"AGE":30}`,
		Success:      false,
		ErrorMessage: "status 500",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	all, err := repo.Recent(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(all) != 2 || all[0].Kind != KindLung {
		t.Fatalf("unexpected order: %+v", all)
	}

	surveys, err := repo.Recent(ctx, QueryOpts{Kind: KindSymptomSurvey})
	if err != nil {
		t.Fatalf("recent by kind: %v", err)
	}
	if len(surveys) != 1 || surveys[0].ID != id1 {
		t.Fatalf("unexpected filter result: %+v", surveys)
	}

	got, err := repo.Get(ctx, id1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || !got.Success || got.Summary != "Testing Recommended (90%)" {
		t.Fatalf("unexpected record: %+v", got)
	}

	none, err := repo.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if none != nil {
		t.Fatal("expected nil for missing record")
	}
}

func TestCredentialSaveLoadClear(t *testing.T) {
	s := openTestStore(t)
	repo := s.CredentialRepo()
	ctx := context.Background()

	c, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if c != nil {
		t.Fatal("expected no credential")
	}

	if err := repo.Save(ctx, Credential{Token: "first", UserName: "Ana"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(ctx, Credential{Token: "second", UserName: "Ana", UserEmail: "ana@example.com"}); err != nil {
		t.Fatalf("save again: %v", err)
	}

	c, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c == nil || c.Token != "second" || c.UserEmail != "ana@example.com" {
		t.Fatalf("unexpected credential: %+v", c)
	}
	if c.SavedAt.IsZero() {
		t.Fatal("expected saved_at to be set")
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	c, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if c != nil {
		t.Fatal("expected credential to be cleared")
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.AssessmentRepo().Record(ctx, AssessmentData{Kind: KindLung, Request: "{}", Success: true}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "p", Model: "m", Purpose: "x", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.CredentialRepo().Save(ctx, Credential{Token: "tok"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	recs, err := s.AssessmentRepo().Recent(ctx, QueryOpts{})
	if err != nil || len(recs) != 0 {
		t.Fatalf("assessments after reset: %d, %v", len(recs), err)
	}
	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	if err != nil || len(events) != 0 {
		t.Fatalf("events after reset: %d, %v", len(events), err)
	}
	c, err := s.CredentialRepo().Load(ctx)
	if err != nil || c != nil {
		t.Fatalf("credential after reset: %+v, %v", c, err)
	}

	// sequence keeps counting after a reset
	if _, err := s.AssessmentRepo().Record(ctx, AssessmentData{Kind: KindLung, Request: "{}", Success: true}); err != nil {
		t.Fatalf("record after reset: %v", err)
	}
}
