package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/carescope/internal/store"
)

// ErrNotSignedIn is returned by operations that need a session.
var ErrNotSignedIn = errors.New("not signed in")

// Session holds the current token and user. The zero value is signed out.
// It is safe for concurrent use; Token is read from command goroutines.
type Session struct {
	client *Client
	repo   store.CredentialRepo
	now    func() time.Time

	mu    sync.RWMutex
	token string
	user  *User
}

// NewSession creates a signed-out session. repo may be nil, in which case
// nothing persists.
func NewSession(client *Client, repo store.CredentialRepo) *Session {
	return &Session{client: client, repo: repo, now: time.Now}
}

// Token returns the current token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SignedIn reports whether a token is held.
func (s *Session) SignedIn() bool { return s.Token() != "" }

// Restore loads the saved credential and confirms it with the account
// service. An expired or rejected token is deleted. A transport failure
// leaves the saved token in place for the next run and returns the error
// with the session still signed out.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if s.repo == nil {
		return false, nil
	}
	cred, err := s.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load credential: %w", err)
	}
	if cred == nil || cred.Token == "" {
		return false, nil
	}

	if Expired(cred.Token, s.now()) {
		return false, s.repo.Clear(ctx)
	}

	user, err := s.client.CurrentUser(ctx, cred.Token)
	if errors.Is(err, ErrInvalidToken) {
		return false, s.repo.Clear(ctx)
	}
	if err != nil {
		return false, err
	}

	s.set(cred.Token, user)
	return true, nil
}

// SignIn logs in and persists the token.
func (s *Session) SignIn(ctx context.Context, email, password string) (*User, error) {
	token, user, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return user, s.adopt(ctx, token, user)
}

// SignUp registers a new account and signs in with it.
func (s *Session) SignUp(ctx context.Context, name, email, password string) (*User, error) {
	token, user, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return user, s.adopt(ctx, token, user)
}

// SignOut forgets the token in memory and on disk.
func (s *Session) SignOut(ctx context.Context) error {
	s.set("", nil)
	if s.repo == nil {
		return nil
	}
	return s.repo.Clear(ctx)
}

func (s *Session) adopt(ctx context.Context, token string, user *User) error {
	s.set(token, user)
	if s.repo == nil {
		return nil
	}
	cred := store.Credential{Token: token, SavedAt: s.now()}
	if user != nil {
		cred.UserName = user.Name
		cred.UserEmail = user.Email
	}
	if err := s.repo.Save(ctx, cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *Session) set(token string, user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}
