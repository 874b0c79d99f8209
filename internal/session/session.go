// Package session owns the bearer credential used for every backend call.
//
// A Session is created empty or restored from its Store, begins on a
// successful login, and is torn down on logout or when the server rejects
// the credential.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"syno/internal/service"
)

// Authenticator performs the credential exchanges.
// service.Service satisfies it.
type Authenticator interface {
	Login(ctx context.Context, creds service.Credentials) (string, error)
	Register(ctx context.Context, profile service.Profile) error
}

// Session holds at most one bearer token.
type Session struct {
	mu      sync.RWMutex
	tok     *oauth2.Token
	store   Store
	logger  *slog.Logger
	onClear []func()
}

// New creates a session backed by store, restoring a stored token if any.
// A store that cannot be read yields an empty session.
func New(store Store, logger *slog.Logger) *Session {
	if store == nil {
		store = &MemoryStore{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{store: store, logger: logger}
	tok, err := store.Load()
	if err != nil {
		logger.Warn("ignoring stored session", "error", err)
		return s
	}
	if tok != nil && tok.AccessToken != "" {
		s.tok = tok
	}
	return s
}

// Login validates creds, exchanges them for a token and begins the session.
func (s *Session) Login(ctx context.Context, auth Authenticator, creds service.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	token, err := auth.Login(ctx, creds)
	if err != nil {
		return err
	}
	return s.Begin(token)
}

// Register validates profile and creates the account. It does not log in.
func (s *Session) Register(ctx context.Context, auth Authenticator, profile service.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	return auth.Register(ctx, profile)
}

// Begin installs accessToken as the active credential and persists it.
// A JWT exp claim, if present, becomes the token expiry. The signature is
// not checked here; the server does that.
func (s *Session) Begin(accessToken string) error {
	if accessToken == "" {
		return errors.New("empty access token")
	}
	tok := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err == nil && claims.ExpiresAt != nil {
		tok.Expiry = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	s.tok = tok
	s.mu.Unlock()

	if err := s.store.Save(tok); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.Debug("session started", "expires", tok.Expiry)
	return nil
}

// Token returns the active token. An expired token counts as absent.
func (s *Session) Token() (*oauth2.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.tok.Valid() {
		return nil, false
	}
	return s.tok, true
}

// CurrentToken returns the active access token, or "" if there is none.
func (s *Session) CurrentToken() string {
	tok, ok := s.Token()
	if !ok {
		return ""
	}
	return tok.AccessToken
}

// Authorize attaches the bearer header to req when a token is present.
func (s *Session) Authorize(req *http.Request) {
	if tok, ok := s.Token(); ok {
		tok.SetAuthHeader(req)
	}
}

// OnClear registers fn to run after every Clear.
func (s *Session) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// Clear ends the session and removes the stored token.
func (s *Session) Clear() error {
	s.mu.Lock()
	had := s.tok != nil
	s.tok = nil
	hooks := append([]func(){}, s.onClear...)
	s.mu.Unlock()

	err := s.store.Remove()
	if had {
		s.logger.Debug("session cleared")
	}
	for _, fn := range hooks {
		fn()
	}
	if err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}
