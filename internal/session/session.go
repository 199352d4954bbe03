// Package session owns the authenticated user and bearer token. The token is
// persisted locally and re-validated against the backend on startup; the user
// identity itself is always re-derived from the server, never persisted.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"storefront/internal/api"
	"storefront/internal/storage"
)

const tokenKey = "sinea-auth-token"

// Fallback messages shown when the backend gives no text of its own.
const (
	msgLoginFailed    = "Login failed"
	msgRegisterFailed = "Registration failed"
	msgUnreachable    = "Unable to connect to server"
)

// Backend is the slice of the remote API the session needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.Credentials, error)
	Register(ctx context.Context, firstName, lastName, email, password string) (*api.Credentials, error)
	Me(ctx context.Context, token string) (*api.User, error)
}

// Result is the outcome of a login or registration attempt. Failures carry a
// user-facing message; they are never returned as errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type Session struct {
	mu      sync.Mutex
	user    *api.User
	token   string
	loading bool
	loadOne sync.Once

	backend Backend
	storage *storage.Store
	log     logrus.FieldLogger
}

// New builds a session seeded from storage. If a token was persisted the
// session starts in the loading state until Load resolves it.
func New(backend Backend, st *storage.Store, log logrus.FieldLogger) *Session {
	s := &Session{
		backend: backend,
		storage: st,
		log:     log.WithField("component", "session"),
	}

	raw, found, err := st.Get(tokenKey)
	if err != nil {
		s.log.WithError(err).Warn("token rehydration failed, starting unauthenticated")
		return s
	}
	if found {
		if token := strings.TrimSpace(string(raw)); token != "" {
			s.token = token
			s.loading = true
		}
	}
	return s
}

// Load resolves the startup loading state: with a stored token it issues one
// who-am-i call; confirmation populates the user, rejection or a network
// failure discards the token. The loading state resolves exactly once no
// matter which path is taken.
func (s *Session) Load(ctx context.Context) {
	s.loadOne.Do(func() {
		s.mu.Lock()
		token := s.token
		s.mu.Unlock()

		if token == "" {
			return
		}

		user, err := s.backend.Me(ctx, token)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.loading = false

		if err != nil {
			var apiErr *api.Error
			if errors.As(err, &apiErr) {
				s.log.Info("stored token rejected by backend, discarding")
			} else {
				s.log.WithError(err).Warn("session rehydration failed, discarding token")
			}
			s.token = ""
			s.discardStoredToken()
			return
		}

		s.user = user
		s.log.WithField("email", user.Email).Info("session rehydrated")
	})
}

// Login authenticates against the backend and persists the token on success.
func (s *Session) Login(ctx context.Context, email, password string) Result {
	creds, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return s.failure(err, msgLoginFailed)
	}
	s.establish(creds)
	s.log.WithField("email", creds.User.Email).Info("login succeeded")
	return Result{Success: true}
}

// Register creates an account and signs the new user in.
func (s *Session) Register(ctx context.Context, firstName, lastName, email, password string) Result {
	creds, err := s.backend.Register(ctx, firstName, lastName, email, password)
	if err != nil {
		return s.failure(err, msgRegisterFailed)
	}
	s.establish(creds)
	s.log.WithField("email", creds.User.Email).Info("registration succeeded")
	return Result{Success: true}
}

// Logout clears the in-memory session and the persisted token. Purely local;
// no backend call is made.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.loading = false
	s.discardStoredToken()
	s.log.Info("logged out")
}

// User returns the authenticated identity, or nil.
func (s *Session) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current bearer token; empty when unauthenticated. The
// token is opaque: it is forwarded on authenticated requests, never decoded.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsLoading reports whether startup rehydration is still unresolved.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// IsAuthenticated reports whether a user identity is established.
func (s *Session) IsAuthenticated() bool {
	return s.User() != nil
}

func (s *Session) establish(creds *api.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := creds.User
	s.user = &user
	s.token = creds.Token
	s.loading = false
	if err := s.storage.Put(tokenKey, []byte(creds.Token)); err != nil {
		s.log.WithError(err).Warn("token persistence failed")
	}
}

func (s *Session) failure(err error, fallback string) Result {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		return Result{Success: false, Message: msg}
	}
	s.log.WithError(err).Warn("backend unreachable")
	return Result{Success: false, Message: msgUnreachable}
}

// discardStoredToken removes the persisted token; callers hold the lock.
func (s *Session) discardStoredToken() {
	if err := s.storage.Delete(tokenKey); err != nil {
		s.log.WithError(err).Warn("token removal failed")
	}
}
