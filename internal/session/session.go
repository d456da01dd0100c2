package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/vbonduro/branchadmin/internal/apiclient"
	"github.com/vbonduro/branchadmin/internal/domain"
	"github.com/vbonduro/branchadmin/internal/storage"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"

	// LoginRoute is where Logout sends the navigator.
	LoginRoute = "/login"
)

var ErrAuthentication = errors.New("authentication failed")

// authClient is the subset of apiclient.Client that Session requires.
type authClient interface {
	Call(ctx context.Context, method, path string, body, out any) error
}

// Terminator ends the session on the server side.
type Terminator interface {
	Terminate(ctx context.Context) error
}

// Navigator moves the user to another view, typically the login screen.
type Navigator interface {
	Navigate(route string)
}

type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// APITerminator terminates the session by posting to the logout endpoint.
type APITerminator struct {
	client authClient
}

func NewAPITerminator(client authClient) *APITerminator {
	return &APITerminator{client: client}
}

func (t *APITerminator) Terminate(ctx context.Context) error {
	return t.client.Call(ctx, http.MethodPost, logoutPath, nil, nil)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session holds the signed-in user and persists it across process restarts.
// It is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	user     *domain.User
	loading  bool
	restored bool

	store      storage.Storage
	client     authClient
	terminator Terminator
	navigator  Navigator
	logger     *slog.Logger
	now        func() time.Time
}

func New(store storage.Storage, client authClient, terminator Terminator, navigator Navigator, logger *slog.Logger) *Session {
	return &Session{
		loading:    true,
		store:      store,
		client:     client,
		terminator: terminator,
		navigator:  navigator,
		logger:     logger,
		now:        time.Now,
	}
}

// Restore loads the persisted user, if any. A corrupt record is discarded.
// Only the first call has any effect.
func (s *Session) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restored {
		return
	}
	s.restored = true
	defer func() { s.loading = false }()

	raw, ok, err := s.store.Get(ctx, storage.KeyCurrentUser)
	if err != nil {
		s.logger.Error("failed to read persisted session", "error", err)
		return
	}
	if !ok {
		return
	}

	var user *domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("discarding corrupt persisted session", "error", err)
		s.discardPersistedUser(ctx)
		return
	}
	if user == nil || (user.ID == 0 && user.Username == "") {
		s.logger.Warn("discarding empty persisted session")
		s.discardPersistedUser(ctx)
		return
	}

	s.user = user
	s.logger.Info("session restored", "username", user.Username)
}

func (s *Session) discardPersistedUser(ctx context.Context) {
	if err := s.store.Remove(ctx, storage.KeyCurrentUser); err != nil {
		s.logger.Error("failed to remove persisted session", "error", err)
	}
}

func (s *Session) Login(ctx context.Context, identifier, secret string) (*domain.User, error) {
	var result domain.LoginResult
	err := s.client.Call(ctx, http.MethodPost, loginPath, loginRequest{Username: identifier, Password: secret}, &result)
	if err != nil {
		var httpErr *apiclient.HTTPError
		if errors.As(err, &httpErr) {
			s.logger.Warn("login rejected", "username", identifier, "status", httpErr.StatusCode, "body", string(httpErr.Body))
			return nil, ErrAuthentication
		}
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if result.AccessToken == "" {
		s.logger.Warn("login response carried no access token", "username", identifier)
		return nil, ErrAuthentication
	}

	userJSON, err := json.Marshal(result.User)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyToken, result.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyCurrentUser, string(userJSON)); err != nil {
		if rerr := s.store.Remove(ctx, storage.KeyToken); rerr != nil {
			s.logger.Error("failed to remove token after user persist error", "error", rerr)
		}
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}

	user := result.User
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	subject, role := tokenClaims(result.AccessToken)
	s.logger.Info("login succeeded", "username", user.Username, "token_subject", subject, "token_role", role)

	out := user
	return &out, nil
}

// Logout ends the session and navigates to the login view. Termination
// errors are logged, never returned.
func (s *Session) Logout(ctx context.Context) {
	if s.terminator != nil {
		if err := s.terminator.Terminate(ctx); err != nil {
			s.logger.Warn("session termination failed", "error", err)
		}
	}

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	for _, key := range []string{storage.KeyCurrentUser, storage.KeyToken} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.logger.Error("failed to clear persisted session", "key", key, "error", err)
		}
	}

	s.logger.Info("logged out")
	if s.navigator != nil {
		s.navigator.Navigate(LoginRoute)
	}
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Token returns the persisted bearer token, or "" when signed out. It makes
// Session an apiclient.TokenSource.
func (s *Session) Token(ctx context.Context) (string, error) {
	return StoredToken{Store: s.store}.Token(ctx)
}

// StoredToken is a TokenSource over the token persisted by Login, usable by
// clients built before the Session exists.
type StoredToken struct {
	Store storage.Storage
}

func (t StoredToken) Token(ctx context.Context) (string, error) {
	token, _, err := t.Store.Get(ctx, storage.KeyToken)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

// tokenClaims extracts the subject and role without verifying the signature;
// the values are only used for logging.
func tokenClaims(token string) (string, string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", ""
	}
	subject, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	return subject, role
}
