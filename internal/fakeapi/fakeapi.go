// Package fakeapi is an in-memory stand-in for the branch admin API, used by
// tests to exercise the client over real HTTP.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/vbonduro/branchadmin/internal/domain"
)

type account struct {
	user         domain.User
	passwordHash []byte
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Request is a recorded call to the fake.
type Request struct {
	Method        string
	Path          string
	Authorization string
	Body          map[string]any
}

type Server struct {
	mu       sync.Mutex
	secret   []byte
	accounts map[string]account
	menus    map[string][]map[string]any
	nextID   int
	requests []Request
	router   chi.Router

	failLogout bool
}

func New(secret string) *Server {
	s := &Server{
		secret:   []byte(secret),
		accounts: make(map[string]account),
		menus:    make(map[string][]map[string]any),
		nextID:   1,
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/auth/login", s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/branches/{branchID}/menu", s.handleListMenu)
		r.Post("/branches/{branchID}/menu", s.handleCreateMenuItem)
		r.Put("/branches/{branchID}/menu/{itemID}", s.handleUpdateMenuItem)
		r.Delete("/branches/{branchID}/menu/{itemID}", s.handleDeleteMenuItem)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddUser registers an account that can log in with password.
func (s *Server) AddUser(user domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[user.Username] = account{user: user, passwordHash: hash}
	return nil
}

// SeedMenu stores raw records for a branch exactly as given.
func (s *Server) SeedMenu(branchID string, records ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menus[branchID] = append(s.menus[branchID], records...)
}

// IssueToken signs a token the fake accepts, without going through login.
func (s *Server) IssueToken(username, role string) (string, error) {
	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// SetFailLogout makes the logout endpoint answer 500.
func (s *Server) SetFailLogout(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLogout = fail
}

// MenuRecords returns a copy of the raw records stored for a branch.
func (s *Server) MenuRecords(branchID string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.menus[branchID]))
	for _, record := range s.menus[branchID] {
		out = append(out, copyRecord(record))
	}
	return out
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
		}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid JSON")
				return
			}
			rec.Body = body
			r = r.WithContext(withBody(r.Context(), body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		_, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		})
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body := bodyFromContext(r.Context())
	username, _ := body["username"].(string)
	password, _ := body["password"].(string)

	s.mu.Lock()
	acct, ok := s.accounts[username]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) != nil {
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := s.IssueToken(acct.user.Username, string(acct.user.Role))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, domain.LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		User:        acct.user,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fail := s.failLogout
	s.mu.Unlock()
	if fail {
		writeError(w, http.StatusInternalServerError, "logout unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMenu(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchID")
	s.mu.Lock()
	items := append([]map[string]any{}, s.menus[branchID]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateMenuItem(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchID")
	body := bodyFromContext(r.Context())

	s.mu.Lock()
	record := copyRecord(body)
	record["id"] = s.nextID
	s.nextID++
	s.menus[branchID] = append(s.menus[branchID], record)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleUpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchID")
	itemID := chi.URLParam(r, "itemID")
	body := bodyFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, record := range s.menus[branchID] {
		if idString(record["id"]) != itemID {
			continue
		}
		for k, v := range body {
			record[k] = v
		}
		s.menus[branchID][i] = record
		writeJSON(w, http.StatusOK, record)
		return
	}
	writeError(w, http.StatusNotFound, "Menu item not found")
}

func (s *Server) handleDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchID")
	itemID := chi.URLParam(r, "itemID")

	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.menus[branchID]
	for i, record := range records {
		if idString(record["id"]) == itemID {
			s.menus[branchID] = append(records[:i], records[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Menu item not found")
}

func idString(v any) string {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func copyRecord(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]any{"detail": detail})
}
