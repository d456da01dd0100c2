package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/branchadmin/internal/domain"
)

func do(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	s := New("secret")
	require.NoError(t, s.AddUser(domain.User{ID: 1, Username: "ana", Role: domain.RoleAdmin}, "pw"))

	rec := do(t, s, http.MethodPost, "/auth/login", "", `{"username":"ana","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "bearer", result.TokenType)
	assert.Equal(t, "ana", result.User.Username)

	rec = do(t, s, http.MethodPost, "/auth/login", "", `{"username":"ana","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect username or password")
}

func TestMenuRoutesRequireValidToken(t *testing.T) {
	s := New("secret")

	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/branches/1/menu", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/branches/1/menu", "garbage", "").Code)

	other, err := New("other-secret").IssueToken("ana", "admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, "/branches/1/menu", other, "").Code)

	token, err := s.IssueToken("ana", "admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/branches/1/menu", token, "").Code)
}

func TestMenuCRUD(t *testing.T) {
	s := New("secret")
	token, err := s.IssueToken("ana", "worker")
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/branches/2/menu", token, `{"name":"Flan","branch_id":"2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Flan","branch_id":"2"}`, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/branches/2/menu/1", token, `{"price":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Flan","branch_id":"2","price":3}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPut, "/branches/2/menu/9", token, `{}`).Code)

	rec = do(t, s, http.MethodDelete, "/branches/2/menu/1", token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.MenuRecords("2"))

	last, ok := s.LastRequest()
	require.True(t, ok)
	assert.Equal(t, http.MethodDelete, last.Method)
	assert.Len(t, s.Requests(), 4)
}

func TestLogoutRequiresToken(t *testing.T) {
	s := New("secret")
	assert.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodPost, "/auth/logout", "", "").Code)

	token, err := s.IssueToken("ana", "worker")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodPost, "/auth/logout", token, "").Code)

	last, ok := s.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "Bearer "+token, last.Authorization)
}

func TestLogoutFailureToggle(t *testing.T) {
	s := New("secret")
	token, err := s.IssueToken("ana", "worker")
	require.NoError(t, err)

	s.SetFailLogout(true)
	assert.Equal(t, http.StatusInternalServerError, do(t, s, http.MethodPost, "/auth/logout", token, "").Code)
}
