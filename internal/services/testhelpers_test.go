package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/fanvault/backend/internal/audit"
	"github.com/fanvault/backend/internal/middleware"
	"github.com/fanvault/backend/internal/models"
	"github.com/fanvault/backend/internal/store"
)

// testStore returns a fresh in-memory store with a platform admin
// account at ID 1.
func testStore(t *testing.T) (*store.MemoryStore, *models.User) {
	t.Helper()
	s := store.NewMemoryStore()
	admin := &models.User{Username: "admin", Password: "hash", Name: "Platform", Role: models.RoleAdmin, IsVerified: true}
	assert.NoError(t, s.CreateUser(context.Background(), admin))
	return s, admin
}

func createUser(t *testing.T, s *store.MemoryStore, username string, verified bool, balance int64) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "hash", Name: username, IsVerified: verified}
	assert.NoError(t, s.CreateUser(context.Background(), user))
	if balance > 0 {
		assert.NoError(t, s.Credit(context.Background(), user.ID, balance, "seed-"+username))
	}
	return user
}

// authedRequest builds a request carrying an authenticated user id and
// optional JSON body, routed through chi so URL params resolve.
func authedRequest(t *testing.T, method, target string, userID int, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

// serve routes the request through a throwaway chi router so handlers
// can read URL params.
func serve(pattern string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(req.Method, pattern, handler)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func newAuditLogger() *audit.Logger {
	return audit.NewLogger()
}
