package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticVerifier map[string]string

func (v staticVerifier) Verify(_ context.Context, token string) (string, error) {
	id, ok := v[token]
	if !ok {
		return "", fmt.Errorf("unknown token")
	}
	return id, nil
}

func authedHandler(t *testing.T, wantUser string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantUser, UserID(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthInjectsUserID(t *testing.T) {
	handler := Auth(staticVerifier{"tok-anna": "u_anna"}, zerolog.Nop())(authedHandler(t, "u_anna"))

	req := httptest.NewRequest(http.MethodGet, "/api/matches", nil)
	req.Header.Set("Authorization", "Bearer tok-anna")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthFallsBackToQueryToken(t *testing.T) {
	handler := Auth(staticVerifier{"tok-anna": "u_anna"}, zerolog.Nop())(authedHandler(t, "u_anna"))

	req := httptest.NewRequest(http.MethodGet, "/api/matches?token=tok-anna", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without auth")
	})
	handler := Auth(staticVerifier{"tok-anna": "u_anna"}, zerolog.Nop())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/matches", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/matches", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserIDWithoutAuthIsEmpty(t *testing.T) {
	assert.Empty(t, UserID(context.Background()))
}
