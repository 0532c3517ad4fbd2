package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil_server/services"
)

func TestErrorCodeMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrNotFound, http.StatusNotFound, "not_found"},
		{services.ErrNoMatchAvailable, http.StatusNotFound, "no_match_available"},
		{services.ErrForbidden, http.StatusForbidden, "forbidden"},
		{services.ErrInsufficientCredits, http.StatusPaymentRequired, "insufficient_credits"},
		{services.ErrAlreadyRequested, http.StatusConflict, "reveal_already_requested"},
		{services.ErrAlreadyRevealed, http.StatusConflict, "already_revealed"},
		{services.ErrNotRequested, http.StatusConflict, "reveal_not_requested"},
		{services.ErrInvalidState, http.StatusConflict, "invalid_state"},
		{services.ErrConflict, http.StatusConflict, "conflict"},
		{services.ErrEmptyContent, http.StatusBadRequest, "empty_content"},
		{services.ErrPreferencesMissing, http.StatusBadRequest, "preferences_missing"},
		{fmt.Errorf("database exploded"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, code := errorCode(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestErrorCodeUnwrapsWrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("failed to skip match: %w", services.ErrInsufficientCredits)
	status, code := errorCode(wrapped)
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "insufficient_credits", code)
}

func TestWriteErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, services.ErrInsufficientCredits)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "insufficient_credits", body["code"])
	assert.Equal(t, services.ErrInsufficientCredits.Error(), body["error"])
}

func TestWriteErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("dial tcp 10.0.0.3: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body["error"], "infrastructure details never reach clients")
}
