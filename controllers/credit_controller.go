package controllers

import (
	"net/http"
	"strconv"

	"veil_server/middleware"
	"veil_server/services"
)

// CreditController exposes the credit ledger over HTTP.
type CreditController struct {
	CreditService *services.CreditService
}

func NewCreditController(creditService *services.CreditService) *CreditController {
	return &CreditController{CreditService: creditService}
}

// GetBalance returns the balance after a lazy daily refresh, plus the time
// until the next one.
func (cc *CreditController) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	view, err := cc.CreditService.GetBalance(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetHistory lists ledger entries newest first.
func (cc *CreditController) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"code": "invalid_limit", "error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	txns, err := cc.CreditService.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

// Refresh applies the daily refresh if due and returns the resulting balance.
// Idempotent within a calendar day.
func (cc *CreditController) Refresh(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	view, err := cc.CreditService.GetBalance(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
