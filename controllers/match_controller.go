package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"veil_server/middleware"
	"veil_server/models"
	"veil_server/services"
)

// MatchController handles HTTP requests for matching and reveals. The acting
// user always comes from the authenticated context, never the body.
type MatchController struct {
	MatchService *services.MatchService
}

func NewMatchController(matchService *services.MatchService) *MatchController {
	return &MatchController{MatchService: matchService}
}

// FindMatch charges a credit and pairs the user with a candidate or persona.
func (mc *MatchController) FindMatch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	view, err := mc.MatchService.FindMatch(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetMatches lists the user's non-skipped matches.
func (mc *MatchController) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	views, err := mc.MatchService.GetMatches(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": views})
}

// GetMatch returns one match with the counterpart rendered per reveal state.
func (mc *MatchController) GetMatch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	matchID := mux.Vars(r)["id"]
	view, err := mc.MatchService.GetMatch(r.Context(), matchID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SkipMatch permanently ends the match for both sides.
func (mc *MatchController) SkipMatch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	matchID := mux.Vars(r)["id"]
	if err := mc.MatchService.SkipMatch(r.Context(), matchID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.MatchStatusSkipped})
}

// RequestReveal spends credits to ask the counterpart to drop anonymity.
func (mc *MatchController) RequestReveal(w http.ResponseWriter, r *http.Request) {
	mc.reveal(w, r, mc.MatchService.RequestReveal)
}

// AcceptReveal answers a pending reveal request, completing the reveal.
func (mc *MatchController) AcceptReveal(w http.ResponseWriter, r *http.Request) {
	mc.reveal(w, r, mc.MatchService.AcceptReveal)
}

func (mc *MatchController) reveal(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, matchID, userID string) (*models.Match, error)) {
	userID := middleware.UserID(r.Context())
	matchID := mux.Vars(r)["id"]
	match, err := op(r.Context(), matchID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"matchId": match.MatchID,
		"status":  match.Status,
		"reveal":  match.Reveal,
	})
}
