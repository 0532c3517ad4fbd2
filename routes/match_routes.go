package routes

import (
	"github.com/gorilla/mux"

	"veil_server/controllers"
	"veil_server/services"
)

// RegisterMatchRoutes sets up matching and reveal routes under /matches on
// the authenticated API router.
func RegisterMatchRoutes(api *mux.Router, matchService *services.MatchService) {
	controller := controllers.NewMatchController(matchService)

	matchRouter := api.PathPrefix("/matches").Subrouter()
	matchRouter.HandleFunc("/find", controller.FindMatch).Methods("POST")
	matchRouter.HandleFunc("", controller.GetMatches).Methods("GET")
	matchRouter.HandleFunc("/{id}", controller.GetMatch).Methods("GET")
	matchRouter.HandleFunc("/{id}/skip", controller.SkipMatch).Methods("POST")
	matchRouter.HandleFunc("/{id}/reveal-request", controller.RequestReveal).Methods("POST")
	matchRouter.HandleFunc("/{id}/reveal-accept", controller.AcceptReveal).Methods("POST")
}
