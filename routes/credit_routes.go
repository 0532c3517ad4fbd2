package routes

import (
	"github.com/gorilla/mux"

	"veil_server/controllers"
	"veil_server/services"
)

// RegisterCreditRoutes sets up credit ledger routes under /credits on the
// authenticated API router.
func RegisterCreditRoutes(api *mux.Router, creditService *services.CreditService) {
	controller := controllers.NewCreditController(creditService)

	creditRouter := api.PathPrefix("/credits").Subrouter()
	creditRouter.HandleFunc("/balance", controller.GetBalance).Methods("GET")
	creditRouter.HandleFunc("/history", controller.GetHistory).Methods("GET")
	creditRouter.HandleFunc("/refresh", controller.Refresh).Methods("POST")
}
