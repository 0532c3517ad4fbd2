package routes

import (
	"github.com/gorilla/mux"

	"veil_server/controllers"
	"veil_server/services"
)

// RegisterChatRoutes sets up conversation routes under /chats on the
// authenticated API router.
func RegisterChatRoutes(api *mux.Router, chatService *services.ChatService) {
	controller := controllers.NewChatController(chatService)

	chatRouter := api.PathPrefix("/chats").Subrouter()
	chatRouter.HandleFunc("/conversations", controller.GetConversations).Methods("GET")
	chatRouter.HandleFunc("/match/{id}", controller.GetMessages).Methods("GET")
	chatRouter.HandleFunc("/match/{id}", controller.SendMessage).Methods("POST")
	chatRouter.HandleFunc("/{id}/read", controller.MarkRead).Methods("PUT")
}
