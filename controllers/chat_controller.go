package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"veil_server/middleware"
	"veil_server/services"
)

// ChatController exposes conversations and messages over HTTP.
type ChatController struct {
	ChatService *services.ChatService
}

func NewChatController(chatService *services.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

// GetConversations lists the user's conversations, newest activity first.
func (cc *ChatController) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	summaries, err := cc.ChatService.GetConversations(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": summaries})
}

// GetMessages returns a page of the match's messages in send order.
func (cc *ChatController) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	matchID := mux.Vars(r)["id"]
	limit := queryInt(r, "limit", 0)
	skip := queryInt(r, "skip", 0)
	messages, err := cc.ChatService.GetMessages(r.Context(), matchID, userID, limit, skip)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// SendMessage appends a message to the match on behalf of the caller.
func (cc *ChatController) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	matchID := mux.Vars(r)["id"]

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "invalid_body", "error": "request body must be JSON with a content field"})
		return
	}

	view, err := cc.ChatService.SendMessage(r.Context(), matchID, userID, body.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// MarkRead flags a message as read by its receiver.
func (cc *ChatController) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	messageID := mux.Vars(r)["id"]
	if err := cc.ChatService.MarkRead(r.Context(), messageID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
