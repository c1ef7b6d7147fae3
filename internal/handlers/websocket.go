package handlers

import (
	"net/http"

	"dalchat-backend/internal/hub"
)

func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	hub.HandleClient(userID(r), sessionID(r), w, r)
}
