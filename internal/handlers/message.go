package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dalchat-backend/internal/hub"

	"github.com/go-chi/chi/v5"
)

func CreateMessage(w http.ResponseWriter, r *http.Request) {
	serverID, err := serverIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	channelID := chi.URLParam(r, "channelID")

	type SendMessageRequest struct {
		Text string `json:"text" validate:"required,max=4000"`
	}

	var request SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		sugar.Debug(err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := validate.Struct(request); err != nil {
		writeValidationError(w, err)
		return
	}

	msg, err := st.AppendMessage(r.Context(), serverID, channelID, userID(r), request.Text)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// published after the commit, so events arrive in append order
	if err := hub.Emit(hub.EventMessageCreated, hub.ChannelTopic(serverID, channelID), msg); err != nil {
		sugar.Error(err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

func GetMessageList(w http.ResponseWriter, r *http.Request) {
	serverID, err := serverIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	channelID := chi.URLParam(r, "channelID")

	if _, err := st.MemberRole(r.Context(), serverID, userID(r)); err != nil {
		writeStoreError(w, err)
		return
	}

	messages, err := st.Messages(r.Context(), serverID, channelID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// reading a channel makes it the session's single live feed
	err = hub.SubscribeChannel(sessionID(r), serverID, channelID)
	if err != nil && !errors.Is(err, hub.ErrNotConnected) {
		sugar.Error(err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "messages": messages})
}
