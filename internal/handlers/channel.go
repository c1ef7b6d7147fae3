package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dalchat-backend/internal/hub"

	"github.com/go-chi/chi/v5"
)

func CreateChannel(w http.ResponseWriter, r *http.Request) {
	serverID, err := serverIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	type CreateChannelRequest struct {
		Name string `json:"name" validate:"required,max=64"`
	}

	var request CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		sugar.Debug(err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := validate.Struct(request); err != nil {
		writeValidationError(w, err)
		return
	}

	channel, err := st.CreateChannel(r.Context(), serverID, request.Name, userID(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if err := hub.Emit(hub.EventChannelCreated, hub.ServerTopic(serverID), channel); err != nil {
		sugar.Error(err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "channel": channel})
}

func DeleteChannel(w http.ResponseWriter, r *http.Request) {
	serverID, err := serverIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	channelID := chi.URLParam(r, "channelID")

	if err := st.DeleteChannel(r.Context(), serverID, channelID, userID(r)); err != nil {
		writeStoreError(w, err)
		return
	}

	err = hub.Emit(hub.EventChannelDeleted, hub.ServerTopic(serverID), map[string]string{"id": channelID})
	if err != nil {
		sugar.Error(err)
	}

	writeSuccess(w)
}

func GetChannelList(w http.ResponseWriter, r *http.Request) {
	serverID, err := serverIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// channel lists are for members only
	if _, err := st.MemberRole(r.Context(), serverID, userID(r)); err != nil {
		writeStoreError(w, err)
		return
	}

	channels, err := st.Channels(r.Context(), serverID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	err = hub.SubscribeServer(sessionID(r), serverID)
	if err != nil && !errors.Is(err, hub.ErrNotConnected) {
		sugar.Error(err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "channels": channels})
}
