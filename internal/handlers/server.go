package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"dalchat-backend/internal/hub"
	"dalchat-backend/internal/models"

	"github.com/go-chi/chi/v5"
)

// serverIDParam parses the {serverID} route parameter.
func serverIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "serverID"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid server ID")
	}
	return id, nil
}

// displayNameFor returns the caller's current display name, used as the
// snapshot when creating or joining a server.
func displayNameFor(r *http.Request) (string, error) {
	user, err := st.UserByID(r.Context(), userID(r))
	if err != nil {
		return "", err
	}
	return user.DisplayName, nil
}

func CreateServer(w http.ResponseWriter, r *http.Request) {
	type CreateServerRequest struct {
		Name string `json:"name" validate:"required,max=64"`
	}

	var request CreateServerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		sugar.Debug(err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := validate.Struct(request); err != nil {
		writeValidationError(w, err)
		return
	}

	displayName, err := displayNameFor(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	server, err := st.CreateServer(r.Context(), request.Name, userID(r), displayName)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "server": server})
}

func GetServerList(w http.ResponseWriter, r *http.Request) {
	servers, err := st.ServersFor(r.Context(), userID(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// watch each listed server for structural events; a client that only
	// polls has no WebSocket and that's fine
	for _, server := range servers {
		err := hub.SubscribeServer(sessionID(r), server.ID)
		if err != nil && !errors.Is(err, hub.ErrNotConnected) {
			sugar.Error(err)
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "servers": servers})
}

func JoinServer(w http.ResponseWriter, r *http.Request) {
	serverID, err := serverIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	displayName, err := displayNameFor(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if err := st.Join(r.Context(), serverID, userID(r), displayName); err != nil {
		writeStoreError(w, err)
		return
	}

	err = hub.Emit(hub.EventMemberJoined, hub.ServerTopic(serverID), models.Member{
		ServerID:    serverID,
		UserID:      userID(r),
		DisplayName: displayName,
		Role:        models.RoleMember,
	})
	if err != nil {
		sugar.Error(err)
	}

	writeSuccess(w)
}
