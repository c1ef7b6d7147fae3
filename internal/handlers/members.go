package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dalchat-backend/internal/hub"
	"dalchat-backend/internal/models"

	"github.com/go-chi/chi/v5"
)

func GetMemberList(w http.ResponseWriter, r *http.Request) {
	serverID, err := serverIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := st.MemberRole(r.Context(), serverID, userID(r)); err != nil {
		writeStoreError(w, err)
		return
	}

	members, err := st.Members(r.Context(), serverID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "members": members})
}

func SetMemberRole(w http.ResponseWriter, r *http.Request) {
	serverID, err := serverIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	targetUserID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || targetUserID == 0 {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	type SetRoleRequest struct {
		Role string `json:"role" validate:"required"`
	}

	var request SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		sugar.Debug(err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := validate.Struct(request); err != nil {
		writeValidationError(w, err)
		return
	}

	newRole := models.Role(request.Role)

	if err := st.SetRole(r.Context(), serverID, userID(r), targetUserID, newRole); err != nil {
		writeStoreError(w, err)
		return
	}

	err = hub.Emit(hub.EventRoleChanged, hub.ServerTopic(serverID), map[string]any{
		"serverID": strconv.FormatInt(serverID, 10),
		"userID":   strconv.FormatInt(targetUserID, 10),
		"role":     newRole,
	})
	if err != nil {
		sugar.Error(err)
	}

	writeSuccess(w)
}
