package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"dalchat-backend/internal/keyValue"
	"dalchat-backend/internal/models"
)

// ConfirmEmail finishes a registration parked by the signup handler. The
// token is single-use: GetDel removes it while reading.
func ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	urlToken := r.URL.Query().Get("token")
	if urlToken == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	confirmToken, err := url.QueryUnescape(urlToken)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed token")
		return
	}

	value, err := keyValue.GetDel(fmt.Sprintf("registration:%s", confirmToken))
	if err != nil {
		sugar.Error(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if value == "" {
		writeError(w, http.StatusUnauthorized, "token isn't valid")
		return
	}

	var pending struct {
		models.User
		Password []byte `json:"password"`
	}
	if err := json.Unmarshal([]byte(value), &pending); err != nil {
		sugar.Error(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := pending.User
	user.Password = pending.Password

	if err := st.CreateUser(r.Context(), user); err != nil {
		writeStoreError(w, err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusMovedPermanently)
}
