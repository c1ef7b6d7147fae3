package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dalchat-backend/internal/email"
	"dalchat-backend/internal/keyValue"
	"dalchat-backend/internal/models"
	"dalchat-backend/internal/session"
	"dalchat-backend/internal/snowflake"
	"dalchat-backend/internal/store"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type authResponse struct {
	Success bool        `json:"success"`
	User    models.User `json:"user"`
	Token   string      `json:"token"`
}

func setSessionCookie(w http.ResponseWriter, tokenString string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func Register(w http.ResponseWriter, r *http.Request) {
	type SignupRequest struct {
		Email       string `json:"email" validate:"required,email,max=64"`
		Password    string `json:"password" validate:"required,min=6,max=72"`
		DisplayName string `json:"displayName" validate:"required,max=64"`
	}

	var signup SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&signup); err != nil {
		sugar.Debug(err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := validate.Struct(signup); err != nil {
		writeValidationError(w, err)
		return
	}

	taken, err := st.EmailTaken(r.Context(), signup.Email)
	if err != nil {
		sugar.Error(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if taken {
		writeError(w, http.StatusBadRequest, store.ErrDuplicateEmail.Error())
		return
	}

	passwordBytes, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcryptCost)
	if err != nil {
		sugar.Error(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	userIDValue, err := snowflake.Generate()
	if err != nil {
		sugar.Error(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := models.User{
		ID:          userIDValue,
		Email:       signup.Email,
		DisplayName: signup.DisplayName,
		Password:    passwordBytes,
		CreatedAt:   snowflake.Timestamp(userIDValue),
	}

	if cfg.RequireEmailConfirm {
		if err := parkPendingRegistration(user); err != nil {
			sugar.Error(err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "confirmEmail": true})
		return
	}

	if err := st.CreateUser(r.Context(), user); err != nil {
		writeStoreError(w, err)
		return
	}

	finishLogin(w, user)
}

// parkPendingRegistration holds the prepared user in the key/value store
// until the emailed confirmation link is opened.
func parkPendingRegistration(user models.User) error {
	confirmToken, err := uuid.NewV7()
	if err != nil {
		return err
	}

	pending := struct {
		models.User
		Password []byte `json:"password"`
	}{User: user, Password: user.Password}

	bytes, err := json.Marshal(pending)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("registration:%s", confirmToken.String())
	if err := keyValue.Set(key, string(bytes), time.Hour); err != nil {
		return err
	}

	return email.SendEmailConfirmation(user.Email, user.DisplayName, confirmToken.String())
}

func Login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var login LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&login); err != nil {
		sugar.Debug(err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// one message for unknown email and wrong password, so login failures
	// don't reveal which emails are registered
	user, err := st.UserByEmail(r.Context(), login.Email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	} else if err != nil {
		sugar.Error(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(login.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	finishLogin(w, user)
}

func finishLogin(w http.ResponseWriter, user models.User) {
	tokenString, err := session.Create(user.ID)
	if err != nil {
		sugar.Error(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	setSessionCookie(w, tokenString)
	writeJSON(w, http.StatusOK, authResponse{Success: true, User: user, Token: tokenString})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	if err := session.Revoke(rawToken(r)); err != nil {
		sugar.Error(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	writeSuccess(w)
}
