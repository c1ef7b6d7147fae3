package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"dalchat-backend/internal/store"

	"github.com/go-playground/validator/v10"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		sugar.Error(err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// writeStoreError maps the store's error taxonomy onto HTTP statuses. The
// sentinel's message is what the client displays.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNotMember),
		errors.Is(err, store.ErrInsufficientPermission):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrDuplicateChannel),
		errors.Is(err, store.ErrProtectedChannel),
		errors.Is(err, store.ErrInvalidRole),
		errors.Is(err, store.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		sugar.Error(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeValidationError turns validator failures into one readable message,
// e.g. "email: failed on email, password: failed on min".
func writeValidationError(w http.ResponseWriter, err error) {
	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		sugar.Error(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	parts := make([]string, 0, len(validateErrs))
	for _, e := range validateErrs {
		parts = append(parts, e.Field()+": failed on "+e.Tag())
	}

	writeError(w, http.StatusBadRequest, strings.Join(parts, ", "))
}
