package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dalchat-backend/internal/keyValue"
	"dalchat-backend/internal/session"
)

type userIDKeyType struct{}
type sessionIDKeyType struct{}

func AllowCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rawToken pulls the session token from the Authorization header, falling
// back to the session cookie for browser WebSocket connections.
func rawToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}

	cookie, err := r.Cookie("session")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Auth resolves the session token and passes the authenticated user id and
// session id down through the request context.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := rawToken(r)
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "no session token was provided")
			return
		}

		userID, sessionID, err := session.Resolve(tokenString)
		if err != nil {
			if errors.Is(err, session.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, err.Error())
			} else {
				sugar.Error(err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		// sessions can outlive their user, check existence through the cache
		found, err := userExists(r.Context(), userID)
		if err != nil {
			sugar.Error(err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !found {
			writeError(w, http.StatusUnauthorized, "user no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKeyType{}, userID)
		ctx = context.WithValue(ctx, sessionIDKeyType{}, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userExists(ctx context.Context, userID int64) (bool, error) {
	key := fmt.Sprintf("user_exists:%d", userID)

	value, err := keyValue.Get(key)
	if err != nil {
		return false, err
	}
	if value != "" {
		return true, nil
	}

	found, err := st.UserExists(ctx, userID)
	if err != nil {
		return false, err
	}

	if found {
		if err := keyValue.Set(key, "y", 15*time.Minute); err != nil {
			return false, err
		}
	}

	return found, nil
}

func userID(r *http.Request) int64 {
	return r.Context().Value(userIDKeyType{}).(int64)
}

func sessionID(r *http.Request) string {
	return r.Context().Value(sessionIDKeyType{}).(string)
}
