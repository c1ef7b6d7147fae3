// Package session is the registry mapping opaque session tokens to user ids.
// Tokens wrap a 128-bit random session id; the id -> user mapping lives in the
// key/value store with a TTL, so sessions survive restarts when redis backs
// the store and revocation takes effect immediately everywhere.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"dalchat-backend/internal/keyValue"
	"dalchat-backend/internal/token"
)

const lifetime = 30 * 24 * time.Hour

var ErrUnauthorized = errors.New("invalid or expired session")

func key(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Create registers a new session for userID and returns its bearer token.
func Create(userID int64) (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	sessionID := hex.EncodeToString(raw)

	err := keyValue.Set(key(sessionID), strconv.FormatInt(userID, 10), lifetime)
	if err != nil {
		return "", err
	}

	return token.Create(sessionID, userID, lifetime)
}

// Resolve returns the user id and session id a token belongs to, or
// ErrUnauthorized when the token is malformed, expired or revoked.
func Resolve(tokenString string) (int64, string, error) {
	claims, err := token.Verify(tokenString)
	if err != nil {
		return 0, "", ErrUnauthorized
	}

	value, err := keyValue.Get(key(claims.SessionID))
	if err != nil {
		return 0, "", err
	}
	if value == "" {
		return 0, "", ErrUnauthorized
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, "", err
	}

	return userID, claims.SessionID, nil
}

// Revoke removes the session a token belongs to. Unknown and malformed tokens
// are ignored so repeated logouts succeed.
func Revoke(tokenString string) error {
	claims, err := token.Verify(tokenString)
	if err != nil {
		return nil
	}

	return keyValue.Delete(key(claims.SessionID))
}
