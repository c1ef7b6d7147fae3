// Package token signs and verifies the session token envelope. The envelope
// is a JWT carrying the random session id; the session registry still holds
// the authoritative mapping, so revocation works regardless of the token's
// own expiry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    int64  `json:"uid,string"`
	jwt.RegisteredClaims
}

var jwtSecret []byte

func Setup(secret string) {
	jwtSecret = []byte(secret)
}

func Create(sessionID string, userID int64, lifetime time.Duration) (string, error) {
	currentTime := time.Now().UTC()

	t := jwt.NewWithClaims(jwt.SigningMethodHS512, SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(lifetime)),
		},
	})

	return t.SignedString(jwtSecret)
}

func Verify(tokenString string) (SessionClaims, error) {
	t, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil {
		return SessionClaims{}, err
	}

	claims, ok := t.Claims.(*SessionClaims)
	if !ok {
		return SessionClaims{}, errors.New("invalid token")
	}
	return *claims, nil
}
