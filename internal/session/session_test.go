package session

import (
	"testing"

	"dalchat-backend/internal/keyValue"
	"dalchat-backend/internal/token"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setup(t *testing.T) {
	t.Helper()
	keyValue.Setup(zap.NewNop().Sugar(), nil, true)
	token.Setup("test-secret")
}

func TestCreateResolve(t *testing.T) {
	setup(t)

	tok, err := Create(42)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, sessionID, err := Resolve(tok)
	require.NoError(t, err)
	require.EqualValues(t, 42, userID)
	require.Len(t, sessionID, 32) // 128 bits, hex encoded
}

func TestCreateTokensDiffer(t *testing.T) {
	setup(t)

	first, err := Create(1)
	require.NoError(t, err)
	second, err := Create(1)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, firstSession, err := Resolve(first)
	require.NoError(t, err)
	_, secondSession, err := Resolve(second)
	require.NoError(t, err)
	require.NotEqual(t, firstSession, secondSession)
}

func TestResolveGarbageToken(t *testing.T) {
	setup(t)

	_, _, err := Resolve("not-a-token")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveForgedToken(t *testing.T) {
	setup(t)

	tok, err := Create(7)
	require.NoError(t, err)

	token.Setup("another-secret")
	_, _, err = Resolve(tok)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRevoke(t *testing.T) {
	setup(t)

	tok, err := Create(7)
	require.NoError(t, err)

	require.NoError(t, Revoke(tok))

	_, _, err = Resolve(tok)
	require.ErrorIs(t, err, ErrUnauthorized)

	// revoking again is a no-op
	require.NoError(t, Revoke(tok))
	require.NoError(t, Revoke("not-a-token"))
}
