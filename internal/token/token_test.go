package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketchat/backend/internal/token"
)

func newTestService() *token.Service {
	return token.NewService("test-secret", 5*time.Minute, 24*time.Hour)
}

func TestConnectToken_RoundTrip(t *testing.T) {
	svc := newTestService()

	signed, err := svc.IssueConnectToken("alice")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	userID, err := svc.VerifyConnectToken(signed)
	assert.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestSessionToken_RoundTrip(t *testing.T) {
	svc := newTestService()

	signed, err := svc.IssueSessionToken("bob")
	require.NoError(t, err)

	userID, err := svc.VerifySessionToken(signed)
	assert.NoError(t, err)
	assert.Equal(t, "bob", userID)
}

func TestVerify_RejectsWrongTokenType(t *testing.T) {
	svc := newTestService()

	session, err := svc.IssueSessionToken("alice")
	require.NoError(t, err)
	connect, err := svc.IssueConnectToken("alice")
	require.NoError(t, err)

	_, err = svc.VerifyConnectToken(session)
	assert.ErrorIs(t, err, token.ErrTokenInvalid, "session token must not authorize a connection")

	_, err = svc.VerifySessionToken(connect)
	assert.ErrorIs(t, err, token.ErrTokenInvalid, "connect token must not pass as a session")
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	svc := token.NewService("test-secret", -1*time.Minute, 24*time.Hour)

	signed, err := svc.IssueConnectToken("alice")
	require.NoError(t, err)

	_, err = svc.VerifyConnectToken(signed)
	assert.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	signed, err := newTestService().IssueConnectToken("alice")
	require.NoError(t, err)

	other := token.NewService("other-secret", 5*time.Minute, 24*time.Hour)
	_, err = other.VerifyConnectToken(signed)
	assert.ErrorIs(t, err, token.ErrTokenInvalid)
}

func TestVerify_RejectsGarbage(t *testing.T) {
	svc := newTestService()

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.VerifyConnectToken(tok)
		assert.ErrorIs(t, err, token.ErrTokenInvalid, "token %q", tok)
	}
}
