package utils

import (
	"testing"
	"time"

	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	user := domain.User{Type: domain.UserTypeEmployee, Email: "employee@test.tld"}

	token, err := GenerateSessionToken(user, "session-1", "secret", time.Hour, "billed-test")
	require.NoError(t, err)

	sessionID, got, err := ParseSessionToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "session-1", sessionID)
	assert.Equal(t, user, got)
}

func TestParseSessionToken_Rejects(t *testing.T) {
	user := domain.User{Type: domain.UserTypeEmployee, Email: "employee@test.tld"}

	token, err := GenerateSessionToken(user, "session-1", "secret", time.Hour, "billed-test")
	require.NoError(t, err)
	_, _, err = ParseSessionToken(token, "another-secret")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	expired, err := GenerateSessionToken(user, "session-1", "secret", -time.Minute, "billed-test")
	require.NoError(t, err)
	_, _, err = ParseSessionToken(expired, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	noID, err := GenerateSessionToken(user, "", "secret", time.Hour, "billed-test")
	require.NoError(t, err)
	_, _, err = ParseSessionToken(noID, "secret")
	assert.Error(t, err)

	_, _, err = ParseSessionToken("garbage", "secret")
	assert.Error(t, err)
}
