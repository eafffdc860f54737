package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func TestJWTManager_AccessRoundTrip(t *testing.T) {
	m := newTestJWT()

	tok, exp, err := m.GenerateAccessToken("user-1", "sess-1")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestJWTManager_RefreshNotValidAsAccess(t *testing.T) {
	m := newTestJWT()

	tok, _, err := m.GenerateRefreshToken("user-1", "sess-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)

	claims, err := m.ParseRefreshToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestJWTManager_RejectsTamperedToken(t *testing.T) {
	m := newTestJWT()

	tok, _, err := m.GenerateAccessToken("user-1", "sess-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok + "x")
	assert.Error(t, err)

	_, err = m.ParseAccessToken("not-a-jwt")
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", -time.Minute, time.Hour)

	tok, _, err := m.GenerateAccessToken("user-1", "sess-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
}
