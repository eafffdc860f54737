package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenToken(t *testing.T) {
	a, err := GenToken(32)
	require.NoError(t, err)
	b, err := GenToken(32)
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	// URL-safe, no padding
	assert.NotContains(t, a, "=")
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
}

func TestRedisKeyBuilders(t *testing.T) {
	assert.Equal(t, "confirm:token:abc", KeyConfirmToken("abc"))
	assert.Equal(t, "pwd:reset:token:abc", KeyResetToken("abc"))
	assert.Equal(t, "user:session:u1", KeySession("u1"))
}
