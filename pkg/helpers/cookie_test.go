package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieManager_SetPair(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	m := NewCookie("example.com", true)
	m.SetPair(c, "acc", time.Now().Add(time.Hour), "ref", time.Now().Add(24*time.Hour))

	res := w.Result()
	cookies := res.Cookies()
	require.Len(t, cookies, 2)

	byName := map[string]*http.Cookie{}
	for _, ck := range cookies {
		byName[ck.Name] = ck
	}

	acc := byName["access_token"]
	require.NotNil(t, acc)
	assert.Equal(t, "acc", acc.Value)
	assert.True(t, acc.HttpOnly)
	assert.True(t, acc.Secure)
	assert.Equal(t, "example.com", acc.Domain)
	assert.Greater(t, acc.MaxAge, 0)

	ref := byName["refresh_token"]
	require.NotNil(t, ref)
	assert.Greater(t, ref.MaxAge, acc.MaxAge)
}

func TestCookieManager_Clear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	m := NewCookie("example.com", false)
	m.Clear(c)

	for _, ck := range w.Result().Cookies() {
		assert.Empty(t, ck.Value)
		assert.Less(t, ck.MaxAge, 0)
	}
}

func TestMaxAgeFrom(t *testing.T) {
	assert.Equal(t, 0, maxAgeFrom(time.Now().Add(-time.Minute)))
	assert.InDelta(t, 3600, maxAgeFrom(time.Now().Add(time.Hour)), 2)
}
