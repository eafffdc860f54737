package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRouter(t *testing.T, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(ProxyFix(0))
	r.GET("/ping", RateLimit(rdb, max, window, keyFn, allow), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r, mr
}

func doGet(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	r, _ := rateLimitedRouter(t, 2, time.Minute, KeyByIP(), nil)

	w := doGet(r, "192.0.2.1:1000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	w = doGet(r, "192.0.2.1:1000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = doGet(r, "192.0.2.1:1000")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_SeparateKeysPerIP(t *testing.T) {
	r, _ := rateLimitedRouter(t, 1, time.Minute, KeyByIP(), nil)

	require.Equal(t, http.StatusOK, doGet(r, "192.0.2.1:1000").Code)
	require.Equal(t, http.StatusTooManyRequests, doGet(r, "192.0.2.1:1000").Code)
	// a different client is unaffected
	require.Equal(t, http.StatusOK, doGet(r, "192.0.2.2:1000").Code)
}

func TestRateLimit_WindowExpires(t *testing.T) {
	r, mr := rateLimitedRouter(t, 1, time.Minute, KeyByIP(), nil)

	require.Equal(t, http.StatusOK, doGet(r, "192.0.2.1:1000").Code)
	require.Equal(t, http.StatusTooManyRequests, doGet(r, "192.0.2.1:1000").Code)

	mr.FastForward(61 * time.Second)
	require.Equal(t, http.StatusOK, doGet(r, "192.0.2.1:1000").Code)
}

func TestRateLimit_AllowFuncBypasses(t *testing.T) {
	allow := func(c *gin.Context) bool { return c.GetHeader("X-Internal") == "1" }
	r, _ := rateLimitedRouter(t, 1, time.Minute, KeyByIP(), allow)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		req.Header.Set("X-Internal", "1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_FailsOpenOnRedisDown(t *testing.T) {
	r, mr := rateLimitedRouter(t, 1, time.Minute, KeyByIP(), nil)
	mr.Close()

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doGet(r, "192.0.2.1:1000").Code)
	}
}

func TestRateLimit_NilRedisNoops(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, doGet(r, "192.0.2.1:1000").Code)
	}
}
