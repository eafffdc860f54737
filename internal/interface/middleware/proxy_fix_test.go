package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proxyFixResult(t *testing.T, proxyCount int, remoteAddr string, headers map[string]string) (ip, scheme string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ProxyFix(proxyCount))
	r.GET("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ip": ClientIP(c), "scheme": c.GetString("scheme")})
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		IP     string `json:"ip"`
		Scheme string `json:"scheme"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.IP, body.Scheme
}

func TestProxyFix_NoProxiesIgnoresHeaders(t *testing.T) {
	ip, scheme := proxyFixResult(t, 0, "192.0.2.10:51000", map[string]string{
		"X-Forwarded-For":   "203.0.113.5",
		"X-Forwarded-Proto": "https",
	})
	assert.Equal(t, "192.0.2.10", ip)
	assert.Equal(t, "http", scheme)
}

func TestProxyFix_SingleProxy(t *testing.T) {
	ip, scheme := proxyFixResult(t, 1, "10.0.0.1:443", map[string]string{
		"X-Forwarded-For":   "203.0.113.5",
		"X-Forwarded-Proto": "https",
	})
	assert.Equal(t, "203.0.113.5", ip)
	assert.Equal(t, "https", scheme)
}

func TestProxyFix_SpoofedLeftEntriesIgnored(t *testing.T) {
	// the client appended a fake entry; with one trusted hop only the
	// rightmost entry is believed
	ip, _ := proxyFixResult(t, 1, "10.0.0.1:443", map[string]string{
		"X-Forwarded-For": "6.6.6.6, 203.0.113.5",
	})
	assert.Equal(t, "203.0.113.5", ip)
}

func TestProxyFix_TwoProxies(t *testing.T) {
	ip, _ := proxyFixResult(t, 2, "10.0.0.1:443", map[string]string{
		"X-Forwarded-For": "203.0.113.5, 10.0.0.2",
	})
	assert.Equal(t, "203.0.113.5", ip)
}

func TestProxyFix_MoreHopsThanEntries(t *testing.T) {
	ip, _ := proxyFixResult(t, 5, "10.0.0.1:443", map[string]string{
		"X-Forwarded-For": "203.0.113.5, 10.0.0.2",
	})
	assert.Equal(t, "203.0.113.5", ip)
}

func TestProxyFix_GarbageHeaderFallsBackToPeer(t *testing.T) {
	ip, scheme := proxyFixResult(t, 1, "192.0.2.10:51000", map[string]string{
		"X-Forwarded-For":   "not-an-ip",
		"X-Forwarded-Proto": "gopher",
	})
	assert.Equal(t, "192.0.2.10", ip)
	assert.Equal(t, "http", scheme)
}

func TestProxyFix_MissingHeaderUsesPeer(t *testing.T) {
	ip, _ := proxyFixResult(t, 1, "192.0.2.10:51000", nil)
	assert.Equal(t, "192.0.2.10", ip)
}
