package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ProxyFix corrects the client address and scheme for requests that passed
// through trusted reverse proxies. proxyCount is the number of proxy hops in
// front of the app; with zero the socket peer is used and forwarded headers
// are ignored.
//
// The corrected values land in the Gin context under "real_ip" and "scheme".
func ProxyFix(proxyCount int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", realIPFrom(c, proxyCount))
		c.Set("scheme", schemeFrom(c, proxyCount))
		c.Next()
	}
}

func realIPFrom(c *gin.Context, proxyCount int) string {
	peer := peerIP(c)
	if proxyCount <= 0 {
		return peer
	}
	xff := c.GetHeader("X-Forwarded-For")
	if xff == "" {
		return peer
	}
	parts := strings.Split(xff, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	// The rightmost proxyCount entries were appended by our proxies; the
	// client is the entry just before them. Anything further left is
	// attacker-controllable and ignored.
	idx := len(parts) - proxyCount
	if idx < 0 {
		idx = 0
	}
	if ip := net.ParseIP(parts[idx]); ip != nil {
		return ip.String()
	}
	return peer
}

func schemeFrom(c *gin.Context, proxyCount int) string {
	if proxyCount > 0 {
		if proto := strings.ToLower(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto"))); proto == "http" || proto == "https" {
			return proto
		}
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

func peerIP(c *gin.Context) string {
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return host
}

// ClientIP returns the proxy-corrected address, falling back to Gin's view.
func ClientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
