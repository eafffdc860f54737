package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizkypratama/authguard/pkg/response"
)

// RolesRequired allows the request only when the session carries every one
// of the named roles. Must run after Auth.
func RolesRequired(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		have := rolesFromCtx(c)
		for _, want := range names {
			if !containsRole(have, want) {
				response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// RolesAccepted allows the request when the session carries at least one of
// the named roles. Must run after Auth.
func RolesAccepted(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		have := rolesFromCtx(c)
		for _, want := range names {
			if containsRole(have, want) {
				c.Next()
				return
			}
		}
		response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
		c.Abort()
	}
}

func containsRole(have []string, want string) bool {
	for _, r := range have {
		if r == want {
			return true
		}
	}
	return false
}
