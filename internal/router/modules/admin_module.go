package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rizkypratama/authguard/internal/container"
	handlers "github.com/rizkypratama/authguard/internal/interface/http"
	"github.com/rizkypratama/authguard/internal/interface/middleware"
	"github.com/rizkypratama/authguard/pkg/helpers"
)

// AdminModule registers the user management surface under /api/admin.
// Every route requires an authenticated session carrying the admin role.
type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(container.GetRedis(), m.JWT))
	admin.Use(middleware.RolesRequired("admin"))
	admin.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		admin.GET("/users", m.Handler.ListUsers)
		admin.GET("/users/search", m.Handler.SearchUsers)
		admin.PUT("/users/:id/active", m.Handler.SetActive)
		admin.POST("/users/:id/roles", m.Handler.AssignRole)
		admin.DELETE("/users/:id/roles/:role", m.Handler.RemoveRole)
		admin.GET("/users/:id/audit", m.Handler.UserAudit)
	}
}
