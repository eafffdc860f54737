package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rizkypratama/authguard/internal/container"
	handlers "github.com/rizkypratama/authguard/internal/interface/http"
	"github.com/rizkypratama/authguard/internal/interface/middleware"
	"github.com/rizkypratama/authguard/pkg/helpers"
)

type EmailModule struct {
	Handler *handlers.EmailHandler
	JWT     *helpers.JWTManager
}

func NewEmailModule(h *handlers.EmailHandler, jwt *helpers.JWTManager) *EmailModule {
	return &EmailModule{Handler: h, JWT: jwt}
}

func (m *EmailModule) Register(rg *gin.RouterGroup) {
	// Direct sends are an operator tool, admin only
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RolesRequired("admin"))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/email/send", m.Handler.Send)
	}
}
