package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rizkypratama/authguard/internal/container"
	handlers "github.com/rizkypratama/authguard/internal/interface/http"
	"github.com/rizkypratama/authguard/internal/interface/middleware"
	"github.com/rizkypratama/authguard/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits. Confirm re-send stays
	// public so unconfirmed accounts can recover from an expired token.
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	confirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	confirmInitLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetInitLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/confirm", confirmLimiter, m.Handler.ConfirmEmail)
	rg.POST("/confirm/init", confirmInitLimiter, m.Handler.ConfirmInit)
	rg.POST("/reset/init", resetInitLimiter, m.Handler.ResetInit)
	rg.POST("/reset/confirm", resetConfirmLimiter, m.Handler.ResetConfirm)
}
