package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rizkypratama/authguard/config"
	userapp "github.com/rizkypratama/authguard/internal/application"
	"github.com/rizkypratama/authguard/internal/domain/entity"
	repo "github.com/rizkypratama/authguard/internal/domain/repository"
	"github.com/rizkypratama/authguard/internal/interface/middleware"
	"github.com/rizkypratama/authguard/pkg/helpers"
	"github.com/rizkypratama/authguard/pkg/mailer"
	tpl "github.com/rizkypratama/authguard/pkg/mailer/templates"
	"github.com/rizkypratama/authguard/pkg/response"
	"github.com/rizkypratama/authguard/pkg/validation"
)

// AuthHandler covers registration, email confirmation and password reset.
type AuthHandler struct {
	Svc    *userapp.Service
	RDB    *redis.Client
	Logger *logrus.Logger
	Cfg    *config.Config
	Pub    *helpers.RabbitPublisher
	Audit  repo.AuditRepository
}

func NewAuthHandler(svc *userapp.Service, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config, pub *helpers.RabbitPublisher, audit repo.AuditRepository) *AuthHandler {
	return &AuthHandler{Svc: svc, RDB: rdb, Logger: logger, Cfg: cfg, Pub: pub, Audit: audit}
}

func (h *AuthHandler) audit(c *gin.Context, userID, email, action string, metadata map[string]any) {
	if h.Audit == nil {
		return
	}
	e := &entity.AuditEntry{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        middleware.ClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	}
	if err := h.Audit.Insert(c.Request.Context(), e); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}

// enqueue publishes the job off the request path so the response time does
// not depend on broker latency. Geo enrichment happens in the worker.
func (h *AuthHandler) enqueue(c *gin.Context, job mailer.EmailJob) {
	if h.Pub == nil || h.Cfg == nil || !h.Cfg.MailSendEnabled {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := h.Pub.PublishJSON(pctx, job); err != nil && h.Logger != nil {
			h.Logger.WithError(err).WithField("to", job.To).Warn("failed to publish email job")
		}
	}()
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name" binding:"max=120"`
}

// Register POST /api/register
// Creates the account and sends confirmation instructions.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, userapp.ErrEmailTaken) {
			response.Error[any](c, http.StatusConflict, "email already registered", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	h.audit(c, u.ID, u.Email, entity.AuditRegister, nil)

	h.sendConfirmInstructions(c, u.ID, u.Name, u.Email)

	response.Success(c, http.StatusCreated, gin.H{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
	}, "registered; confirmation instructions sent", nil)
}

func (h *AuthHandler) sendConfirmInstructions(c *gin.Context, uid, name, email string) {
	if h.RDB == nil {
		return
	}
	tok, err := helpers.GenToken(32)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("confirm token generation failed")
		}
		return
	}
	h.RDB.Set(c.Request.Context(), helpers.KeyConfirmToken(tok), uid, 24*time.Hour)
	link := h.Cfg.ConfirmURL + "?token=" + tok

	data := tpl.NewConfirmInstructionsData(
		h.Cfg,
		name,
		email,
		link,
		tpl.WithTime(time.Now()),
		tpl.WithExpiresIn(24*time.Hour),
		tpl.WithIP(middleware.ClientIP(c)),
		tpl.WithUserAgent(c.GetHeader("User-Agent")),
	)
	h.enqueue(c, mailer.EmailJob{To: email, Template: tpl.ConfirmInstructions, Data: data.Map()})
}

// ConfirmInit POST /api/confirm/init {email}
// Re-sends confirmation instructions. The answer is the same whether the
// account is unknown, unconfirmed or already confirmed.
func (h *AuthHandler) ConfirmInit(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, _ := h.Svc.GetUserByEmail(c.Request.Context(), req.Email)
	if u != nil && !u.Confirmed() {
		h.sendConfirmInstructions(c, u.ID, u.Name, u.Email)
		h.audit(c, u.ID, u.Email, entity.AuditConfirmInit, nil)
	} else {
		h.audit(c, "", req.Email, entity.AuditConfirmInit, map[string]any{"sent": false})
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "confirmation instructions sent if the account needs them", nil)
}

// ConfirmEmail POST /api/confirm {token}
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if h.RDB == nil {
		response.Error[any](c, http.StatusInternalServerError, "confirmation unavailable", nil)
		return
	}
	uid, err := h.RDB.Get(c.Request.Context(), helpers.KeyConfirmToken(req.Token)).Result()
	if err != nil || uid == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}
	if err := h.Svc.Confirm(c.Request.Context(), uid); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "confirmation failed", nil)
		return
	}
	h.RDB.Del(c.Request.Context(), helpers.KeyConfirmToken(req.Token))
	h.audit(c, uid, "", entity.AuditConfirm, nil)
	response.Success[any](c, http.StatusOK, gin.H{"confirmed": true}, "email confirmed", nil)
}

// ResetInit POST /api/reset/init {email}
// Always answers OK so account existence is not observable.
func (h *AuthHandler) ResetInit(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, _ := h.Svc.GetUserByEmail(c.Request.Context(), req.Email)
	if u != nil && h.RDB != nil {
		tok, err := helpers.GenToken(32)
		if err != nil {
			response.Error[any](c, http.StatusInternalServerError, "token generation failed", nil)
			return
		}
		h.RDB.Set(c.Request.Context(), helpers.KeyResetToken(tok), u.ID, 30*time.Minute)
		link := h.Cfg.ResetURL + "?token=" + tok

		data := tpl.NewResetInstructionsData(
			h.Cfg,
			u.Name,
			u.Email,
			link,
			tpl.WithTime(time.Now()),
			tpl.WithExpiresIn(30*time.Minute),
			tpl.WithIP(middleware.ClientIP(c)),
			tpl.WithUserAgent(c.GetHeader("User-Agent")),
		)
		h.enqueue(c, mailer.EmailJob{To: u.Email, Template: tpl.ResetInstructions, Data: data.Map()})
		h.audit(c, u.ID, u.Email, entity.AuditResetInit, nil)
	} else {
		h.audit(c, "", req.Email, entity.AuditResetInit, map[string]any{"known": false})
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "reset instructions sent if the account exists", nil)
}

// ResetConfirm POST /api/reset/confirm {token, new_password}
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if h.RDB == nil {
		response.Error[any](c, http.StatusInternalServerError, "reset unavailable", nil)
		return
	}
	uid, err := h.RDB.Get(c.Request.Context(), helpers.KeyResetToken(req.Token)).Result()
	if err != nil || uid == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}
	if err := h.Svc.SetPassword(c.Request.Context(), uid, req.NewPassword); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "password update failed", nil)
		return
	}
	h.RDB.Del(c.Request.Context(), helpers.KeyResetToken(req.Token))
	// force every device to log in with the new password
	h.Svc.Logout(c.Request.Context(), uid)
	h.audit(c, uid, "", entity.AuditResetConfirm, nil)
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}
