package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
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

// UserHandler covers login/logout/refresh and the profile surface.
type UserHandler struct {
	Svc     *userapp.Service
	Logger  *logrus.Logger
	Cfg     *config.Config
	Pub     *helpers.RabbitPublisher
	Audit   repo.AuditRepository
	Cookies *helpers.CookieManager
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, cfg *config.Config, pub *helpers.RabbitPublisher, audit repo.AuditRepository) *UserHandler {
	return &UserHandler{
		Svc:     svc,
		Logger:  logger,
		Cfg:     cfg,
		Pub:     pub,
		Audit:   audit,
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
	}
}

func (h *UserHandler) audit(c *gin.Context, userID, email, action string, metadata map[string]any) {
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

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

type updateProfileRequest struct {
	Name      string `json:"name" binding:"max=120"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url"`
}

// Login POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	ip := middleware.ClientIP(c)
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password, ip)
	if err != nil {
		h.audit(c, "", req.Email, entity.AuditLoginFailed, map[string]any{"reason": loginFailReason(err)})
		switch {
		case errors.Is(err, userapp.ErrUserInactive):
			response.Error[any](c, http.StatusForbidden, "account deactivated", nil)
		case errors.Is(err, userapp.ErrUnconfirmed):
			response.Error[any](c, http.StatusForbidden, "email not confirmed", nil)
		default:
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		}
		return
	}

	u, pair := res.User, res.Pair
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	h.audit(c, u.ID, u.Email, entity.AuditLogin, nil)

	if h.Pub != nil && h.Cfg != nil && h.Cfg.MailSendEnabled {
		data := tpl.NewLoginNotificationData(
			h.Cfg,
			u.Name,
			u.Email,
			tpl.WithTime(time.Now()),
			tpl.WithIP(ip),
			tpl.WithUserAgent(c.GetHeader("User-Agent")),
			tpl.WithGeoFromIP(c.Request.Context(), tpl.IPAPIResolver{}, ip),
		)
		if err := h.Pub.PublishJSON(c.Request.Context(), mailer.EmailJob{To: u.Email, Template: tpl.LoginNotification, Data: data.Map()}); err != nil && h.Logger != nil {
			h.Logger.WithError(err).Warn("failed to publish login notification")
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"user_id": u.ID,
		"email":   u.Email,
		"name":    u.Name,
	}, "login successful", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

func loginFailReason(err error) string {
	switch {
	case errors.Is(err, userapp.ErrUserInactive):
		return "inactive"
	case errors.Is(err, userapp.ErrUnconfirmed):
		return "unconfirmed"
	default:
		return "credentials"
	}
}

// Refresh POST /api/refresh
func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Logout POST /api/logout
func (h *UserHandler) Logout(c *gin.Context) {
	uid := c.GetString("userID")
	h.Svc.Logout(c.Request.Context(), uid)
	h.Cookies.Clear(c)
	h.audit(c, uid, c.GetString("userEmail"), entity.AuditLogout, nil)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func profileJSON(u *entity.User) gin.H {
	return gin.H{
		"id":               u.ID,
		"email":            u.Email,
		"name":             u.Name,
		"avatar_url":       u.AvatarURL,
		"active":           u.Active,
		"confirmed_at":     u.ConfirmedAt,
		"roles":            u.RoleNames(),
		"last_login_at":    u.LastLoginAt,
		"current_login_at": u.CurrentLoginAt,
		"last_login_ip":    u.LastLoginIP,
		"current_login_ip": u.CurrentLoginIP,
		"login_count":      u.LoginCount,
		"created_at":       u.CreatedAt,
		"updated_at":       u.UpdatedAt,
	}
}

// GetProfile GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString("userID")
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, profileJSON(u), "profile", nil)
}

// UpdateProfile PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString("userID")
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, userapp.UpdateProfileInput{Name: req.Name, AvatarURL: req.AvatarURL})
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "failed to update profile", nil)
		return
	}
	response.Success(c, http.StatusOK, profileJSON(u), "profile updated", nil)
}

// ChangePassword POST /api/profile/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	uid := c.GetString("userID")
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, userapp.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "current password incorrect", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "password change failed", nil)
		return
	}
	h.Cookies.Clear(c)
	h.audit(c, uid, c.GetString("userEmail"), entity.AuditPasswordChange, nil)
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed; log in again", nil)
}

// UploadAvatar POST /api/profile/avatar (multipart)
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid := c.GetString("userID")
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing avatar file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), uid, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "avatar upload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar uploaded", nil)
}
