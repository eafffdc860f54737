package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/rizkypratama/authguard/internal/application"
	"github.com/rizkypratama/authguard/internal/domain/entity"
	repo "github.com/rizkypratama/authguard/internal/domain/repository"
	"github.com/rizkypratama/authguard/internal/interface/middleware"
	"github.com/rizkypratama/authguard/pkg/response"
	"github.com/rizkypratama/authguard/pkg/validation"
)

// AdminHandler exposes the user management surface; all routes require the
// admin role.
type AdminHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
	Audit  repo.AuditRepository
}

func NewAdminHandler(svc *userapp.Service, logger *logrus.Logger, audit repo.AuditRepository) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger, Audit: audit}
}

func (h *AdminHandler) audit(c *gin.Context, targetID, action string, metadata map[string]any) {
	if h.Audit == nil {
		return
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["actor_id"] = c.GetString("userID")
	e := &entity.AuditEntry{
		UserID:    targetID,
		Action:    action,
		IP:        middleware.ClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	}
	if err := h.Audit.Insert(c.Request.Context(), e); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}

// ListUsers GET /api/admin/users?limit=&offset=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	users, err := h.Svc.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to list users", nil)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, profileJSON(u))
	}
	response.Success(c, http.StatusOK, out, "users", map[string]any{"limit": limit, "offset": offset})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive PUT /api/admin/users/:id/active
func (h *AdminHandler) SetActive(c *gin.Context) {
	id := c.Param("id")
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.SetActive(c.Request.Context(), id, req.Active); err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to update user", nil)
		return
	}
	action := entity.AuditDeactivated
	if req.Active {
		action = entity.AuditActivated
	}
	h.audit(c, id, action, nil)
	response.Success[any](c, http.StatusOK, gin.H{"id": id, "active": req.Active}, "user updated", nil)
}

type roleRequest struct {
	Role        string `json:"role" binding:"required,min=2,max=64"`
	Description string `json:"description" binding:"max=255"`
}

// AssignRole POST /api/admin/users/:id/roles
func (h *AdminHandler) AssignRole(c *gin.Context) {
	id := c.Param("id")
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	role, err := h.Svc.AssignRole(c.Request.Context(), id, req.Role, req.Description)
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to assign role", nil)
		return
	}
	h.audit(c, id, entity.AuditRoleAssigned, map[string]any{"role": role.Name})
	response.Success(c, http.StatusOK, gin.H{"user_id": id, "role": role.Name}, "role assigned", nil)
}

// RemoveRole DELETE /api/admin/users/:id/roles/:role
func (h *AdminHandler) RemoveRole(c *gin.Context) {
	id := c.Param("id")
	role := c.Param("role")
	if err := h.Svc.RemoveRole(c.Request.Context(), id, role); err != nil {
		if errors.Is(err, userapp.ErrRoleNotFound) {
			response.Error[any](c, http.StatusNotFound, "role not assigned", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to remove role", nil)
		return
	}
	h.audit(c, id, entity.AuditRoleRemoved, map[string]any{"role": role})
	response.Success(c, http.StatusOK, gin.H{"user_id": id, "role": role}, "role removed", nil)
}

// SearchUsers GET /api/admin/users/search?q=&size=
func (h *AdminHandler) SearchUsers(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

// UserAudit GET /api/admin/users/:id/audit
func (h *AdminHandler) UserAudit(c *gin.Context) {
	id := c.Param("id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.Audit.ListForUser(c.Request.Context(), id, limit)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to load audit log", nil)
		return
	}
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"id":         e.ID,
			"user_id":    e.UserID,
			"email":      e.Email,
			"action":     e.Action,
			"ip":         e.IP,
			"user_agent": e.UserAgent,
			"metadata":   e.Metadata,
			"created_at": e.CreatedAt,
		})
	}
	response.Success(c, http.StatusOK, out, "audit log", nil)
}
