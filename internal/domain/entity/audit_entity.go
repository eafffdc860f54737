package entity

import "time"

// Audit actions recorded for security events
const (
	AuditLogin          = "login"
	AuditLoginFailed    = "login_failed"
	AuditLogout         = "logout"
	AuditRegister       = "register"
	AuditConfirm        = "confirm"
	AuditConfirmInit    = "confirm_init"
	AuditResetInit      = "reset_init"
	AuditResetConfirm   = "reset_confirm"
	AuditPasswordChange = "password_change"
	AuditRoleAssigned   = "role_assigned"
	AuditRoleRemoved    = "role_removed"
	AuditDeactivated    = "deactivated"
	AuditActivated      = "activated"
)

// AuditEntry is a single security event row.
type AuditEntry struct {
	ID        string
	UserID    string // may be empty for unknown principals
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}
