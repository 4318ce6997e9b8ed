package employee

import "errors"

// Role is the access level carried in the service token.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleTeamLead Role = "team_lead"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

var (
	ErrInvalidToken        = errors.New("invalid or missing token")
	ErrTeamLeadRequired    = errors.New("team lead access required")
	ErrHRAccessRequired    = errors.New("hr access required")
	ErrAdminAccessRequired = errors.New("admin access required")
)
