package domain

import "strings"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleOperations Role = "OPERATIONS"
	RoleFinance    Role = "FINANCE"
	RoleDriver     Role = "DRIVER"
	RoleHelper     Role = "HELPER"
)

func Roles() []Role {
	return []Role{RoleAdmin, RoleOperations, RoleFinance, RoleDriver, RoleHelper}
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles() {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// IsCrew reports whether the role rides on shipments.
func (r Role) IsCrew() bool {
	return r == RoleDriver || r == RoleHelper
}

// IsStaff reports whether the role manages shipments for everyone.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleOperations
}

type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

// Viewer is the authenticated caller as seen by services.
type Viewer struct {
	UserID string
	Role   Role
}
