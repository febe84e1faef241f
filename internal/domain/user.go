package domain

import (
	"fmt"
	"time"
)

// Role enumerates the closed set of application roles.
type Role string

const (
	RoleAdminGenerale Role = "admin-generale"
	RoleAgentBoaz     Role = "agent-boaz"
	RoleBailleur      Role = "bailleur"
	RoleClient        Role = "client"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdminGenerale, RoleAgentBoaz, RoleBailleur, RoleClient:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// HomeRoute maps a role to its canonical dashboard route. The switch is
// exhaustive over the closed Role set; anything else falls back to the root
// route.
func (r Role) HomeRoute() string {
	switch r {
	case RoleAdminGenerale:
		return "/admin-dashboard"
	case RoleAgentBoaz:
		return "/agent-dashboard"
	case RoleBailleur:
		return "/bailleur-dashboard"
	case RoleClient:
		return "/client-dashboard"
	default:
		return "/"
	}
}

// User is the domain model for accounts that sign in to the back office.
type User struct {
	ID           int64
	Email        string
	Nom          string
	Prenom       string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
