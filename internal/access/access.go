// Package access holds the role-gating rules shared by every operation.
package access

import (
	"medica-server/internal/models"
	"medica-server/internal/service"
)

// Principal is the authenticated caller. The zero value is anonymous.
type Principal struct {
	UserID    string
	Role      models.Role
	Superuser bool
}

// Authenticated reports whether p identifies a user.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

type kind int

const (
	adminOnly kind = iota
	doctorOnly
	clientOnly
	anyOf
)

// Policy is one of the capability checks. Construct it with the exported values
// or AnyOf.
type Policy struct {
	kind  kind
	roles []models.Role
}

var (
	AdminOnly  = Policy{kind: adminOnly}
	DoctorOnly = Policy{kind: doctorOnly}
	ClientOnly = Policy{kind: clientOnly}
)

// AnyOf allows each of the listed roles.
func AnyOf(roles ...models.Role) Policy {
	return Policy{kind: anyOf, roles: roles}
}

// Authorize returns ErrNotAuthenticated for an anonymous caller and
// ErrPermissionDenied when p's role does not satisfy policy. Superusers pass
// the doctor and client checks.
func Authorize(p Principal, policy Policy) error {
	if !p.Authenticated() {
		return service.ErrNotAuthenticated
	}
	if !p.Role.Valid() {
		return service.ErrPermissionDenied
	}

	var allowed bool
	switch policy.kind {
	case adminOnly:
		allowed = p.Role == models.RoleAdmin
	case doctorOnly:
		allowed = p.Role == models.RoleDoctor || p.Superuser
	case clientOnly:
		allowed = p.Role == models.RoleClient || p.Superuser
	case anyOf:
		for _, r := range policy.roles {
			if p.Role == r {
				allowed = true
				break
			}
		}
	}

	if !allowed {
		return service.ErrPermissionDenied
	}
	return nil
}

// Dashboard names the landing view for a role. The switch is exhaustive over
// models.Roles; an unknown role has no dashboard.
func Dashboard(role models.Role) (string, error) {
	switch role {
	case models.RoleAdmin:
		return "admin", nil
	case models.RoleDoctor:
		return "doctor", nil
	case models.RoleClient:
		return "client", nil
	}
	return "", service.ErrPermissionDenied
}
