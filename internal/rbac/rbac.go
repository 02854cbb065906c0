// AngelaMos | 2026
// rbac.go

// Package rbac holds the role → capability table consulted by every
// authorisation decision in the service.
package rbac

import (
	"fmt"

	"github.com/carterperez-dev/airline-directory/internal/core"
)

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleManager    Role = "manager"
	RoleEditor     Role = "editor"
)

type Capability string

const (
	ManageUsers   Capability = "users:manage"
	ReviewContent Capability = "content:review"
	WriteContent  Capability = "content:write"
	ManageOffices Capability = "offices:manage"
	ViewSystem    Capability = "system:view"
)

var capabilities = map[Role]map[Capability]struct{}{
	RoleSuperadmin: set(ManageUsers, ReviewContent, WriteContent, ManageOffices, ViewSystem),
	RoleManager:    set(ReviewContent, WriteContent, ManageOffices, ViewSystem),
	RoleEditor:     set(WriteContent),
}

func set(caps ...Capability) map[Capability]struct{} {
	m := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		m[c] = struct{}{}
	}
	return m
}

func Roles() []Role {
	return []Role{RoleSuperadmin, RoleManager, RoleEditor}
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := capabilities[r]; !ok {
		return "", fmt.Errorf("parse role %q: %w", s, core.ErrInvalidInput)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// Can reports whether role holds capability. Unknown roles hold nothing.
func Can(role Role, capability Capability) bool {
	caps, ok := capabilities[role]
	if !ok {
		return false
	}
	_, ok = caps[capability]
	return ok
}

func Authorize(role Role, capability Capability) error {
	if !Can(role, capability) {
		return fmt.Errorf("%s requires %s: %w", role, capability, core.ErrForbidden)
	}
	return nil
}

// Actor is the authenticated caller a service acts for.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) Can(capability Capability) bool {
	return Can(a.Role, capability)
}

func (a Actor) Authorize(capability Capability) error {
	return Authorize(a.Role, capability)
}
