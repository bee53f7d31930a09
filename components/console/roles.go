package console

import "strings"

// Role is the opaque permission tier code carried by a viewer session.
type Role string

const (
	RoleUnknown      Role = ""
	RoleAdmin        Role = "ADMIN"
	RoleEventManager Role = "EVENT_MANAGER"
	RoleGeneral      Role = "GENERAL"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:        {},
	RoleEventManager: {},
	RoleGeneral:      {},
}

// ParseRole normalizes a raw role code. Codes outside the known set map to RoleUnknown.
func ParseRole(raw string) Role {
	code := strings.ToUpper(strings.TrimSpace(raw))
	code = strings.TrimPrefix(code, "ROLE_")
	code = strings.ReplaceAll(code, "-", "_")
	role := Role(code)
	if _, ok := knownRoles[role]; !ok {
		return RoleUnknown
	}
	return role
}

// Known reports whether the role belongs to the closed set of codes.
func (r Role) Known() bool {
	_, ok := knownRoles[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// HasAdminPermission reports whether the role may see admin surfaces.
// This is a rendering guard only; the backend enforces authorization.
func HasAdminPermission(role Role) bool {
	return role == RoleAdmin
}

// HasEventManagerPermission reports whether the role may manage events and booths.
// Admins inherit event manager capabilities.
func HasEventManagerPermission(role Role) bool {
	return role == RoleEventManager || role == RoleAdmin
}

// RoleAllowed reports whether role is one of the allowed codes. An empty allow
// list admits every known role.
func RoleAllowed(role Role, allowed []string) bool {
	if !role.Known() {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if ParseRole(candidate) == role {
			return true
		}
	}
	return false
}
