package domain

import "fmt"

// Role is a traveller's permission level on a single trip. A user may hold
// different roles on different trips.
type Role string

const (
	RoleOwner  Role = "Owner"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
)

// DefaultRole is applied when a traveller is added without an explicit role.
const DefaultRole = RoleViewer

// ParseRole validates a client-supplied role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleOwner, RoleEditor, RoleViewer:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Known reports whether r is one of the enumerated roles. Stored rows can
// carry values outside the set (legacy data); those are treated as Viewer.
func (r Role) Known() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Normalize maps unknown role values to Viewer, the least-privilege default.
func (r Role) Normalize() Role {
	if !r.Known() {
		return RoleViewer
	}
	return r
}

// CanEdit reports whether the role grants write access to trip contents.
// Unknown roles never grant edit access.
func (r Role) CanEdit() bool {
	switch r {
	case RoleOwner, RoleEditor:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
