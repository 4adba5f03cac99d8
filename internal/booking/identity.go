package booking

import "strings"

// Role is the caller's standing in the building, taken from an explicit
// claim rather than inferred from the handle.
type Role string

const (
    RoleResident  Role = "resident"
    RoleCommittee Role = "committee"
)

// ParseRole maps a claim value to a Role.  Unknown values are residents.
func ParseRole(s string) Role {
    if Role(strings.ToLower(strings.TrimSpace(s))) == RoleCommittee {
        return RoleCommittee
    }
    return RoleResident
}

// Identity is the caller as reported by the identity provider.  An empty
// Handle means a guest.
type Identity struct {
    Handle string
    Role   Role
}

// Anonymous reports whether the caller is a guest.
func (id Identity) Anonymous() bool { return strings.TrimSpace(id.Handle) == "" }

// SeesOccupants reports whether the caller may see who holds other slots.
func (id Identity) SeesOccupants() bool { return id.Role == RoleCommittee }
