package domain

import "strings"

type Role string

const (
	// RoleCaregiver offers care services and may publish a caregiver profile.
	RoleCaregiver Role = "caregiver"
	// RoleFamily looks for caregivers.
	RoleFamily Role = "family"
)

func IsValidRole(r string) bool {
	return r == string(RoleCaregiver) || r == string(RoleFamily)
}

// ParseRole normalizes r and rejects anything outside the enumeration.
func ParseRole(r string) (Role, error) {
	r = strings.ToLower(strings.TrimSpace(r))
	if !IsValidRole(r) {
		return "", ErrInvalidRole(r)
	}
	return Role(r), nil
}

func (r Role) String() string { return string(r) }
