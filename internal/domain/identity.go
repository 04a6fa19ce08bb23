package domain

import (
	"strings"
	"time"
)

// DefaultLanguage is used when registration does not name one.
const DefaultLanguage = "zh"

// Identity is one account. Role never changes after creation; accounts are
// deactivated, never deleted.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	Language     string
	FirstName    string
	LastName     string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the identity holds exactly role r.
func (i Identity) HasRole(r Role) bool { return i.Role == r }

// ProfileUpdate carries the only fields a user may change on their own
// identity. Nil means "leave unchanged".
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Language  *string
}

func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Language == nil
}

// Apply returns a copy of i with the update applied.
func (p ProfileUpdate) Apply(i Identity) Identity {
	if p.FirstName != nil {
		i.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		i.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Language != nil {
		i.Language = strings.TrimSpace(*p.Language)
	}
	return i
}

// NormalizeEmail is the identity key: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
