package caregiver

import (
	"context"
	"time"

	"github.com/jiayou/auth-service/internal/domain"
)

// Background check states stored alongside the profile.
const (
	CheckNotStarted = "not_started"
	CheckProcessing = "processing"
)

// Profile is a caregiver profile as persisted.
type Profile struct {
	IdentityID string
	Profile    domain.CaregiverProfile
	Status     string
	UpdatedAt  time.Time
}

// ProfileStore persists caregiver profiles keyed by identity ID.
type ProfileStore interface {
	// UpsertProfile replaces the profile document, keeping the current
	// background check status (CheckNotStarted for a new row).
	UpsertProfile(ctx context.Context, identityID string, p domain.CaregiverProfile) (Profile, error)
	SetCheckStatus(ctx context.Context, identityID, status string) error
}

type EventPublisher interface {
	PublishBackgroundCheckRequested(ctx context.Context, evt BackgroundCheckRequestedEvent) error
}

type BackgroundCheckRequestedEvent struct {
	IdentityID  string    `json:"identity_id"`
	Email       string    `json:"email"`
	RequestedAt time.Time `json:"requested_at"`
}
