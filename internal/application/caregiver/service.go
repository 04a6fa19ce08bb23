package caregiver

import (
	"context"
	"errors"
	"time"

	"github.com/jiayou/auth-service/internal/domain"
)

type Service struct {
	profiles ProfileStore
	pub      EventPublisher
	now      func() time.Time
	audit    func(ctx context.Context, action string, fields map[string]string)
}

func NewService(profiles ProfileStore, pub EventPublisher) *Service {
	return &Service{
		profiles: profiles,
		pub:      pub,
		now:      time.Now,
		audit:    func(context.Context, string, map[string]string) {},
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) WithAudit(fn func(ctx context.Context, action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// SaveProfile stores the caller's caregiver profile.
func (s *Service) SaveProfile(ctx context.Context, id domain.Identity, p domain.CaregiverProfile) (Profile, error) {
	if !id.HasRole(domain.RoleCaregiver) {
		return Profile{}, domain.ErrInsufficientRole(string(domain.RoleCaregiver))
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}

	out, err := s.profiles.UpsertProfile(ctx, id.ID, p)
	if err != nil {
		return Profile{}, err
	}
	s.audit(ctx, "caregiver_profile_saved", map[string]string{"identity_id": id.ID})
	return out, nil
}

// StartBackgroundCheck marks the caller's check as processing, then hands it
// to the verification provider. A failed publish puts the status back to
// not_started. The provider result arrives asynchronously.
func (s *Service) StartBackgroundCheck(ctx context.Context, id domain.Identity) (domain.BackgroundCheck, error) {
	if !id.HasRole(domain.RoleCaregiver) {
		return domain.BackgroundCheck{}, domain.ErrInsufficientRole(string(domain.RoleCaregiver))
	}

	if err := s.profiles.SetCheckStatus(ctx, id.ID, CheckProcessing); err != nil {
		return domain.BackgroundCheck{}, err
	}

	if err := s.pub.PublishBackgroundCheckRequested(ctx, BackgroundCheckRequestedEvent{
		IdentityID:  id.ID,
		Email:       id.Email,
		RequestedAt: s.now().UTC(),
	}); err != nil {
		// The request context may be what failed the publish.
		if rerr := s.profiles.SetCheckStatus(context.WithoutCancel(ctx), id.ID, CheckNotStarted); rerr != nil {
			return domain.BackgroundCheck{}, errors.Join(domain.ErrRabbitUnavailable(err), rerr)
		}
		return domain.BackgroundCheck{}, domain.ErrRabbitUnavailable(err)
	}

	s.audit(ctx, "background_check_requested", map[string]string{"identity_id": id.ID})
	return domain.BackgroundCheck{Status: CheckProcessing}, nil
}
