package memory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jiayou/auth-service/internal/application/auth"
	"github.com/jiayou/auth-service/internal/application/caregiver"
)

// NoopPublisher logs events instead of sending them. Used in dev when the
// broker is unreachable.
type NoopPublisher struct {
	log zerolog.Logger
}

func NewNoopPublisher(log zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{log: log.With().Str("component", "noop-pub").Logger()}
}

func (p *NoopPublisher) PublishIdentityRegistered(ctx context.Context, evt auth.IdentityRegisteredEvent) error {
	p.log.Info().Str("identity_id", evt.IdentityID).Str("role", evt.Role).Msg("identity registered")
	return nil
}

func (p *NoopPublisher) PublishIdentityDeactivated(ctx context.Context, evt auth.IdentityDeactivatedEvent) error {
	p.log.Info().Str("identity_id", evt.IdentityID).Msg("identity deactivated")
	return nil
}

func (p *NoopPublisher) PublishBackgroundCheckRequested(ctx context.Context, evt caregiver.BackgroundCheckRequestedEvent) error {
	p.log.Info().Str("identity_id", evt.IdentityID).Time("requested_at", evt.RequestedAt).Msg("background check requested")
	return nil
}
