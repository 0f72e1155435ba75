package event

import (
	"context"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

type AdminUpdateCmd struct {
	EventID uuid.UUID

	Patch       domain.EventPatch
	StateAction domain.AdminStateAction // "" means no state change
}

// AdminUpdate applies an admin's field patch regardless of state; only the
// state action itself is gated (publish needs PENDING and enough lead
// time, reject needs anything but PUBLISHED).
func (s *Service) AdminUpdate(ctx context.Context, cmd AdminUpdateCmd) (*domain.Event, error) {
	now := s.clock.Now()

	e, err := s.repo.UpdateUnderLock(ctx, cmd.EventID, func(e *domain.Event) error {
		if err := e.ApplyPatch(cmd.Patch, now); err != nil {
			return err
		}
		if cmd.StateAction != "" {
			return e.ApplyAdminAction(cmd.StateAction, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cmd.StateAction != "" {
		zlog.Info().
			Str("event_id", e.ID.String()).
			Str("state", string(e.State)).
			Msg("event state changed by admin")
	}
	return e, nil
}
