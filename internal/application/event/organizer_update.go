package event

import (
	"context"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
)

type OrganizerUpdateCmd struct {
	EventID     uuid.UUID
	InitiatorID uuid.UUID

	Patch       domain.EventPatch
	StateAction domain.UserStateAction // "" means no state change
}

// OrganizerUpdate lets the initiator edit their own event. Cross-user
// lookups surface as not_found, and published events take no organizer
// edits at all.
func (s *Service) OrganizerUpdate(ctx context.Context, cmd OrganizerUpdateCmd) (*domain.Event, error) {
	now := s.clock.Now()

	return s.repo.UpdateUnderLock(ctx, cmd.EventID, func(e *domain.Event) error {
		// Not forbidden: someone else's event looks like no event at all.
		if e.InitiatorID != cmd.InitiatorID {
			return domain.ErrNotFound("event not found")
		}
		if !e.Editable() {
			return domain.ErrConflict("only pending or canceled events can be changed")
		}
		if err := e.ApplyPatch(cmd.Patch, now); err != nil {
			return err
		}
		if cmd.StateAction != "" {
			return e.ApplyUserAction(cmd.StateAction, now)
		}
		return nil
	})
}
