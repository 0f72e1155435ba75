package event

import (
	"context"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
)

// GetByInitiator returns the initiator's own event, not_found otherwise.
func (s *Service) GetByInitiator(ctx context.Context, eventID, initiatorID uuid.UUID) (WithViews, error) {
	e, err := s.repo.GetByIDAndInitiator(ctx, eventID, initiatorID)
	if err != nil {
		return WithViews{}, err
	}
	return s.attachViews(ctx, []*domain.Event{e})[0], nil
}

// GetPublic returns a published event and records the page view with the
// stats collaborator. Non-published events are reported as not_found so
// drafts cannot be probed.
func (s *Service) GetPublic(ctx context.Context, eventID uuid.UUID, uri, clientIP string) (WithViews, error) {
	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return WithViews{}, err
	}
	if e.State != domain.StatePublished {
		return WithViews{}, domain.ErrNotFound("event not found")
	}

	if s.views != nil {
		s.views.TrackHit(ctx, uri, clientIP)
	}
	return s.attachViews(ctx, []*domain.Event{e})[0], nil
}
