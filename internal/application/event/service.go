package event

import (
	"context"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
)

// Service owns the event lifecycle: creation, organizer edits, and admin
// moderation of the event itself. Participation requests live in the
// registration service.
type Service struct {
	repo  EventRepo
	views ViewCounter
	clock Clock
}

func New(repo EventRepo, views ViewCounter, clock Clock) *Service {
	return &Service{repo: repo, views: views, clock: clock}
}

// WithViews pairs an event with its view count for rendering.
type WithViews struct {
	Event *domain.Event
	Views int64
}

func (s *Service) attachViews(ctx context.Context, events []*domain.Event) []WithViews {
	ids := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	counts := map[uuid.UUID]int64{}
	if s.views != nil && len(ids) > 0 {
		counts = s.views.Views(ctx, ids)
	}
	out := make([]WithViews, 0, len(events))
	for _, e := range events {
		out = append(out, WithViews{Event: e, Views: counts[e.ID]})
	}
	return out
}
