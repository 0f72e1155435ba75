package event

import (
	"context"
	"sort"
	"time"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
)

func (s *Service) ListByInitiator(ctx context.Context, initiatorID uuid.UUID, from, size int) ([]WithViews, error) {
	events, err := s.repo.ListByInitiator(ctx, initiatorID, from, size)
	if err != nil {
		return nil, err
	}
	return s.attachViews(ctx, events), nil
}

func (s *Service) ListAdmin(ctx context.Context, f AdminFilter) ([]WithViews, error) {
	if err := validateRange(f.RangeStart, f.RangeEnd); err != nil {
		return nil, err
	}
	events, err := s.repo.ListAdmin(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.attachViews(ctx, events), nil
}

// ListPublic searches published events and records the search hit. When no
// range start is given, only upcoming events are shown.
func (s *Service) ListPublic(ctx context.Context, f PublicFilter, sortBy PublicSort, uri, clientIP string) ([]WithViews, error) {
	if err := validateRange(f.RangeStart, f.RangeEnd); err != nil {
		return nil, err
	}
	if f.RangeStart == nil {
		now := s.clock.Now()
		f.RangeStart = &now
	}

	events, err := s.repo.ListPublic(ctx, f)
	if err != nil {
		return nil, err
	}

	if s.views != nil {
		s.views.TrackHit(ctx, uri, clientIP)
	}

	out := s.attachViews(ctx, events)
	switch sortBy {
	case SortEventDate:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Event.EventDate.Before(out[j].Event.EventDate)
		})
	case SortViews:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Views > out[j].Views
		})
	}
	return out, nil
}

func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return domain.ErrValidation("range end cannot be before range start")
	}
	return nil
}
