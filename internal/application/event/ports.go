package event

import (
	"context"
	"time"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

// AdminFilter narrows the admin event listing.
type AdminFilter struct {
	Initiators []uuid.UUID
	States     []domain.EventState
	Categories []string
	RangeStart *time.Time
	RangeEnd   *time.Time
	From       int
	Size       int
}

// PublicSort is the ordering of the public search results.
type PublicSort string

const (
	SortEventDate PublicSort = "EVENT_DATE"
	SortViews     PublicSort = "VIEWS"
)

// PublicFilter narrows the public event search. Only published events are
// ever returned.
type PublicFilter struct {
	Text          string
	Categories    []string
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	From          int
	Size          int
}

type EventRepo interface {
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	// GetByIDAndInitiator returns not_found when the event exists but
	// belongs to someone else.
	GetByIDAndInitiator(ctx context.Context, id, initiatorID uuid.UUID) (*domain.Event, error)
	// UpdateUnderLock loads the event row under an exclusive lock, hands
	// the fresh copy to mutate, and persists the result in the same
	// transaction. State checks inside mutate therefore hold at commit.
	// confirmed_requests is never written; the counter is owned by the
	// admission and moderation transactions.
	UpdateUnderLock(ctx context.Context, id uuid.UUID, mutate func(*domain.Event) error) (*domain.Event, error)

	ListByInitiator(ctx context.Context, initiatorID uuid.UUID, from, size int) ([]*domain.Event, error)
	ListAdmin(ctx context.Context, f AdminFilter) ([]*domain.Event, error)
	ListPublic(ctx context.Context, f PublicFilter) ([]*domain.Event, error)
}

// ViewCounter is the view-count collaborator. Both methods are
// best-effort: a down stats service never breaks event rendering.
type ViewCounter interface {
	TrackHit(ctx context.Context, uri, clientIP string)
	Views(ctx context.Context, eventIDs []uuid.UUID) map[uuid.UUID]int64
}
