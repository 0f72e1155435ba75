package registration

import (
	"context"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
)

// RequestRepo executes the admission and moderation transactions. Each
// write locks the event row first, so the capacity decision and the
// counter update are atomic against concurrent writers (see
// infrastructure/postgres for the lock order).
type RequestRepo interface {
	// Register admits requesterID into the event, applying the ordered
	// admission preconditions and the auto-confirmation rule inside one
	// transaction.
	Register(ctx context.Context, eventID, requesterID uuid.UUID) (*domain.ParticipationRequest, error)

	// CancelRequest cancels the requester's own request. A request owned
	// by someone else is reported as not_found.
	CancelRequest(ctx context.Context, requestID, requesterID uuid.UUID) (*domain.ParticipationRequest, error)

	// ResolveModeration applies the organizer's batch decision
	// all-or-nothing, in the supplied request order.
	ResolveModeration(ctx context.Context, eventID, initiatorID uuid.UUID,
		requestIDs []uuid.UUID, decision domain.RequestStatus) (*domain.ModerationResult, error)

	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.ParticipationRequest, error)
	// ListForEvent returns the requests for the initiator's own event;
	// not_found for anyone else's event.
	ListForEvent(ctx context.Context, eventID, initiatorID uuid.UUID) ([]*domain.ParticipationRequest, error)
}
