package domain

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestConfirmed, RequestRejected, RequestCanceled:
		return true
	}
	return false
}

// Terminal statuses take no further transitions, except CONFIRMED which the
// requester may still cancel (never forced out by moderation).
func (s RequestStatus) Terminal() bool {
	return s == RequestConfirmed || s == RequestRejected || s == RequestCanceled
}

// ParticipationRequest is a user's claim on one of an event's capacity
// slots. One requester holds at most one non-canceled request per event.
type ParticipationRequest struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	RequesterID uuid.UUID
	Status      RequestStatus
	Created     time.Time
}

// NewParticipationRequest builds the row admitted by AdmitRequest. The
// status comes from the admission decision, never from the caller.
func NewParticipationRequest(eventID, requesterID uuid.UUID, status RequestStatus, now time.Time) *ParticipationRequest {
	return &ParticipationRequest{
		ID:          uuid.New(),
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      status,
		Created:     now.UTC(),
	}
}
