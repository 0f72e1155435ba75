package domain

import "github.com/google/uuid"

// AdmitRequest decides whether requesterID may register for ev and with
// which initial status. The preconditions run in a fixed order: the first
// failing one wins and each maps to its own conflict message.
//
// The caller must hold the event row lock for the whole admission
// transaction: the capacity check here and the counter increment that
// follows a CONFIRMED admission have to be atomic with respect to
// concurrent registrations.
//
// hasActiveRequest is whether requesterID already holds a non-canceled
// request for this event.
func AdmitRequest(ev *Event, requesterID uuid.UUID, hasActiveRequest bool) (RequestStatus, error) {
	if ev.InitiatorID == requesterID {
		return "", ErrConflict("initiator cannot participate in own event")
	}
	if ev.State != StatePublished {
		return "", ErrConflict("cannot participate in unpublished event")
	}
	if !ev.HasCapacity() {
		return "", ErrConflict("the event has reached participant limit")
	}
	if hasActiveRequest {
		return "", ErrConflict("request already exists")
	}

	if ev.AutoConfirms() {
		return RequestConfirmed, nil
	}
	return RequestPending, nil
}
