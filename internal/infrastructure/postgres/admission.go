package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Register admits requesterID into the event inside one transaction.
// The events row is locked first, so the capacity check inside
// domain.AdmitRequest and the counter increment below cannot interleave
// with a concurrent registration or moderation batch: two simultaneous
// registrations never both take the last seat.
func (r *Repository) Register(ctx context.Context, eventID, requesterID uuid.UUID) (*domain.ParticipationRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// 1) Lock the event row FIRST.
	ev, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	// 2) Duplicate check is race-safe under the event lock: competing
	// registrations for the same event serialize on step 1.
	var hasActive bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM requests
			WHERE event_id = $1 AND requester_id = $2 AND status <> 'CANCELED'
		)
	`, eventID, requesterID).Scan(&hasActive)
	if err != nil {
		return nil, err
	}

	// 3) Ordered admission preconditions + auto-confirmation decision.
	status, err := domain.AdmitRequest(ev, requesterID, hasActive)
	if err != nil {
		return nil, err
	}

	req := domain.NewParticipationRequest(eventID, requesterID, status, time.Now())
	_, err = tx.Exec(ctx, `
		INSERT INTO requests (id, event_id, requester_id, status, created)
		VALUES ($1, $2, $3, $4, $5)
	`, req.ID, req.EventID, req.RequesterID, string(req.Status), req.Created)
	if err != nil {
		return nil, err
	}

	// 4) Counter moves in the same transaction as the request insert:
	// both commit or both roll back, never a partial state.
	if status == domain.RequestConfirmed {
		_, err = tx.Exec(ctx, `
			UPDATE events
			SET confirmed_requests = confirmed_requests + 1, updated_on = NOW()
			WHERE id = $1
		`, eventID)
		if err != nil {
			return nil, err
		}
	}

	payload, _ := json.Marshal(map[string]any{
		"event_id":     eventID,
		"requester_id": requesterID,
		"request_id":   req.ID,
		"status":       req.Status,
	})
	insertOutbox(ctx, tx, "request.created", payload)

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return req, nil
}

// CancelRequest sets the requester's own request to CANCELED. A request
// belonging to someone else is reported as not_found rather than
// forbidden, so request ids cannot be enumerated across users.
//
// Canceling an already CONFIRMED request does not decrement the event's
// confirmed_requests: the seat stays held. Observed behavior of the
// system this replaces; kept until product says otherwise.
func (r *Repository) CancelRequest(ctx context.Context, requestID, requesterID uuid.UUID) (*domain.ParticipationRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var req domain.ParticipationRequest
	var status string
	err = tx.QueryRow(ctx, `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE id = $1
		FOR UPDATE
	`, requestID).Scan(&req.ID, &req.EventID, &req.RequesterID, &status, &req.Created)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound("request not found")
	}
	if err != nil {
		return nil, err
	}
	if req.RequesterID != requesterID {
		return nil, domain.ErrNotFound("request not found")
	}
	req.Status = domain.RequestStatus(status)

	if req.Status != domain.RequestCanceled {
		_, err = tx.Exec(ctx, `UPDATE requests SET status = 'CANCELED' WHERE id = $1`, requestID)
		if err != nil {
			return nil, err
		}

		payload, _ := json.Marshal(map[string]any{
			"event_id":     req.EventID,
			"requester_id": req.RequesterID,
			"request_id":   req.ID,
			"prev_status":  req.Status,
		})
		insertOutbox(ctx, tx, "request.canceled", payload)
	}
	req.Status = domain.RequestCanceled

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &req, nil
}
