package postgres

import (
	"context"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func scanRequests(rows pgx.Rows) ([]*domain.ParticipationRequest, error) {
	defer rows.Close()

	var out []*domain.ParticipationRequest
	for rows.Next() {
		var req domain.ParticipationRequest
		var status string
		if err := rows.Scan(&req.ID, &req.EventID, &req.RequesterID, &status, &req.Created); err != nil {
			return nil, err
		}
		req.Status = domain.RequestStatus(status)
		out = append(out, &req)
	}
	return out, rows.Err()
}

func (r *Repository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE requester_id = $1
		ORDER BY created ASC
	`, requesterID)
	if err != nil {
		return nil, err
	}
	return scanRequests(rows)
}

// ListForEvent returns the requests for the initiator's own event. The
// ownership check runs first so someone else's event reads as not_found.
func (r *Repository) ListForEvent(ctx context.Context, eventID, initiatorID uuid.UUID) ([]*domain.ParticipationRequest, error) {
	if _, err := r.GetByIDAndInitiator(ctx, eventID, initiatorID); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE event_id = $1
		ORDER BY created ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	return scanRequests(rows)
}
