package postgres

import (
	"context"
	"encoding/json"

	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
)

// ResolveModeration applies an organizer's batch decision in one
// transaction. Same lock order as Register: the events row is taken FOR
// UPDATE first, so a moderation batch and a concurrent registration can
// never jointly exceed the participant limit.
func (r *Repository) ResolveModeration(ctx context.Context, eventID, initiatorID uuid.UUID,
	requestIDs []uuid.UUID, decision domain.RequestStatus) (*domain.ModerationResult, error) {

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
	// Not forbidden: someone else's event looks like no event at all.
	if ev.InitiatorID != initiatorID {
		return nil, domain.ErrNotFound("event not found")
	}

	// 2) Lock the referenced requests second, then restore the caller's
	// order: it is the tie-break for who gets the remaining seats.
	rows, err := tx.Query(ctx, `
		SELECT id, event_id, requester_id, status, created
		FROM requests
		WHERE id = ANY($1) AND event_id = $2
		FOR UPDATE
	`, requestIDs, eventID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.ParticipationRequest, len(requestIDs))
	for rows.Next() {
		var req domain.ParticipationRequest
		var status string
		if err := rows.Scan(&req.ID, &req.EventID, &req.RequesterID, &status, &req.Created); err != nil {
			rows.Close()
			return nil, err
		}
		req.Status = domain.RequestStatus(status)
		byID[req.ID] = &req
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// A repeated id collapses to its first occurrence; feeding the same
	// row into the partition twice would double-count the seat.
	seen := make(map[uuid.UUID]struct{}, len(requestIDs))
	ordered := make([]*domain.ParticipationRequest, 0, len(requestIDs))
	for _, id := range requestIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		req, ok := byID[id]
		if !ok {
			return nil, domain.ErrNotFound("request not found")
		}
		ordered = append(ordered, req)
	}

	// 3) All-or-nothing partition; an error here rolls everything back.
	res, err := domain.ResolveModeration(ev, ordered, decision)
	if err != nil {
		return nil, err
	}

	// 4) Persist the partition and the counter as one unit.
	if len(res.Confirmed) > 0 {
		ids := requestIDsOf(res.Confirmed)
		if _, err := tx.Exec(ctx, `UPDATE requests SET status = 'CONFIRMED' WHERE id = ANY($1)`, ids); err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx, `
			UPDATE events
			SET confirmed_requests = $2, updated_on = NOW()
			WHERE id = $1
		`, eventID, ev.ConfirmedRequests)
		if err != nil {
			return nil, err
		}
	}
	if len(res.Rejected) > 0 {
		ids := requestIDsOf(res.Rejected)
		if _, err := tx.Exec(ctx, `UPDATE requests SET status = 'REJECTED' WHERE id = ANY($1)`, ids); err != nil {
			return nil, err
		}
	}

	payload, _ := json.Marshal(map[string]any{
		"event_id":  eventID,
		"decision":  decision,
		"confirmed": len(res.Confirmed),
		"rejected":  len(res.Rejected),
	})
	insertOutbox(ctx, tx, "moderation.resolved", payload)

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

func requestIDsOf(reqs []*domain.ParticipationRequest) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.ID)
	}
	return out
}
