package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/afisha-events/afisha/internal/domain"
	appctx "github.com/afisha-events/afisha/internal/pkg/context"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// -------------------------
// Deadlock policy:
// Always lock in this order (for the same event_id):
//   1) events row (FOR UPDATE) - the single serialization point for
//      state and confirmed_requests
//   2) requests row(s) if needed (FOR UPDATE)
// Register, CancelRequest and ResolveModeration all follow this order.
// -------------------------

const eventColumns = `
	id, initiator_id, title, annotation, description, category,
	event_date, lat, lon, paid, participant_limit, request_moderation,
	state, published_on, confirmed_requests, created_on, updated_on`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	var state string
	err := row.Scan(
		&e.ID, &e.InitiatorID, &e.Title, &e.Annotation, &e.Description, &e.Category,
		&e.EventDate, &e.Location.Lat, &e.Location.Lon, &e.Paid,
		&e.ParticipantLimit, &e.RequestModeration,
		&state, &e.PublishedOn, &e.ConfirmedRequests, &e.CreatedOn, &e.UpdatedOn,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound("event not found")
	}
	if err != nil {
		return nil, err
	}
	e.State = domain.EventState(state)
	if !e.State.Valid() {
		return nil, errors.New("invalid event state in db: " + state)
	}
	return &e, nil
}

// lockEvent loads the event row FOR UPDATE inside tx. Every transaction
// that reads-then-writes state or confirmed_requests goes through here.
func lockEvent(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (*domain.Event, error) {
	row := tx.QueryRow(ctx, `SELECT`+eventColumns+`
		FROM events WHERE id = $1 FOR UPDATE`, eventID)
	return scanEvent(row)
}

func (r *Repository) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO events (
			id, initiator_id, title, annotation, description, category,
			event_date, lat, lon, paid, participant_limit, request_moderation,
			state, published_on, confirmed_requests, created_on, updated_on
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		e.ID, e.InitiatorID, e.Title, e.Annotation, e.Description, e.Category,
		e.EventDate, e.Location.Lat, e.Location.Lon, e.Paid,
		e.ParticipantLimit, e.RequestModeration,
		string(e.State), e.PublishedOn, e.ConfirmedRequests, e.CreatedOn, e.UpdatedOn,
	)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+eventColumns+`
		FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

func (r *Repository) GetByIDAndInitiator(ctx context.Context, id, initiatorID uuid.UUID) (*domain.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+eventColumns+`
		FROM events WHERE id = $1 AND initiator_id = $2`, id, initiatorID)
	return scanEvent(row)
}

// UpdateUnderLock runs a lifecycle read-patch-write as one transaction.
// The events row is taken FOR UPDATE before mutate sees it, so a patch
// or state action cannot interleave with a concurrent publish, reject,
// or admission. PUBLISHED stays terminal because every state check runs
// against the locked row, not a stale read.
//
// confirmed_requests is never written here: the counter is owned by the
// admission and moderation transactions.
func (r *Repository) UpdateUnderLock(ctx context.Context, id uuid.UUID,
	mutate func(*domain.Event) error) (*domain.Event, error) {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	e, err := lockEvent(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	prev := e.State
	if err := mutate(e); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE events SET
			title = $2, annotation = $3, description = $4, category = $5,
			event_date = $6, lat = $7, lon = $8, paid = $9,
			participant_limit = $10, request_moderation = $11,
			state = $12, published_on = $13, updated_on = $14
		WHERE id = $1
	`,
		e.ID, e.Title, e.Annotation, e.Description, e.Category,
		e.EventDate, e.Location.Lat, e.Location.Lon, e.Paid,
		e.ParticipantLimit, e.RequestModeration,
		string(e.State), e.PublishedOn, e.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}

	if e.State != prev {
		key := "event.state_changed"
		if e.State == domain.StatePublished {
			key = "event.published"
		}
		payload, _ := json.Marshal(map[string]any{
			"event_id": e.ID,
			"state":    e.State,
			"previous": prev,
		})
		insertOutbox(ctx, tx, key, payload)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, routingKey string, payload []byte) {
	traceID := appctx.GetRequestID(ctx)
	_, _ = tx.Exec(ctx, `
		INSERT INTO outbox (message_id, trace_id, routing_key, payload, occurred_at, next_retry_at, status)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), 'pending')
	`, uuid.New(), traceID, routingKey, payload)
}
