package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/afisha-events/afisha/internal/application/event"
	"github.com/afisha-events/afisha/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func clampPage(from, size int) (int, int) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return from, size
}

func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) ListByInitiator(ctx context.Context, initiatorID uuid.UUID, from, size int) ([]*domain.Event, error) {
	from, size = clampPage(from, size)

	rows, err := r.pool.Query(ctx, `SELECT`+eventColumns+`
		FROM events
		WHERE initiator_id = $1
		ORDER BY created_on DESC
		LIMIT $2 OFFSET $3
	`, initiatorID, size, from)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// ListAdmin filters by initiators, states, categories and date range.
// Conditions are appended dynamically the same way for both listings.
func (r *Repository) ListAdmin(ctx context.Context, f event.AdminFilter) ([]*domain.Event, error) {
	from, size := clampPage(f.From, f.Size)

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Initiators) > 0 {
		conds = append(conds, "initiator_id = ANY("+arg(f.Initiators)+")")
	}
	if len(f.States) > 0 {
		states := make([]string, 0, len(f.States))
		for _, s := range f.States {
			states = append(states, string(s))
		}
		conds = append(conds, "state = ANY("+arg(states)+")")
	}
	if len(f.Categories) > 0 {
		conds = append(conds, "category = ANY("+arg(f.Categories)+")")
	}
	if f.RangeStart != nil {
		conds = append(conds, "event_date >= "+arg(*f.RangeStart))
	}
	if f.RangeEnd != nil {
		conds = append(conds, "event_date <= "+arg(*f.RangeEnd))
	}

	query := `SELECT` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_on DESC LIMIT " + arg(size) + " OFFSET " + arg(from)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// ListPublic returns published events matching the search filter. The
// caller defaults RangeStart to "now" so past events stay hidden.
func (r *Repository) ListPublic(ctx context.Context, f event.PublicFilter) ([]*domain.Event, error) {
	from, size := clampPage(f.From, f.Size)

	conds := []string{"state = 'PUBLISHED'"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if text := strings.TrimSpace(f.Text); text != "" {
		p := arg("%" + strings.ToLower(text) + "%")
		conds = append(conds, "(LOWER(annotation) LIKE "+p+" OR LOWER(description) LIKE "+p+")")
	}
	if len(f.Categories) > 0 {
		conds = append(conds, "category = ANY("+arg(f.Categories)+")")
	}
	if f.Paid != nil {
		conds = append(conds, "paid = "+arg(*f.Paid))
	}
	if f.RangeStart != nil {
		conds = append(conds, "event_date >= "+arg(*f.RangeStart))
	}
	if f.RangeEnd != nil {
		conds = append(conds, "event_date <= "+arg(*f.RangeEnd))
	}
	if f.OnlyAvailable {
		conds = append(conds, "(participant_limit = 0 OR confirmed_requests < participant_limit)")
	}

	query := `SELECT` + eventColumns + ` FROM events WHERE ` + strings.Join(conds, " AND ") +
		" ORDER BY event_date ASC LIMIT " + arg(size) + " OFFSET " + arg(from)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}
