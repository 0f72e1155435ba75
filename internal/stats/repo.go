package stats

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) SaveHit(ctx context.Context, h EndpointHit) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO endpoint_hits (app, uri, ip, hit_at)
VALUES ($1, $2, $3, $4)
`, h.App, h.URI, h.IP, h.Timestamp)
	return err
}

// GetStats aggregates hits per app/uri over [start, end]. With unique set,
// each ip counts once per uri. An empty uris slice means every uri.
func (r *Repo) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error) {
	counter := "COUNT(ip)"
	if unique {
		counter = "COUNT(DISTINCT ip)"
	}

	args := []any{start, end}
	conds := []string{"hit_at BETWEEN $1 AND $2"}
	if len(uris) > 0 {
		placeholders := make([]string, len(uris))
		for i, u := range uris {
			args = append(args, u)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conds = append(conds, "uri IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := fmt.Sprintf(`
SELECT app, uri, %s AS hits
FROM endpoint_hits
WHERE %s
GROUP BY app, uri
ORDER BY hits DESC
`, counter, strings.Join(conds, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ViewStats, 0)
	for rows.Next() {
		var s ViewStats
		if err := rows.Scan(&s.App, &s.URI, &s.Hits); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
