package stats

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestRepo_SaveHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewRepo(db)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO endpoint_hits").
		WithArgs("afisha-main", "/events/abc", "10.0.0.7", ts).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.SaveHit(context.Background(), EndpointHit{
		App: "afisha-main", URI: "/events/abc", IP: "10.0.0.7", Timestamp: ts,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_GetStats(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	t.Run("all_uris_non_unique", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"app", "uri", "hits"}).
			AddRow("afisha-main", "/events/a", int64(12)).
			AddRow("afisha-main", "/events/b", int64(3))

		mock.ExpectQuery(`SELECT app, uri, COUNT\(ip\) AS hits`).
			WithArgs(start, end).
			WillReturnRows(rows)

		out, err := NewRepo(db).GetStats(context.Background(), start, end, nil, false)
		assert.NoError(t, err)
		assert.Len(t, out, 2)
		assert.Equal(t, int64(12), out[0].Hits)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique_with_uri_filter", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"app", "uri", "hits"}).
			AddRow("afisha-main", "/events/a", int64(4))

		mock.ExpectQuery(`SELECT app, uri, COUNT\(DISTINCT ip\) AS hits`).
			WithArgs(start, end, "/events/a").
			WillReturnRows(rows)

		out, err := NewRepo(db).GetStats(context.Background(), start, end, []string{"/events/a"}, true)
		assert.NoError(t, err)
		assert.Len(t, out, 1)
		assert.Equal(t, int64(4), out[0].Hits)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no_rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT app, uri, COUNT\(ip\) AS hits`).
			WithArgs(start, end).
			WillReturnRows(sqlmock.NewRows([]string{"app", "uri", "hits"}))

		out, err := NewRepo(db).GetStats(context.Background(), start, end, nil, false)
		assert.NoError(t, err)
		assert.Empty(t, out)
		assert.NotNil(t, out)
	})
}
