//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	pgrepo "github.com/afisha-events/afisha/internal/infrastructure/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const migrationsDir = "../../../migrations"

var sharedDSN string

func applyMigrations(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	entries, err := os.ReadDir(migrationsDir)
	require.NoError(t, err)

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	require.NotEmpty(t, files, "no migration files in %s", migrationsDir)
	sort.Strings(files)

	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err = pool.Exec(ctx, string(content))
		cancel()
		require.NoError(t, err, "apply migration %s", name)
	}
}

// setupRepo starts (once) a throwaway postgres container, applies the
// migrations, and hands back a clean repository.
func setupRepo(t *testing.T) (*pgrepo.Repository, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	if sharedDSN == "" {
		if _, err := testcontainers.NewDockerClientWithOpts(ctx); err != nil {
			t.Skipf("skipping integration test, docker unavailable: %v", err)
		}

		container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("afisha_test"),
			tcpostgres.WithUsername("testuser"),
			tcpostgres.WithPassword("testpass"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		require.NoError(t, err)

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
		sharedDSN = dsn
	}

	pool, err := pgxpool.New(ctx, sharedDSN)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applyMigrations(t, pool)

	_, err = pool.Exec(ctx, "TRUNCATE TABLE requests, outbox, events RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	return pgrepo.New(pool), pool
}
