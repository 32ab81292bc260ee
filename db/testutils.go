package db

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testDb     *sqlx.DB
	testDbErr  error
	testDbOnce sync.Once
)

// GetDb returns a connection shared by the tests of the binary, with the schema applied.
// POSTGRES_URL is used when set, otherwise a container is started and left to the reaper.
func GetDb(t *testing.T) *sqlx.DB {
	t.Helper()

	testDbOnce.Do(func() {
		postgresURL := os.Getenv("POSTGRES_URL")
		if postgresURL == "" {
			_, postgresURL, testDbErr = StartPostgresContainer(context.Background())
			if testDbErr != nil {
				return
			}
		}

		testDb, testDbErr = sqlx.Open("postgres", postgresURL)
		if testDbErr != nil {
			return
		}

		testDbErr = InitializeDatabaseSchema(testDb)
	})
	require.NoError(t, testDbErr, "test database is not available")

	return testDb
}

// StartPostgresContainer starts a disposable Postgres and returns its connection string.
func StartPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:15.2-alpine"),
		postgres.WithDatabase("walletpass"),
		postgres.WithUsername("walletpass"),
		postgres.WithPassword("walletpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("could not start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable", "application_name=walletpass-test")
	if err != nil {
		return container, "", fmt.Errorf("could not get postgres connection string: %w", err)
	}

	return container, connStr, nil
}
