package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Open connects to Postgres with every query traced.
func Open(postgresURL string) (*sqlx.DB, error) {
	sqlDB, err := otelsql.Open("postgres", postgresURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("could not open postgres connection: %w", err)
	}

	return sqlx.NewDb(sqlDB, "postgres"), nil
}
