package datalake

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"walletpass/db"
	"walletpass/entity"
)

type DataLake struct {
	db *sqlx.DB
}

func NewDataLake(db *sqlx.DB) DataLake {
	if db == nil {
		panic("db is nil")
	}

	return DataLake{db: db}
}

// StoreEvent appends the event. A redelivered event is ignored.
func (s DataLake) StoreEvent(ctx context.Context, event entity.DataLakeEvent) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO data_lake
			(event_id, published_at, event_name, order_id, correlation_id, event_payload)
		VALUES
			(:event_id, :published_at, :event_name, :order_id, :correlation_id, :event_payload)
	`, event)
	if db.IsUniqueViolation(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not store %s event %s in data lake: %w", event.Name, event.ID, err)
	}

	return nil
}

// GetEvents returns the matching events, oldest first.
func (s DataLake) GetEvents(ctx context.Context, query entity.DataLakeQuery) ([]entity.DataLakeEvent, error) {
	var (
		conditions []string
		args       []any
	)
	if query.Name != "" {
		args = append(args, query.Name)
		conditions = append(conditions, fmt.Sprintf("event_name = $%d", len(args)))
	}
	if query.OrderID != "" {
		args = append(args, query.OrderID)
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", len(args)))
	}

	sql := `
		SELECT event_id, published_at, event_name, order_id, correlation_id, event_payload
		FROM data_lake`
	if len(conditions) > 0 {
		sql += " WHERE " + strings.Join(conditions, " AND ")
	}
	sql += " ORDER BY published_at, event_id"

	events := []entity.DataLakeEvent{}
	if err := s.db.SelectContext(ctx, &events, sql, args...); err != nil {
		return nil, fmt.Errorf("could not get events from data lake: %w", err)
	}

	return events, nil
}
