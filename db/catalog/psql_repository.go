package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"walletpass/entity"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	if db == nil {
		panic("db is nil")
	}

	return &PostgresRepository{db: db}
}

// StoreEvent upserts the event, so edits made upstream are visible on the next extraction.
func (r *PostgresRepository) StoreEvent(ctx context.Context, event entity.Event) error {
	if event.Locations == nil {
		event.Locations = []string{}
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO events_catalog
			(event_id, title, excerpt, content, venue, locations, start_date, start_time, end_date, end_time)
		VALUES
			(:event_id, :title, :excerpt, :content, :venue, :locations, :start_date, :start_time, :end_date, :end_time)
		ON CONFLICT (event_id) DO UPDATE SET
			title = EXCLUDED.title,
			excerpt = EXCLUDED.excerpt,
			content = EXCLUDED.content,
			venue = EXCLUDED.venue,
			locations = EXCLUDED.locations,
			start_date = EXCLUDED.start_date,
			start_time = EXCLUDED.start_time,
			end_date = EXCLUDED.end_date,
			end_time = EXCLUDED.end_time
	`, event)
	if err != nil {
		return fmt.Errorf("could not store event %s: %w", event.EventID, err)
	}

	return nil
}

func (r *PostgresRepository) GetEvent(ctx context.Context, eventID string) (entity.Event, error) {
	var event entity.Event
	err := r.db.GetContext(ctx, &event, `
		SELECT event_id, title, excerpt, content, venue, locations, start_date, start_time, end_date, end_time
		FROM events_catalog
		WHERE event_id = $1
	`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Event{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.Event{}, fmt.Errorf("could not get event %s: %w", eventID, err)
	}

	return event, nil
}

func (r *PostgresRepository) StoreTicketType(ctx context.Context, ticketType entity.TicketType) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO ticket_types (ticket_id, title)
		VALUES (:ticket_id, :title)
		ON CONFLICT (ticket_id) DO UPDATE SET title = EXCLUDED.title
	`, ticketType)
	if err != nil {
		return fmt.Errorf("could not store ticket type %s: %w", ticketType.TicketID, err)
	}

	return nil
}

func (r *PostgresRepository) GetTicketType(ctx context.Context, ticketID string) (entity.TicketType, error) {
	var ticketType entity.TicketType
	err := r.db.GetContext(ctx, &ticketType, `
		SELECT ticket_id, title
		FROM ticket_types
		WHERE ticket_id = $1
	`, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.TicketType{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.TicketType{}, fmt.Errorf("could not get ticket type %s: %w", ticketID, err)
	}

	return ticketType, nil
}
