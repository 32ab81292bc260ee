package passes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"walletpass/entity"
	"walletpass/pubsub/outbox"
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

// Store writes the pass under the attendee and under the order, and publishes PassCreated,
// all in one transaction. An existing record for the same key is overwritten.
func (r *PostgresRepository) Store(ctx context.Context, record entity.PassRecord) (err error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	orderLevel := entity.PassRecord{
		OrderID:    record.OrderID,
		AttendeeID: entity.OrderLevelAttendeeID,
		PassURL:    record.PassURL,
		CreatedAt:  record.CreatedAt,
	}

	for _, rec := range []entity.PassRecord{orderLevel, record} {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO pass_records
				(order_id, attendee_id, pass_url, serial_number, hashed_serial_number, created_at)
			VALUES
				(:order_id, :attendee_id, :pass_url, :serial_number, :hashed_serial_number, :created_at)
			ON CONFLICT (order_id, attendee_id) DO UPDATE SET
				pass_url = EXCLUDED.pass_url,
				serial_number = EXCLUDED.serial_number,
				hashed_serial_number = EXCLUDED.hashed_serial_number,
				created_at = EXCLUDED.created_at
		`, rec)
		if err != nil {
			return fmt.Errorf("could not store pass record for order %s attendee %q: %w", rec.OrderID, rec.AttendeeID, err)
		}
	}

	eventBus, err := outbox.NewEventBusForTx(ctx, tx)
	if err != nil {
		return err
	}

	err = eventBus.Publish(ctx, entity.PassCreated{
		Header:       entity.NewEventHeader(),
		OrderID:      record.OrderID,
		AttendeeID:   record.AttendeeID,
		PassURL:      record.PassURL,
		SerialNumber: record.SerialNumber,
	})
	if err != nil {
		return fmt.Errorf("could not publish PassCreated: %w", err)
	}

	return nil
}

// FindPassURL looks up the attendee's pass. The order-level pass is used only for orders
// that have no attendee-scoped passes yet, as stored before passes were kept per attendee.
func (r *PostgresRepository) FindPassURL(ctx context.Context, orderID, attendeeID string) (string, error) {
	var passURL string
	err := r.db.GetContext(ctx, &passURL, `
		SELECT pass_url
		FROM pass_records
		WHERE order_id = $1 AND (
			attendee_id = $2
			OR (
				attendee_id = ''
				AND NOT EXISTS (
					SELECT 1 FROM pass_records WHERE order_id = $1 AND attendee_id <> ''
				)
			)
		)
		ORDER BY attendee_id = $2 DESC
		LIMIT 1
	`, orderID, attendeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", entity.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("could not find pass for order %s attendee %s: %w", orderID, attendeeID, err)
	}

	return passURL, nil
}

func (r *PostgresRepository) FindOrderPassURL(ctx context.Context, orderID string) (string, error) {
	return r.FindPassURL(ctx, orderID, entity.OrderLevelAttendeeID)
}

// FindByOrder returns the attendee-scoped records of the order.
func (r *PostgresRepository) FindByOrder(ctx context.Context, orderID string) ([]entity.PassRecord, error) {
	records := []entity.PassRecord{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT order_id, attendee_id, pass_url, serial_number, hashed_serial_number, created_at
		FROM pass_records
		WHERE order_id = $1 AND attendee_id <> ''
		ORDER BY created_at, attendee_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("could not find passes of order %s: %w", orderID, err)
	}

	return records, nil
}
