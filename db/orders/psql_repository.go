package orders

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

// StoreCheckout stores the order with its items and attendees and publishes CheckoutCompleted
// in the same transaction. A checkout that was already stored is ignored and created is false.
func (r *PostgresRepository) StoreCheckout(ctx context.Context, checkout entity.Checkout) (created bool, err error) {
	if checkout.Order.CreatedAt.IsZero() {
		checkout.Order.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			err = errors.Join(err, rollbackErr)
			return
		}
		err = tx.Commit()
	}()

	res, err := tx.NamedExecContext(ctx, `
		INSERT INTO orders (order_id, status, created_at)
		VALUES (:order_id, :status, :created_at)
		ON CONFLICT DO NOTHING -- ignore if already exists
	`, checkout.Order)
	if err != nil {
		return false, fmt.Errorf("could not store order %s: %w", checkout.Order.OrderID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	for _, item := range checkout.Items {
		item.OrderID = checkout.Order.OrderID
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO order_items (order_id, item_id, event_id)
			VALUES (:order_id, :item_id, :event_id)
			ON CONFLICT DO NOTHING
		`, item)
		if err != nil {
			return false, fmt.Errorf("could not store item %s: %w", item.ItemID, err)
		}
	}

	for _, attendee := range checkout.Attendees {
		attendee.OrderID = checkout.Order.OrderID
		if attendee.CreatedAt.IsZero() {
			attendee.CreatedAt = checkout.Order.CreatedAt
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO attendees
				(attendee_id, order_id, event_id, ticket_id, first_name, last_name, name, qr_code, created_at)
			VALUES
				(:attendee_id, :order_id, :event_id, :ticket_id, :first_name, :last_name, :name, :qr_code, :created_at)
			ON CONFLICT DO NOTHING
		`, attendee)
		if err != nil {
			return false, fmt.Errorf("could not store attendee %s: %w", attendee.AttendeeID, err)
		}
	}

	eventBus, err := outbox.NewEventBusForTx(ctx, tx)
	if err != nil {
		return false, err
	}

	err = eventBus.Publish(ctx, entity.CheckoutCompleted{
		Header:  entity.NewEventHeaderWithIdempotencyKey("checkout-" + checkout.Order.OrderID),
		OrderID: checkout.Order.OrderID,
	})
	if err != nil {
		return false, fmt.Errorf("could not publish CheckoutCompleted: %w", err)
	}

	return true, nil
}

func (r *PostgresRepository) Get(ctx context.Context, orderID string) (entity.Order, error) {
	var order entity.Order
	err := r.db.GetContext(ctx, &order, `
		SELECT order_id, status, created_at, passes_processed_at
		FROM orders
		WHERE order_id = $1
	`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Order{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.Order{}, fmt.Errorf("could not get order %s: %w", orderID, err)
	}

	return order, nil
}

func (r *PostgresRepository) Items(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT order_id, item_id, event_id
		FROM order_items
		WHERE order_id = $1
		ORDER BY item_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("could not get items of order %s: %w", orderID, err)
	}

	return items, nil
}

func (r *PostgresRepository) Attendees(ctx context.Context, orderID string) ([]entity.Attendee, error) {
	var attendees []entity.Attendee
	err := r.db.SelectContext(ctx, &attendees, `
		SELECT attendee_id, order_id, event_id, ticket_id, first_name, last_name, name, qr_code, created_at
		FROM attendees
		WHERE order_id = $1
		ORDER BY created_at, attendee_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("could not get attendees of order %s: %w", orderID, err)
	}

	return attendees, nil
}

// UpdateStatus sets the order status. Moving to completed publishes OrderStatusCompleted
// in the same transaction.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID, status string) (err error) {
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

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $2
		WHERE order_id = $1
	`, orderID, status)
	if err != nil {
		return fmt.Errorf("could not update status of order %s: %w", orderID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return entity.ErrNotFound
	}

	if status != entity.StatusCompleted {
		return nil
	}

	eventBus, err := outbox.NewEventBusForTx(ctx, tx)
	if err != nil {
		return err
	}

	err = eventBus.Publish(ctx, entity.OrderStatusCompleted{
		Header:  entity.NewEventHeaderWithIdempotencyKey("order-completed-" + orderID),
		OrderID: orderID,
	})
	if err != nil {
		return fmt.Errorf("could not publish OrderStatusCompleted: %w", err)
	}

	return nil
}

// MarkPassesProcessed sets the thank-you processed flag. It reports false when the flag was
// already set.
func (r *PostgresRepository) MarkPassesProcessed(ctx context.Context, orderID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET passes_processed_at = NOW()
		WHERE order_id = $1 AND passes_processed_at IS NULL
	`, orderID)
	if err != nil {
		return false, fmt.Errorf("could not mark order %s as processed: %w", orderID, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// MostRecentWithTickets returns the latest order that has at least one ticket line.
func (r *PostgresRepository) MostRecentWithTickets(ctx context.Context) (entity.Order, error) {
	var order entity.Order
	err := r.db.GetContext(ctx, &order, `
		SELECT o.order_id, o.status, o.created_at, o.passes_processed_at
		FROM orders o
		WHERE EXISTS (
			SELECT 1 FROM order_items i WHERE i.order_id = o.order_id AND i.event_id <> ''
		)
		ORDER BY o.created_at DESC
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Order{}, entity.ErrNotFound
	}
	if err != nil {
		return entity.Order{}, fmt.Errorf("could not get most recent order: %w", err)
	}

	return order, nil
}
