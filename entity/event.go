package entity

import (
	"time"
)

// DataLakeEvent is a raw copy of an event published on the events topic, indexed by the order
// it concerns.
type DataLakeEvent struct {
	ID            string    `db:"event_id"`
	PublishedAt   time.Time `db:"published_at"`
	Name          string    `db:"event_name"`
	OrderID       string    `db:"order_id"`
	CorrelationID string    `db:"correlation_id"`
	Payload       []byte    `db:"event_payload"`
}

// DataLakeQuery filters data lake events. Empty fields match everything.
type DataLakeQuery struct {
	Name    string
	OrderID string
}
