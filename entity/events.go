package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

type CheckoutCompleted struct {
	Header  EventHeader `json:"header"`
	OrderID string      `json:"order_id"`
}

type OrderStatusCompleted struct {
	Header  EventHeader `json:"header"`
	OrderID string      `json:"order_id"`
}

type ThankYouPageViewed struct {
	Header  EventHeader `json:"header"`
	OrderID string      `json:"order_id"`
}

type DelayedRecheckDue struct {
	Header  EventHeader `json:"header"`
	OrderID string      `json:"order_id"`
}

type TicketDataExtracted struct {
	Header     EventHeader `json:"header"`
	OrderID    string      `json:"order_id"`
	TicketData TicketData  `json:"ticket_data"`
}

type PassCreated struct {
	Header       EventHeader `json:"header"`
	OrderID      string      `json:"order_id"`
	AttendeeID   string      `json:"attendee_id"`
	PassURL      string      `json:"pass_url"`
	SerialNumber string      `json:"serial_number"`
}

type PassCreationFailed struct {
	Header     EventHeader `json:"header"`
	OrderID    string      `json:"order_id"`
	AttendeeID string      `json:"attendee_id"`
	ErrorKind  string      `json:"error_kind"`
	Reason     string      `json:"reason"`
}
