package entity

import (
	"time"

	"github.com/lib/pq"
)

// Event is a catalog entry of the host ticketing platform.
type Event struct {
	EventID   string         `json:"event_id" db:"event_id"`
	Title     string         `json:"title" db:"title"`
	Excerpt   string         `json:"excerpt" db:"excerpt"`
	Content   string         `json:"content" db:"content"`
	Venue     string         `json:"venue" db:"venue"`
	Locations pq.StringArray `json:"locations" db:"locations"`
	StartDate string         `json:"start_date" db:"start_date"`
	StartTime string         `json:"start_time" db:"start_time"`
	EndDate   string         `json:"end_date" db:"end_date"`
	EndTime   string         `json:"end_time" db:"end_time"`
}

type TicketType struct {
	TicketID string `json:"ticket_id" db:"ticket_id"`
	Title    string `json:"title" db:"title"`
}

type Order struct {
	OrderID           string     `json:"order_id" db:"order_id"`
	Status            string     `json:"status" db:"status"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	PassesProcessedAt *time.Time `json:"passes_processed_at,omitempty" db:"passes_processed_at"`
}

// OrderItem is a checkout line; EventID is empty for lines that are not tickets.
type OrderItem struct {
	OrderID string `json:"order_id" db:"order_id"`
	ItemID  string `json:"item_id" db:"item_id"`
	EventID string `json:"event_id" db:"event_id"`
}

type Attendee struct {
	AttendeeID string    `json:"attendee_id" db:"attendee_id"`
	OrderID    string    `json:"order_id" db:"order_id"`
	EventID    string    `json:"event_id" db:"event_id"`
	TicketID   string    `json:"ticket_id" db:"ticket_id"`
	FirstName  string    `json:"first_name" db:"first_name"`
	LastName   string    `json:"last_name" db:"last_name"`
	Name       string    `json:"name" db:"name"`
	QRCode     string    `json:"qr_code" db:"qr_code"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Checkout is what the host platform submits when a customer completes a purchase.
type Checkout struct {
	Order     Order
	Items     []OrderItem
	Attendees []Attendee
}

const StatusCompleted = "completed"
