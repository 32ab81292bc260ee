package entity

// TicketData is assembled per attendee and never persisted as a whole.
type TicketData struct {
	EventID          string `json:"event_id"`
	EventTitle       string `json:"event_title"`
	EventDate        string `json:"event_date"`
	EventLocation    string `json:"event_location"`
	EventDescription string `json:"event_description"`
	AttendeeID       string `json:"attendee_id"`
	AttendeeName     string `json:"attendee_name"`
	TicketType       string `json:"ticket_type"`
	PurchaseDate     string `json:"purchase_date"`
	QRCode           string `json:"qr_code"`
}

func (t TicketData) IsValid() bool {
	return t.EventID != "" && t.AttendeeID != ""
}
