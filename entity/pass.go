package entity

import "time"

// OrderLevelAttendeeID marks the order-level pass record.
const OrderLevelAttendeeID = ""

type PassRecord struct {
	OrderID            string    `json:"order_id" db:"order_id"`
	AttendeeID         string    `json:"attendee_id" db:"attendee_id"`
	PassURL            string    `json:"pass_url" db:"pass_url"`
	SerialNumber       string    `json:"serial_number,omitempty" db:"serial_number"`
	HashedSerialNumber string    `json:"hashed_serial_number,omitempty" db:"hashed_serial_number"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

type CreatePassRequest struct {
	TemplateHash string            `json:"templateHash"`
	ClientHash   string            `json:"clientHash"`
	SerialNumber string            `json:"serialNumber"`
	Fields       map[string]string `json:"fields"`
}

// Redacted returns a copy of the request safe to log.
func (r CreatePassRequest) Redacted() CreatePassRequest {
	r.TemplateHash = redact(r.TemplateHash)
	r.ClientHash = redact(r.ClientHash)
	return r
}

func redact(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}

type CreatePassResponse struct {
	PassURL            string
	SerialNumber       string
	HashedSerialNumber string
}

type VerifyResult struct {
	OK           bool           `json:"ok"`
	Message      string         `json:"message"`
	TemplateInfo map[string]any `json:"template_info,omitempty"`
}
