package entity

import (
	"time"

	"github.com/google/uuid"
)

type Ticket struct {
	BaseSimple
	TicketCode string     `db:"ticket_code"`
	OrderID    uuid.UUID  `db:"order_id"`
	QRPayload  string     `db:"qr_payload"`
	QRCode     *string    `db:"qr_code"` // path relatif di media store
	IsUsed     bool       `db:"is_used"`
	UsedAt     *time.Time `db:"used_at"`
}

// QRPayload is the JSON document encoded into each ticket's QR image.
type QRPayload struct {
	TicketID string `json:"ticket_id"`
	EventID  string `json:"event_id"`
	UserID   string `json:"user_id"`
	OrderID  string `json:"order_id"` // order code, bukan UUID
}
