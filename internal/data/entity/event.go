package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Event struct {
	BaseNoDelete
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Date        time.Time       `db:"date"`
	Price       decimal.Decimal `db:"price"` // NUMERIC(10,2), >= 0
	ImageURL    *string         `db:"image_url"`
	Location    string          `db:"location"`
	OrganizerID uuid.UUID       `db:"organizer_id"`
	IsActive    bool            `db:"is_active"`
}
