package request

import "github.com/shopspring/decimal"

type EventRequest struct {
	Title       string          `json:"title" validate:"required,min=1,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	ImageURL    *string         `json:"image_url,omitempty" validate:"omitempty,url"`
	Location    string          `json:"location" validate:"required,min=1,max=200"`
}

type EventUpdateRequest struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Date        *string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Price       *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	Location    *string          `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
	IsActive    *bool            `json:"is_active,omitempty"`
}
