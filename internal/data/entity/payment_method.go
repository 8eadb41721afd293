package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentMethodType string

const (
	PaymentMethodBank        PaymentMethodType = "bank"
	PaymentMethodMobileMoney PaymentMethodType = "mobile_money"
)

type PaymentMethod struct {
	ID            uuid.UUID         `db:"id"`
	Type          PaymentMethodType `db:"type"`
	Name          string            `db:"name"`
	AccountName   *string           `db:"account_name"`
	AccountNumber *string           `db:"account_number"`
	BankName      *string           `db:"bank_name"`
	Branch        *string           `db:"branch"`
	SortCode      *string           `db:"sort_code"`
	MomoNumber    *string           `db:"momo_number"`
	Network       *string           `db:"network"`
	IsActive      bool              `db:"is_active"`
	CreatedAt     time.Time         `db:"created_at"`
}
