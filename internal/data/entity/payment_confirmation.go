package entity

import "github.com/google/uuid"

type PaymentConfirmation struct {
	BaseNoDelete
	OrderID           uuid.UUID  `db:"order_id"`
	ConfirmedBy       *uuid.UUID `db:"confirmed_by"`
	TransactionID     *string    `db:"transaction_id"`
	PaymentScreenshot *string    `db:"payment_screenshot"`
	ConfirmationNotes *string    `db:"confirmation_notes"`
}
