package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
)

type OrderAction string

const (
	OrderActionApprove OrderAction = "approve"
	OrderActionReject  OrderAction = "reject"
)

// orderTransitions is the complete order state machine; approved and rejected are terminal.
var orderTransitions = map[OrderStatus]map[OrderAction]OrderStatus{
	OrderStatusPending: {
		OrderActionApprove: OrderStatusApproved,
		OrderActionReject:  OrderStatusRejected,
	},
	OrderStatusApproved: {},
	OrderStatusRejected: {},
}

// Next returns the state reached by applying action, false if the pair is not in the table.
func (s OrderStatus) Next(action OrderAction) (OrderStatus, bool) {
	next, ok := orderTransitions[s][action]
	return next, ok
}

// ActionFor maps a requested target status to the action producing it.
func ActionFor(target OrderStatus) (OrderAction, bool) {
	switch target {
	case OrderStatusApproved:
		return OrderActionApprove, true
	case OrderStatusRejected:
		return OrderActionReject, true
	default:
		return "", false
	}
}

type PaymentChannel string

const (
	PaymentChannelCreditCard   PaymentChannel = "credit_card"
	PaymentChannelBankTransfer PaymentChannel = "bank_transfer"
	PaymentChannelMobileMoney  PaymentChannel = "mobile_money"
)

const (
	MinOrderQuantity = 1
	MaxOrderQuantity = 10
)

type Order struct {
	BaseNoDelete
	OrderCode          string          `db:"order_code"`
	UserID             uuid.UUID       `db:"user_id"`
	EventID            uuid.UUID       `db:"event_id"`
	Quantity           int             `db:"quantity"`
	TotalAmount        decimal.Decimal `db:"total_amount"`
	PaymentMethod      PaymentChannel  `db:"payment_method"`
	Status             OrderStatus     `db:"status"`
	PaymentReference   *string         `db:"payment_reference"`
	PaymentConfirmedAt *time.Time      `db:"payment_confirmed_at"`
	AdminNotes         *string         `db:"admin_notes"`
}
