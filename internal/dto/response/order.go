package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

// OrderResponse - "order_id" adalah order code (ORD...), "id" adalah UUID
type OrderResponse struct {
	ID                 string                `json:"id"`
	OrderID            string                `json:"order_id"`
	UserID             string                `json:"user_id"`
	Event              *EventSummary         `json:"event,omitempty"`
	Quantity           int                   `json:"quantity"`
	TotalAmount        string                `json:"total_amount"`
	PaymentMethod      entity.PaymentChannel `json:"payment_method"`
	Status             entity.OrderStatus    `json:"status"`
	PaymentReference   *string               `json:"payment_reference,omitempty"`
	AdminNotes         *string               `json:"admin_notes,omitempty"`
	PaymentConfirmedAt *time.Time            `json:"payment_confirmed_at,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	Tickets            []TicketResponse      `json:"tickets,omitempty"`
}

type AdminOrderListResponse struct {
	OrderResponse
	User         *UserResponse `json:"user,omitempty"`
	TicketsCount int64         `json:"tickets_count"`
}

type AdminOrderDetailResponse struct {
	OrderResponse
	User                *UserResponse                `json:"user,omitempty"`
	PaymentConfirmation *PaymentConfirmationResponse `json:"payment_confirmation"`
}

type OrderStatusResponse struct {
	OrderID       string                `json:"order_id"`
	Status        entity.OrderStatus    `json:"status"`
	TotalAmount   string                `json:"total_amount"`
	CreatedAt     time.Time             `json:"created_at"`
	PaymentMethod entity.PaymentChannel `json:"payment_method"`
	EventTitle    string                `json:"event_title"`
}

type PaymentStatusResponse struct {
	Order   OrderResponse      `json:"order"`
	Status  entity.OrderStatus `json:"status"`
	Message string             `json:"message"`
}

var paymentStatusMessages = map[entity.OrderStatus]string{
	entity.OrderStatusPending:  "Payment is being processed",
	entity.OrderStatusApproved: "Payment confirmed and tickets generated",
	entity.OrderStatusRejected: "Payment was rejected",
}

func PaymentStatusMessage(status entity.OrderStatus) string {
	if msg, ok := paymentStatusMessages[status]; ok {
		return msg
	}
	return "Unknown status"
}

func OrderToResponse(order *entity.Order, event *entity.Event, tickets []TicketResponse) OrderResponse {
	return OrderResponse{
		ID:                 order.ID.String(),
		OrderID:            order.OrderCode,
		UserID:             order.UserID.String(),
		Event:              EventToSummary(event),
		Quantity:           order.Quantity,
		TotalAmount:        order.TotalAmount.StringFixed(2),
		PaymentMethod:      order.PaymentMethod,
		Status:             order.Status,
		PaymentReference:   order.PaymentReference,
		AdminNotes:         order.AdminNotes,
		PaymentConfirmedAt: order.PaymentConfirmedAt,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		Tickets:            tickets,
	}
}

func OrderToStatusResponse(order *entity.Order, event *entity.Event) OrderStatusResponse {
	resp := OrderStatusResponse{
		OrderID:       order.OrderCode,
		Status:        order.Status,
		TotalAmount:   order.TotalAmount.StringFixed(2),
		CreatedAt:     order.CreatedAt,
		PaymentMethod: order.PaymentMethod,
	}
	if event != nil {
		resp.EventTitle = event.Title
	}
	return resp
}
