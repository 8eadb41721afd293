package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type TicketResponse struct {
	ID        string              `json:"id"`
	TicketID  string              `json:"ticket_id"`
	QRCode    *string             `json:"qr_code"`
	IsUsed    bool                `json:"is_used"`
	UsedAt    *time.Time          `json:"used_at,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	Order     *TicketOrderSummary `json:"order,omitempty"`
}

type TicketOrderSummary struct {
	ID       string             `json:"id"`
	Status   entity.OrderStatus `json:"status"`
	Quantity int                `json:"quantity"`
	Event    *EventSummary      `json:"event,omitempty"`
}

// TicketToResponse - order/event boleh nil (dipakai nested di order response)
func TicketToResponse(ticket *entity.Ticket, qrURL *string, order *entity.Order, event *entity.Event) TicketResponse {
	resp := TicketResponse{
		ID:        ticket.ID.String(),
		TicketID:  ticket.TicketCode,
		QRCode:    qrURL,
		IsUsed:    ticket.IsUsed,
		UsedAt:    ticket.UsedAt,
		CreatedAt: ticket.CreatedAt,
	}

	if order != nil {
		resp.Order = &TicketOrderSummary{
			ID:       order.ID.String(),
			Status:   order.Status,
			Quantity: order.Quantity,
			Event:    EventToSummary(event),
		}
	}

	return resp
}
