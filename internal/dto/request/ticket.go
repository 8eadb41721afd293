package request

type ValidateTicketRequest struct {
	TicketID string `json:"ticket_id" validate:"required,max=40"`
}
