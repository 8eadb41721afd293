package adaptor

import (
	"encoding/json"
	"net/http"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type TicketHandler struct {
	service usecase.TicketService
	log     *zap.Logger
}

func NewTicketHandler(service usecase.TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		log:     log.With(zap.String("handler", "ticket")),
	}
}

// GetMyTickets handles GET /api/tickets
func (h *TicketHandler) GetMyTickets(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req := parsePagination(r)
	tickets, err := h.service.ListMyTickets(r.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(w, err, "list tickets")
		return
	}

	utils.ResponseSuccess(w, "Tickets retrieved successfully", tickets)
}

// GetMyTicket handles GET /api/tickets/{id}
func (h *TicketHandler) GetMyTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	ticket, err := h.service.GetMyTicket(r.Context(), actor, id)
	if err != nil {
		h.handleServiceError(w, err, "get ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket retrieved successfully", ticket)
}

// ValidateTicket handles POST /api/admin/tickets/validate
func (h *TicketHandler) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.ValidateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	ticket, err := h.service.ValidateAndRedeem(r.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(w, err, "validate ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket validated successfully", ticket)
}

func (h *TicketHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	writeServiceError(w, h.log, err, operation)
}
