package adaptor

import (
	"errors"
	"net/http"
	"strings"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Event   *EventHandler
	Order   *OrderHandler
	Payment *PaymentHandler
	Ticket  *TicketHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		User:    NewUserHandler(service.User, log),
		Event:   NewEventHandler(service.Event, log),
		Order:   NewOrderHandler(service.Order, log),
		Payment: NewPaymentHandler(service.Payment, log),
		Ticket:  NewTicketHandler(service.Ticket, log),
	}
}

// writeServiceError memetakan sentinel error dari service ke HTTP status
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	msg := clientMessage(err)

	switch {
	case errors.Is(err, utils.ErrValidation):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, msg, nil)

	case errors.Is(err, utils.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, msg)

	case errors.Is(err, utils.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, msg)

	case errors.Is(err, utils.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, msg)

	case errors.Is(err, utils.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, msg)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// clientMessage buang prefix sentinel ("not found: order not found" -> "order not found")
func clientMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{utils.ErrValidation, utils.ErrNotFound, utils.ErrConflict, utils.ErrForbidden, utils.ErrUnauthorized} {
		if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
			return rest
		}
	}
	return msg
}

// requireActor - route di belakang AuthSession selalu punya actor
func requireActor(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	actor, ok := usecase.ActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
	}
	return actor, ok
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination baca ?page=&per_page=, nilai invalid jatuh ke default
func parsePagination(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	return request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: min(utils.ParseInt(query.Get("per_page"), 10), 100),
	}
}
