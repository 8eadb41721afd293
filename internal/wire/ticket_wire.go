package wire

import (
	"event-ticketing/internal/adaptor"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireTicket(r chi.Router, ticketHandler *adaptor.TicketHandler, repo *repository.Repository, log *zap.Logger) {
	auth := middleware.AuthSession(repo.Session, repo.User, log)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Get("/api/tickets", ticketHandler.GetMyTickets)
		r.Get("/api/tickets/{id}", ticketHandler.GetMyTicket)
	})

	// ==================== ADMIN ROUTES ====================
	r.With(auth, middleware.Admin(log)).Post("/api/admin/tickets/validate", ticketHandler.ValidateTicket)
}
