package wire

import (
	"event-ticketing/internal/adaptor"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireOrder(r chi.Router, orderHandler *adaptor.OrderHandler, repo *repository.Repository, log *zap.Logger) {
	// ==================== PROTECTED ROUTES ====================
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/", orderHandler.CreateOrder)
		r.Get("/", orderHandler.GetMyOrders)
		r.Get("/{id}", orderHandler.GetOrder)

		// admin dicek di service: status transition butuh order yang sudah di-lock
		r.Put("/{id}/status", orderHandler.UpdateStatus)

		r.Get("/code/{code}/status", orderHandler.GetStatus)
		r.Get("/code/{code}/payment-status", orderHandler.GetPaymentStatus)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/orders", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		r.Get("/", orderHandler.GetOrdersByStatus)
		r.Get("/{id}", orderHandler.GetOrderDetail)
		r.Post("/{id}/approve", orderHandler.ApproveOrder)
		r.Post("/{id}/reject", orderHandler.RejectOrder)
	})
}
