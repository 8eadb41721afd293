package wire

import (
	"event-ticketing/internal/adaptor"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler, repo *repository.Repository, log *zap.Logger) {
	auth := middleware.AuthSession(repo.Session, repo.User, log)

	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/payment-methods", paymentHandler.GetPaymentMethods)

	// ==================== PROTECTED ROUTES ====================
	r.With(auth).Post("/api/payments/{code}/submit-confirmation", paymentHandler.SubmitConfirmation)

	// ==================== ADMIN ROUTES ====================
	r.With(auth, middleware.Admin(log)).Patch("/api/admin/payments/{code}/review-confirmation", paymentHandler.ReviewConfirmation)
}
