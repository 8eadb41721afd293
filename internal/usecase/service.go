package usecase

import (
	"context"

	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/cache"
	"event-ticketing/pkg/events"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

// QREncoder renders a ticket payload to a PNG image
type QREncoder interface {
	Encode(payload string) ([]byte, error)
}

// MediaStore persists uploaded and generated files; paths are relative to the media root
type MediaStore interface {
	Save(ctx context.Context, dir, name string, data []byte) (string, error)
	Remove(ctx context.Context, rel string) error
	URL(rel string) string
}

// Dependencies groups the infrastructure shared by the workflow services
type Dependencies struct {
	Cache     cache.StatusCache
	Publisher events.Publisher
	QR        QREncoder
	Media     MediaStore
}

type Service struct {
	Auth    AuthService
	User    UserService
	Event   EventService
	Order   OrderService
	Payment PaymentService
	Ticket  TicketService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger, deps Dependencies) *Service {
	if deps.Cache == nil {
		deps.Cache = cache.NopStatusCache{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}

	issuer := newTicketIssuer(deps.QR, deps.Media, log)
	workflow := newOrderWorkflow(repo, issuer, deps.Cache, deps.Publisher, log)

	return &Service{
		Auth:    NewAuthService(repo, config, log),
		User:    NewUserService(repo.User, log),
		Event:   NewEventService(repo, log),
		Order:   NewOrderService(repo, workflow, deps.Media, log),
		Payment: NewPaymentService(repo, workflow, deps.Media, log),
		Ticket:  NewTicketService(repo, deps.Media, deps.Publisher, log),
	}
}
