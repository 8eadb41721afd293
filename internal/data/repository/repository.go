package repository

import (
	"event-ticketing/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User                UserRepository
	Session             SessionRepository
	Event               EventRepository
	Order               OrderRepository
	Ticket              TicketRepository
	PaymentConfirmation PaymentConfirmationRepository
	PaymentMethod       PaymentMethodRepository

	// Tx runs a unit of work against transaction-scoped copies of the repositories above
	Tx Transactor
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepositorySet(db, log)
	repo.Tx = NewTransactor(db, log)
	return repo
}

func newRepositorySet(db database.DBTX, log *zap.Logger) *Repository {
	return &Repository{
		User:                NewUserRepository(db, log),
		Session:             NewSessionRepository(db, log),
		Event:               NewEventRepository(db, log),
		Order:               NewOrderRepository(db, log),
		Ticket:              NewTicketRepository(db, log),
		PaymentConfirmation: NewPaymentConfirmationRepository(db, log),
		PaymentMethod:       NewPaymentMethodRepository(db, log),
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}
