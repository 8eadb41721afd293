package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*entity.Ticket, error)
	CountByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error)
	FindByCodeForUpdate(ctx context.Context, code string) (*entity.Ticket, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Ticket, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// MarkUsed returns utils.ErrConflict if the ticket was already used
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
}

type ticketRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewTicketRepository(db database.DBTX, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

const ticketColumns = `t.id, t.ticket_code, t.order_id, t.qr_payload, t.qr_code,
		       t.is_used, t.used_at, t.created_at`

func scanTicket(row scanner) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.TicketCode,
		&ticket.OrderID,
		&ticket.QRPayload,
		&ticket.QRCode,
		&ticket.IsUsed,
		&ticket.UsedAt,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	query := `
		INSERT INTO tickets (id, ticket_code, order_id, qr_payload, qr_code, is_used, used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		ticket.ID,
		ticket.TicketCode,
		ticket.OrderID,
		ticket.QRPayload,
		ticket.QRCode,
		ticket.IsUsed,
		ticket.UsedAt,
		ticket.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create ticket",
			zap.Error(err),
			zap.String("ticket_code", ticket.TicketCode),
			zap.String("order_id", ticket.OrderID.String()),
		)
		return fmt.Errorf("create ticket %s: %w", ticket.TicketCode, err)
	}

	return nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id = $1`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by ID",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return nil, fmt.Errorf("find ticket by ID %s: %w", id.String(), err)
	}

	return ticket, nil
}

// FindByCodeForUpdate mengunci row ticket sampai transaksi selesai
func (r *ticketRepository) FindByCodeForUpdate(ctx context.Context, code string) (*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.ticket_code = $1 FOR UPDATE`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by code",
			zap.Error(err),
			zap.String("ticket_code", code),
		)
		return nil, fmt.Errorf("find ticket by code %s: %w", code, err)
	}

	return ticket, nil
}

func (r *ticketRepository) findMany(ctx context.Context, query string, args ...any) ([]*entity.Ticket, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query tickets", zap.Error(err))
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*entity.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket rows: %w", err)
	}

	return tickets, nil
}

func (r *ticketRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*entity.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets t
		WHERE t.order_id = $1
		ORDER BY t.created_at, t.ticket_code
	`
	return r.findMany(ctx, query, orderID)
}

func (r *ticketRepository) CountByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE order_id = $1`, orderID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count tickets for order",
			zap.Error(err),
			zap.String("order_id", orderID.String()),
		)
		return 0, fmt.Errorf("count tickets for order %s: %w", orderID.String(), err)
	}
	return count, nil
}

func (r *ticketRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets t
		JOIN orders o ON o.id = t.order_id
		WHERE o.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.findMany(ctx, query, userID, limit, offset)
}

func (r *ticketRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM tickets t
		JOIN orders o ON o.id = t.order_id
		WHERE o.user_id = $1
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count user tickets",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count tickets for user %s: %w", userID.String(), err)
	}
	return count, nil
}

func (r *ticketRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	query := `
		UPDATE tickets
		SET is_used = true, used_at = $2
		WHERE id = $1 AND is_used = false
	`

	result, err := r.db.Exec(ctx, query, id, usedAt)
	if err != nil {
		r.log.Error("Failed to mark ticket used",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return fmt.Errorf("mark ticket %s used: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: ticket %s has already been used", utils.ErrConflict, id.String())
	}

	return nil
}
