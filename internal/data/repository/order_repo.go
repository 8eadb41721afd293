package repository

import (
	"context"
	"errors"
	"fmt"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	FindByCode(ctx context.Context, code string) (*entity.Order, error)

	// *ForUpdate variants take a row lock; only meaningful inside Transactor.WithinTx
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	FindByCodeForUpdate(ctx context.Context, code string) (*entity.Order, error)

	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Order, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindByStatus(ctx context.Context, status entity.OrderStatus, limit, offset int) ([]*entity.Order, error)
	CountByStatus(ctx context.Context, status entity.OrderStatus) (int64, error)
}

type orderRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewOrderRepository(db database.DBTX, log *zap.Logger) OrderRepository {
	return &orderRepository{
		db:  db,
		log: log.With(zap.String("repository", "order")),
	}
}

const orderColumns = `id, order_code, user_id, event_id, quantity, total_amount, payment_method,
		       status, payment_reference, payment_confirmed_at, admin_notes, created_at, updated_at`

func scanOrder(row scanner) (*entity.Order, error) {
	var order entity.Order
	err := row.Scan(
		&order.ID,
		&order.OrderCode,
		&order.UserID,
		&order.EventID,
		&order.Quantity,
		&order.TotalAmount,
		&order.PaymentMethod,
		&order.Status,
		&order.PaymentReference,
		&order.PaymentConfirmedAt,
		&order.AdminNotes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (id, order_code, user_id, event_id, quantity, total_amount,
		                    payment_method, status, payment_reference, payment_confirmed_at,
		                    admin_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		order.ID,
		order.OrderCode,
		order.UserID,
		order.EventID,
		order.Quantity,
		order.TotalAmount,
		order.PaymentMethod,
		order.Status,
		order.PaymentReference,
		order.PaymentConfirmedAt,
		order.AdminNotes,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create order",
			zap.Error(err),
			zap.String("order_code", order.OrderCode),
			zap.String("user_id", order.UserID.String()),
		)
		return fmt.Errorf("create order %s: %w", order.OrderCode, err)
	}

	return nil
}

// Update menulis ulang field yang boleh berubah; order_code tidak pernah di-update
func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders
		SET quantity = $2, total_amount = $3, payment_method = $4, status = $5,
		    payment_reference = $6, payment_confirmed_at = $7, admin_notes = $8,
		    updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		order.ID,
		order.Quantity,
		order.TotalAmount,
		order.PaymentMethod,
		order.Status,
		order.PaymentReference,
		order.PaymentConfirmedAt,
		order.AdminNotes,
		order.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update order",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
		)
		return fmt.Errorf("update order %s: %w", order.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", order.ID.String())
	}

	return nil
}

func (r *orderRepository) findOne(ctx context.Context, query string, arg any) (*entity.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find order",
			zap.Error(err),
			zap.Any("key", arg),
		)
		return nil, fmt.Errorf("find order %v: %w", arg, err)
	}
	return order, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *orderRepository) FindByCode(ctx context.Context, code string) (*entity.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_code = $1`, code)
}

func (r *orderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *orderRepository) FindByCodeForUpdate(ctx context.Context, code string) (*entity.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_code = $1 FOR UPDATE`, code)
}

func (r *orderRepository) findMany(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query orders", zap.Error(err))
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.log.Error("Failed to scan order row", zap.Error(err))
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.findMany(ctx, query, userID, limit, offset)
}

func (r *orderRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count user orders",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count orders for user %s: %w", userID.String(), err)
	}
	return count, nil
}

func (r *orderRepository) FindByStatus(ctx context.Context, status entity.OrderStatus, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.findMany(ctx, query, status, limit, offset)
}

func (r *orderRepository) CountByStatus(ctx context.Context, status entity.OrderStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status = $1`, status).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count orders by status",
			zap.Error(err),
			zap.String("status", string(status)),
		)
		return 0, fmt.Errorf("count orders with status %s: %w", status, err)
	}
	return count, nil
}
