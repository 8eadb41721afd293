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

type PaymentConfirmationRepository interface {
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*entity.PaymentConfirmation, error)
	// GetOrCreate returns the single confirmation of an order, inserting an empty one first if needed
	GetOrCreate(ctx context.Context, orderID uuid.UUID, now time.Time) (*entity.PaymentConfirmation, error)
	Update(ctx context.Context, pc *entity.PaymentConfirmation) error
}

type paymentConfirmationRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewPaymentConfirmationRepository(db database.DBTX, log *zap.Logger) PaymentConfirmationRepository {
	return &paymentConfirmationRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment_confirmation")),
	}
}

func (r *paymentConfirmationRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*entity.PaymentConfirmation, error) {
	query := `
		SELECT id, order_id, confirmed_by, transaction_id, payment_screenshot,
		       confirmation_notes, created_at, updated_at
		FROM payment_confirmations
		WHERE order_id = $1
	`

	var pc entity.PaymentConfirmation
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&pc.ID,
		&pc.OrderID,
		&pc.ConfirmedBy,
		&pc.TransactionID,
		&pc.PaymentScreenshot,
		&pc.ConfirmationNotes,
		&pc.CreatedAt,
		&pc.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment confirmation",
			zap.Error(err),
			zap.String("order_id", orderID.String()),
		)
		return nil, fmt.Errorf("find payment confirmation for order %s: %w", orderID.String(), err)
	}

	return &pc, nil
}

func (r *paymentConfirmationRepository) GetOrCreate(ctx context.Context, orderID uuid.UUID, now time.Time) (*entity.PaymentConfirmation, error) {
	query := `
		INSERT INTO payment_confirmations (id, order_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (order_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, utils.GenerateUUID(), orderID, now); err != nil {
		r.log.Error("Failed to create payment confirmation",
			zap.Error(err),
			zap.String("order_id", orderID.String()),
		)
		return nil, fmt.Errorf("create payment confirmation for order %s: %w", orderID.String(), err)
	}

	pc, err := r.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if pc == nil {
		return nil, fmt.Errorf("payment confirmation for order %s vanished after insert", orderID.String())
	}
	return pc, nil
}

func (r *paymentConfirmationRepository) Update(ctx context.Context, pc *entity.PaymentConfirmation) error {
	query := `
		UPDATE payment_confirmations
		SET confirmed_by = $2, transaction_id = $3, payment_screenshot = $4,
		    confirmation_notes = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		pc.ID,
		pc.ConfirmedBy,
		pc.TransactionID,
		pc.PaymentScreenshot,
		pc.ConfirmationNotes,
		pc.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update payment confirmation",
			zap.Error(err),
			zap.String("payment_confirmation_id", pc.ID.String()),
		)
		return fmt.Errorf("update payment confirmation %s: %w", pc.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("payment confirmation %s not found", pc.ID.String())
	}

	return nil
}
