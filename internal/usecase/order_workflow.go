package usecase

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/cache"
	"event-ticketing/pkg/events"
	"event-ticketing/pkg/metrics"
	"event-ticketing/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// orderWorkflow owns every write to an order: persist rules, the status
// state machine and ticket issuance on approval. Shared by the order and
// payment services.
type orderWorkflow struct {
	repo    *repository.Repository
	tickets *ticketIssuer
	cache   cache.StatusCache
	events  events.Publisher
	log     *zap.Logger
	now     func() time.Time
}

func newOrderWorkflow(
	repo *repository.Repository,
	tickets *ticketIssuer,
	statusCache cache.StatusCache,
	publisher events.Publisher,
	log *zap.Logger,
) *orderWorkflow {
	return &orderWorkflow{
		repo:    repo,
		tickets: tickets,
		cache:   statusCache,
		events:  publisher,
		log:     log.With(zap.String("service", "order_workflow")),
		now:     time.Now,
	}
}

// transitionResult is what a committed status change produced
type transitionResult struct {
	Order   *entity.Order
	From    entity.OrderStatus
	Tickets []*entity.Ticket
}

// persist menjalankan aturan simpan order: order code sekali saja, total
// dihitung ulang dari harga event saat ini, payment_confirmed_at diisi saat
// pertama kali approved. Tidak pernah membuat ticket.
func (w *orderWorkflow) persist(ctx context.Context, repo *repository.Repository, order *entity.Order, create bool) error {
	now := w.now()

	if order.OrderCode == "" {
		code, err := utils.GenerateOrderCode(now)
		if err != nil {
			return err
		}
		order.OrderCode = code
	}

	event, err := repo.Event.FindByID(ctx, order.EventID)
	if err != nil {
		return fmt.Errorf("load event price: %w", err)
	}
	if event == nil {
		return fmt.Errorf("%w: event not found", utils.ErrValidation)
	}
	// dicek ulang di dalam transaksi, event bisa dinonaktifkan setelah pengecekan awal
	if create && !event.IsActive {
		return fmt.Errorf("%w: event not found or inactive", utils.ErrValidation)
	}
	order.TotalAmount = event.Price.Mul(decimal.NewFromInt(int64(order.Quantity))).Round(2)

	if order.Status == entity.OrderStatusApproved && order.PaymentConfirmedAt == nil {
		confirmedAt := now
		order.PaymentConfirmedAt = &confirmedAt
	}

	order.UpdatedAt = now
	if create {
		order.CreatedAt = now
		return repo.Order.Create(ctx, order)
	}
	return repo.Order.Update(ctx, order)
}

// apply harus dipanggil di dalam transaksi dengan row order sudah di-lock
func (w *orderWorkflow) apply(ctx context.Context, repo *repository.Repository, order *entity.Order, target entity.OrderStatus, notes *string) (*transitionResult, error) {
	action, ok := entity.ActionFor(target)
	if !ok {
		return nil, fmt.Errorf("%w: status must be approved or rejected", utils.ErrValidation)
	}

	from := order.Status
	next, ok := from.Next(action)
	if !ok {
		return nil, fmt.Errorf("%w: order is already %s", utils.ErrConflict, from)
	}

	order.Status = next
	if notes != nil {
		order.AdminNotes = notes
	}

	if err := w.persist(ctx, repo, order, false); err != nil {
		return nil, fmt.Errorf("persist order %s: %w", order.OrderCode, err)
	}

	result := &transitionResult{Order: order, From: from}
	if next == entity.OrderStatusApproved {
		issued, err := w.tickets.Issue(ctx, repo, order)
		if err != nil {
			return nil, fmt.Errorf("issue tickets for %s: %w", order.OrderCode, err)
		}
		result.Tickets = issued
	}

	return result, nil
}

// runTransition membungkus fn dalam satu transaksi. Kalau transaksi gagal,
// file QR dari ticket yang sempat dibuat ikut dihapus.
func (w *orderWorkflow) runTransition(ctx context.Context, fn func(repo *repository.Repository) (*transitionResult, error)) (*transitionResult, error) {
	var result *transitionResult

	err := w.repo.Tx.WithinTx(ctx, func(repo *repository.Repository) error {
		var err error
		result, err = fn(repo)
		return err
	})
	if err != nil {
		if result != nil && len(result.Tickets) > 0 {
			w.tickets.Discard(ctx, result.Tickets)
		}
		return nil, err
	}

	w.afterCommit(ctx, result)
	return result, nil
}

// afterCommit: cache invalidation, metrics and domain events; best effort
func (w *orderWorkflow) afterCommit(ctx context.Context, result *transitionResult) {
	order := result.Order

	if err := w.cache.Delete(ctx, order.OrderCode); err != nil {
		w.log.Warn("Failed to invalidate order status cache",
			zap.Error(err),
			zap.String("order_code", order.OrderCode),
		)
	}

	metrics.RecordOrderTransition(string(result.From), string(order.Status))
	if n := len(result.Tickets); n > 0 {
		metrics.RecordTicketsIssued(n)
	}

	eventType := events.EventOrderApproved
	if order.Status == entity.OrderStatusRejected {
		eventType = events.EventOrderRejected
	}

	ticketCodes := make([]string, len(result.Tickets))
	for i, t := range result.Tickets {
		ticketCodes[i] = t.TicketCode
	}

	w.publish(ctx, eventType, order.OrderCode, map[string]any{
		"order_id":     order.ID.String(),
		"order_code":   order.OrderCode,
		"user_id":      order.UserID.String(),
		"event_id":     order.EventID.String(),
		"from":         result.From,
		"status":       order.Status,
		"total_amount": order.TotalAmount.StringFixed(2),
		"tickets":      ticketCodes,
	})

	w.log.Info("Order status changed",
		zap.String("order_code", order.OrderCode),
		zap.String("from", string(result.From)),
		zap.String("to", string(order.Status)),
		zap.Int("tickets_issued", len(result.Tickets)),
	)
}

func (w *orderWorkflow) publish(ctx context.Context, eventType, orderCode string, payload any) {
	if err := w.events.Publish(ctx, eventType, orderCode, payload); err != nil {
		w.log.Warn("Failed to publish event",
			zap.Error(err),
			zap.String("event_type", eventType),
			zap.String("order_code", orderCode),
		)
	}
}
