package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/pkg/events"
	"event-ticketing/pkg/metrics"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TicketService interface {
	ListMyTickets(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error)
	GetMyTicket(ctx context.Context, actor Actor, ticketID uuid.UUID) (*response.TicketResponse, error)

	// Admin, dipakai di pintu masuk
	ValidateAndRedeem(ctx context.Context, actor Actor, req *request.ValidateTicketRequest) (*response.TicketResponse, error)
}

type ticketService struct {
	repo   *repository.Repository
	media  MediaStore
	events events.Publisher
	log    *zap.Logger
	now    func() time.Time
}

func NewTicketService(repo *repository.Repository, media MediaStore, publisher events.Publisher, log *zap.Logger) TicketService {
	return &ticketService{
		repo:   repo,
		media:  media,
		events: publisher,
		log:    log.With(zap.String("service", "ticket")),
		now:    time.Now,
	}
}

func (s *ticketService) ListMyTickets(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error) {
	normalizePage(req)

	tickets, err := s.repo.Ticket.FindByUserID(ctx, actor.UserID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list tickets", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	total, err := s.repo.Ticket.CountByUserID(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to count tickets", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, fmt.Errorf("count tickets: %w", err)
	}

	// ticket dalam satu order share order & event yang sama
	orders := make(map[uuid.UUID]*entity.Order)
	eventsByID := make(map[uuid.UUID]*entity.Event)

	items := make([]response.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		order, ok := orders[t.OrderID]
		if !ok {
			order, err = s.repo.Order.FindByID(ctx, t.OrderID)
			if err != nil {
				return nil, fmt.Errorf("load order of ticket %s: %w", t.TicketCode, err)
			}
			orders[t.OrderID] = order
		}

		var event *entity.Event
		if order != nil {
			event, ok = eventsByID[order.EventID]
			if !ok {
				event, err = s.repo.Event.FindByID(ctx, order.EventID)
				if err != nil {
					return nil, fmt.Errorf("load event of ticket %s: %w", t.TicketCode, err)
				}
				eventsByID[order.EventID] = event
			}
		}

		items = append(items, response.TicketToResponse(t, mediaURL(s.media, t.QRCode), order, event))
	}

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

func (s *ticketService) GetMyTicket(ctx context.Context, actor Actor, ticketID uuid.UUID) (*response.TicketResponse, error) {
	ticket, err := s.repo.Ticket.FindByID(ctx, ticketID)
	if err != nil {
		s.log.Error("Failed to find ticket", zap.Error(err), zap.String("ticket_id", ticketID.String()))
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("%w: ticket not found", utils.ErrNotFound)
	}

	order, err := s.repo.Order.FindByID(ctx, ticket.OrderID)
	if err != nil {
		return nil, fmt.Errorf("load order of ticket: %w", err)
	}
	if order == nil || order.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: ticket not found", utils.ErrNotFound)
	}

	resp, err := s.view(ctx, ticket, order)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *ticketService) ValidateAndRedeem(ctx context.Context, actor Actor, req *request.ValidateTicketRequest) (*response.TicketResponse, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: admin access required", utils.ErrForbidden)
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", utils.ErrValidation, utils.FormatValidationErrors(errs))
	}

	var (
		ticket *entity.Ticket
		order  *entity.Order
	)
	err := s.repo.Tx.WithinTx(ctx, func(repo *repository.Repository) error {
		var err error
		ticket, err = repo.Ticket.FindByCodeForUpdate(ctx, req.TicketID)
		if err != nil {
			return fmt.Errorf("lock ticket: %w", err)
		}
		if ticket == nil {
			return fmt.Errorf("%w: invalid ticket code", utils.ErrValidation)
		}
		if ticket.IsUsed {
			return fmt.Errorf("%w: ticket has already been used", utils.ErrConflict)
		}

		order, err = repo.Order.FindByID(ctx, ticket.OrderID)
		if err != nil {
			return fmt.Errorf("load order of ticket: %w", err)
		}
		if order == nil || order.Status != entity.OrderStatusApproved {
			return fmt.Errorf("%w: order not approved", utils.ErrValidation)
		}

		usedAt := s.now()
		if err := repo.Ticket.MarkUsed(ctx, ticket.ID, usedAt); err != nil {
			return err
		}
		ticket.IsUsed = true
		ticket.UsedAt = &usedAt
		return nil
	})
	if err != nil {
		metrics.RecordTicketRedemption(redemptionResult(err))
		s.log.Warn("Ticket validation failed", zap.Error(err), zap.String("ticket_code", req.TicketID))
		return nil, err
	}

	metrics.RecordTicketRedemption("redeemed")
	if err := s.events.Publish(ctx, events.EventTicketRedeemed, order.OrderCode, map[string]any{
		"ticket_id":  ticket.TicketCode,
		"order_code": order.OrderCode,
		"event_id":   order.EventID.String(),
		"used_at":    ticket.UsedAt,
		"admin_id":   actor.UserID.String(),
	}); err != nil {
		s.log.Warn("Failed to publish ticket redeemed", zap.Error(err), zap.String("ticket_code", ticket.TicketCode))
	}

	s.log.Info("Ticket redeemed",
		zap.String("ticket_code", ticket.TicketCode),
		zap.String("order_code", order.OrderCode),
		zap.String("admin_id", actor.UserID.String()),
	)

	return s.view(ctx, ticket, order)
}

func (s *ticketService) view(ctx context.Context, ticket *entity.Ticket, order *entity.Order) (*response.TicketResponse, error) {
	event, err := s.repo.Event.FindByID(ctx, order.EventID)
	if err != nil {
		return nil, fmt.Errorf("load event of ticket: %w", err)
	}
	resp := response.TicketToResponse(ticket, mediaURL(s.media, ticket.QRCode), order, event)
	return &resp, nil
}

func redemptionResult(err error) string {
	if errors.Is(err, utils.ErrConflict) {
		return "already_used"
	}
	return "rejected"
}
