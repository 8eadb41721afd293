package usecase

import (
	"context"
	"errors"
	"fmt"

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

const defaultRejectNotes = "Order rejected by admin"

type OrderService interface {
	CreateOrder(ctx context.Context, actor Actor, req *request.CreateOrderRequest) (*response.OrderResponse, error)
	ListMyOrders(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.OrderResponse], error)
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*response.OrderResponse, error)
	SetStatus(ctx context.Context, actor Actor, orderID uuid.UUID, req *request.UpdateOrderStatusRequest) (*response.OrderResponse, error)

	// Lookup by order code
	GetStatus(ctx context.Context, actor Actor, orderCode string) (*response.OrderStatusResponse, error)
	GetPaymentStatus(ctx context.Context, actor Actor, orderCode string) (*response.PaymentStatusResponse, error)

	// Admin
	ListOrdersByStatus(ctx context.Context, actor Actor, req *request.OrderListRequest) (*response.PaginatedResponse[response.AdminOrderListResponse], error)
	GetOrderDetail(ctx context.Context, actor Actor, orderID uuid.UUID) (*response.AdminOrderDetailResponse, error)
	ApproveOrder(ctx context.Context, actor Actor, orderID uuid.UUID, notes *string) (*response.AdminOrderDetailResponse, error)
	RejectOrder(ctx context.Context, actor Actor, orderID uuid.UUID, notes *string) (*response.AdminOrderDetailResponse, error)
}

type orderService struct {
	repo     *repository.Repository
	workflow *orderWorkflow
	media    MediaStore
	log      *zap.Logger
}

func NewOrderService(repo *repository.Repository, workflow *orderWorkflow, media MediaStore, log *zap.Logger) OrderService {
	return &orderService{
		repo:     repo,
		workflow: workflow,
		media:    media,
		log:      log.With(zap.String("service", "order")),
	}
}

// cachedStatus menyimpan owner supaya cek visibilitas tetap jalan saat cache hit
type cachedStatus struct {
	UserID string                       `json:"user_id"`
	Status response.OrderStatusResponse `json:"status"`
}

func (s *orderService) CreateOrder(ctx context.Context, actor Actor, req *request.CreateOrderRequest) (*response.OrderResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create order validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", utils.ErrValidation, utils.FormatValidationErrors(errs))
	}
	if req.Quantity < entity.MinOrderQuantity || req.Quantity > entity.MaxOrderQuantity {
		return nil, fmt.Errorf("%w: quantity must be between %d and %d",
			utils.ErrValidation, entity.MinOrderQuantity, entity.MaxOrderQuantity)
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid event ID", utils.ErrValidation)
	}

	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		s.log.Error("Failed to load event for order", zap.Error(err), zap.String("event_id", req.EventID))
		return nil, fmt.Errorf("load event: %w", err)
	}
	if event == nil || !event.IsActive {
		return nil, fmt.Errorf("%w: event not found or inactive", utils.ErrValidation)
	}

	order := &entity.Order{
		BaseNoDelete: entity.BaseNoDelete{
			ID: uuid.New(),
		},
		UserID:           actor.UserID,
		EventID:          eventID,
		Quantity:         req.Quantity,
		PaymentMethod:    entity.PaymentChannel(req.PaymentMethod),
		Status:           entity.OrderStatusPending,
		PaymentReference: req.PaymentReference,
	}

	err = s.repo.Tx.WithinTx(ctx, func(repo *repository.Repository) error {
		return s.workflow.persist(ctx, repo, order, true)
	})
	if errors.Is(err, utils.ErrValidation) {
		return nil, err
	}
	if err != nil {
		s.log.Error("Failed to create order", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, fmt.Errorf("create order: %w", err)
	}

	metrics.RecordOrderCreated()
	s.workflow.publish(ctx, events.EventOrderCreated, order.OrderCode, map[string]any{
		"order_id":     order.ID.String(),
		"order_code":   order.OrderCode,
		"user_id":      order.UserID.String(),
		"event_id":     order.EventID.String(),
		"quantity":     order.Quantity,
		"total_amount": order.TotalAmount.StringFixed(2),
	})

	s.log.Info("Order created",
		zap.String("order_code", order.OrderCode),
		zap.String("user_id", actor.UserID.String()),
		zap.Int("quantity", order.Quantity),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	)

	resp := response.OrderToResponse(order, event, nil)
	return &resp, nil
}

func (s *orderService) ListMyOrders(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.OrderResponse], error) {
	normalizePage(req)

	orders, err := s.repo.Order.FindByUserID(ctx, actor.UserID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list orders", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, fmt.Errorf("list orders: %w", err)
	}

	total, err := s.repo.Order.CountByUserID(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to count orders", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, fmt.Errorf("count orders: %w", err)
	}

	items := make([]response.OrderResponse, 0, len(orders))
	for _, order := range orders {
		item, err := orderView(ctx, s.repo, s.media, order)
		if err != nil {
			s.log.Error("Failed to build order view", zap.Error(err))
			return nil, err
		}
		items = append(items, item)
	}

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

// findVisible: order milik orang lain diperlakukan sama dengan order yang tidak ada
func (s *orderService) findVisible(ctx context.Context, actor Actor, find func() (*entity.Order, error)) (*entity.Order, error) {
	order, err := find()
	if err != nil {
		s.log.Error("Failed to find order", zap.Error(err))
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order == nil || !actor.CanSee(order) {
		return nil, fmt.Errorf("%w: order not found", utils.ErrNotFound)
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*response.OrderResponse, error) {
	order, err := s.findVisible(ctx, actor, func() (*entity.Order, error) {
		return s.repo.Order.FindByID(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}

	resp, err := orderView(ctx, s.repo, s.media, order)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *orderService) SetStatus(ctx context.Context, actor Actor, orderID uuid.UUID, req *request.UpdateOrderStatusRequest) (*response.OrderResponse, error) {
	target := entity.OrderStatus(req.Status)
	if _, ok := entity.ActionFor(target); !ok {
		return nil, fmt.Errorf("%w: status must be approved or rejected", utils.ErrValidation)
	}

	result, err := s.workflow.runTransition(ctx, func(repo *repository.Repository) (*transitionResult, error) {
		order, err := repo.Order.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("lock order: %w", err)
		}
		if order == nil || !actor.CanSee(order) {
			return nil, fmt.Errorf("%w: order not found", utils.ErrNotFound)
		}
		if !actor.IsAdmin {
			return nil, fmt.Errorf("%w: only admins can approve or reject orders", utils.ErrForbidden)
		}
		return s.workflow.apply(ctx, repo, order, target, req.AdminNotes)
	})
	if err != nil {
		s.log.Warn("Set order status failed",
			zap.Error(err),
			zap.String("order_id", orderID.String()),
			zap.String("status", req.Status),
		)
		return nil, err
	}

	resp, err := orderView(ctx, s.repo, s.media, result.Order)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *orderService) ApproveOrder(ctx context.Context, actor Actor, orderID uuid.UUID, notes *string) (*response.AdminOrderDetailResponse, error) {
	if notes == nil {
		empty := ""
		notes = &empty
	}
	return s.decide(ctx, actor, orderID, entity.OrderStatusApproved, notes)
}

func (s *orderService) RejectOrder(ctx context.Context, actor Actor, orderID uuid.UUID, notes *string) (*response.AdminOrderDetailResponse, error) {
	if notes == nil {
		defaultNotes := defaultRejectNotes
		notes = &defaultNotes
	}
	return s.decide(ctx, actor, orderID, entity.OrderStatusRejected, notes)
}

func (s *orderService) decide(ctx context.Context, actor Actor, orderID uuid.UUID, target entity.OrderStatus, notes *string) (*response.AdminOrderDetailResponse, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: admin access required", utils.ErrForbidden)
	}

	result, err := s.workflow.runTransition(ctx, func(repo *repository.Repository) (*transitionResult, error) {
		order, err := repo.Order.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("lock order: %w", err)
		}
		if order == nil {
			return nil, fmt.Errorf("%w: order not found", utils.ErrNotFound)
		}
		return s.workflow.apply(ctx, repo, order, target, notes)
	})
	if err != nil {
		s.log.Warn("Order decision failed",
			zap.Error(err),
			zap.String("order_id", orderID.String()),
			zap.String("target", string(target)),
		)
		return nil, err
	}

	return adminOrderDetailView(ctx, s.repo, s.media, result.Order)
}

func (s *orderService) GetStatus(ctx context.Context, actor Actor, orderCode string) (*response.OrderStatusResponse, error) {
	var cached cachedStatus
	hit, err := s.workflow.cache.Get(ctx, orderCode, &cached)
	if err != nil {
		s.log.Warn("Order status cache read failed", zap.Error(err), zap.String("order_code", orderCode))
	}
	if hit && (actor.IsAdmin || cached.UserID == actor.UserID.String()) {
		return &cached.Status, nil
	}

	order, err := s.findVisible(ctx, actor, func() (*entity.Order, error) {
		return s.repo.Order.FindByCode(ctx, orderCode)
	})
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Event.FindByID(ctx, order.EventID)
	if err != nil {
		s.log.Error("Failed to load event for status", zap.Error(err), zap.String("order_code", orderCode))
		return nil, fmt.Errorf("load event: %w", err)
	}

	resp := response.OrderToStatusResponse(order, event)

	// hanya status terminal yang di-cache; pending bisa berubah setelah dibaca
	if order.Status != entity.OrderStatusPending {
		entry := cachedStatus{UserID: order.UserID.String(), Status: resp}
		if err := s.workflow.cache.Set(ctx, orderCode, entry); err != nil {
			s.log.Warn("Order status cache write failed", zap.Error(err), zap.String("order_code", orderCode))
		}
	}

	return &resp, nil
}

func (s *orderService) GetPaymentStatus(ctx context.Context, actor Actor, orderCode string) (*response.PaymentStatusResponse, error) {
	order, err := s.findVisible(ctx, actor, func() (*entity.Order, error) {
		return s.repo.Order.FindByCode(ctx, orderCode)
	})
	if err != nil {
		return nil, err
	}

	view, err := orderView(ctx, s.repo, s.media, order)
	if err != nil {
		return nil, err
	}

	return &response.PaymentStatusResponse{
		Order:   view,
		Status:  order.Status,
		Message: response.PaymentStatusMessage(order.Status),
	}, nil
}

func (s *orderService) ListOrdersByStatus(ctx context.Context, actor Actor, req *request.OrderListRequest) (*response.PaginatedResponse[response.AdminOrderListResponse], error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: admin access required", utils.ErrForbidden)
	}

	if req.Status == "" {
		req.Status = string(entity.OrderStatusPending)
	}
	normalizePage(&req.PaginatedRequest)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", utils.ErrValidation, utils.FormatValidationErrors(errs))
	}

	status := entity.OrderStatus(req.Status)

	orders, err := s.repo.Order.FindByStatus(ctx, status, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list orders by status", zap.Error(err), zap.String("status", req.Status))
		return nil, fmt.Errorf("list orders: %w", err)
	}

	total, err := s.repo.Order.CountByStatus(ctx, status)
	if err != nil {
		s.log.Error("Failed to count orders by status", zap.Error(err), zap.String("status", req.Status))
		return nil, fmt.Errorf("count orders: %w", err)
	}

	items := make([]response.AdminOrderListResponse, 0, len(orders))
	for _, order := range orders {
		event, err := s.repo.Event.FindByID(ctx, order.EventID)
		if err != nil {
			return nil, fmt.Errorf("load event of order %s: %w", order.OrderCode, err)
		}
		user, err := userView(ctx, s.repo, order)
		if err != nil {
			return nil, err
		}
		count, err := s.repo.Ticket.CountByOrderID(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("count tickets of order %s: %w", order.OrderCode, err)
		}

		items = append(items, response.AdminOrderListResponse{
			OrderResponse: response.OrderToResponse(order, event, nil),
			User:          user,
			TicketsCount:  count,
		})
	}

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

func (s *orderService) GetOrderDetail(ctx context.Context, actor Actor, orderID uuid.UUID) (*response.AdminOrderDetailResponse, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: admin access required", utils.ErrForbidden)
	}

	order, err := s.findVisible(ctx, actor, func() (*entity.Order, error) {
		return s.repo.Order.FindByID(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}

	return adminOrderDetailView(ctx, s.repo, s.media, order)
}
