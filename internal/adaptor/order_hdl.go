package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service usecase.OrderService
	log     *zap.Logger
}

func NewOrderHandler(service usecase.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log.With(zap.String("handler", "order")),
	}
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	// field total dari client (kalau ada) diabaikan oleh decoder
	var req request.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(w, err, "create order")
		return
	}

	utils.ResponseCreated(w, "Order created successfully", order)
}

// GetMyOrders handles GET /api/orders
func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req := parsePagination(r)
	orders, err := h.service.ListMyOrders(r.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(w, err, "list orders")
		return
	}

	utils.ResponseSuccess(w, "Orders retrieved successfully", orders)
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), actor, id)
	if err != nil {
		h.handleServiceError(w, err, "get order")
		return
	}

	utils.ResponseSuccess(w, "Order retrieved successfully", order)
}

// UpdateStatus handles PUT /api/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	order, err := h.service.SetStatus(r.Context(), actor, id, &req)
	if err != nil {
		h.handleServiceError(w, err, "update order status")
		return
	}

	utils.ResponseSuccess(w, "Order status updated successfully", order)
}

// GetStatus handles GET /api/orders/code/{code}/status
func (h *OrderHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	status, err := h.service.GetStatus(r.Context(), actor, chi.URLParam(r, "code"))
	if err != nil {
		h.handleServiceError(w, err, "get order status")
		return
	}

	utils.ResponseSuccess(w, "Order status retrieved successfully", status)
}

// GetPaymentStatus handles GET /api/orders/code/{code}/payment-status
func (h *OrderHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	status, err := h.service.GetPaymentStatus(r.Context(), actor, chi.URLParam(r, "code"))
	if err != nil {
		h.handleServiceError(w, err, "get payment status")
		return
	}

	utils.ResponseSuccess(w, "Payment status retrieved successfully", status)
}

// GetOrdersByStatus handles GET /api/admin/orders?status=pending
func (h *OrderHandler) GetOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req := request.OrderListRequest{
		PaginatedRequest: parsePagination(r),
		Status:           r.URL.Query().Get("status"),
	}

	orders, err := h.service.ListOrdersByStatus(r.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(w, err, "list orders by status")
		return
	}

	utils.ResponseSuccess(w, "Orders retrieved successfully", orders)
}

// GetOrderDetail handles GET /api/admin/orders/{id}
func (h *OrderHandler) GetOrderDetail(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrderDetail(r.Context(), actor, id)
	if err != nil {
		h.handleServiceError(w, err, "get order detail")
		return
	}

	utils.ResponseSuccess(w, "Order retrieved successfully", order)
}

// ApproveOrder handles POST /api/admin/orders/{id}/approve
func (h *OrderHandler) ApproveOrder(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "approve order", "Order approved successfully", h.service.ApproveOrder)
}

// RejectOrder handles POST /api/admin/orders/{id}/reject
func (h *OrderHandler) RejectOrder(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "reject order", "Order rejected successfully", h.service.RejectOrder)
}

func (h *OrderHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	operation, message string,
	apply func(ctx context.Context, actor usecase.Actor, orderID uuid.UUID, notes *string) (*response.AdminOrderDetailResponse, error),
) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	// body optional: {"notes": "..."}
	var req request.OrderDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	order, err := apply(r.Context(), actor, id, req.Notes)
	if err != nil {
		h.handleServiceError(w, err, operation)
		return
	}

	utils.ResponseSuccess(w, message, order)
}

func (h *OrderHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	writeServiceError(w, h.log, err, operation)
}
