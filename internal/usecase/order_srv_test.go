package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/pkg/events"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func createOrder(t *testing.T, f *fixture, actor Actor, eventID uuid.UUID, qty int) string {
	t.Helper()
	resp, err := f.svc.Order.CreateOrder(context.Background(), actor, &request.CreateOrderRequest{
		EventID:       eventID.String(),
		Quantity:      qty,
		PaymentMethod: "mobile_money",
	})
	require.NoError(t, err)
	return resp.ID
}

func strPtr(s string) *string { return &s }

func TestCreateOrder_TotalIsPriceTimesQuantity(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("25.00", true)

	resp, err := f.svc.Order.CreateOrder(context.Background(), f.buyer, &request.CreateOrderRequest{
		EventID:       event.ID.String(),
		Quantity:      3,
		PaymentMethod: "bank_transfer",
	})
	require.NoError(t, err)

	assert.Equal(t, "75.00", resp.TotalAmount)
	assert.Equal(t, entity.OrderStatusPending, resp.Status)
	assert.True(t, strings.HasPrefix(resp.OrderID, "ORD"))
	assert.Equal(t, "Jazz Night", resp.Event.Title)

	stored := f.storedOrder(t, resp.ID)
	assert.True(t, decimal.RequireFromString("75").Equal(stored.TotalAmount))
	assert.Equal(t, f.buyer.UserID, stored.UserID)
	assert.Nil(t, stored.PaymentConfirmedAt)
	assert.Equal(t, []string{events.EventOrderCreated}, f.publisher.types())
}

func TestCreateOrder_IgnoresClientTotal(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("10.50", true)

	// total_amount di body tidak punya field tujuan, jadi diabaikan decoder
	body := `{"event_id":"` + event.ID.String() + `","quantity":2,"payment_method":"credit_card","total_amount":"0.01"}`
	var req request.CreateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	resp, err := f.svc.Order.CreateOrder(context.Background(), f.buyer, &req)
	require.NoError(t, err)
	assert.Equal(t, "21.00", resp.TotalAmount)
}

func TestCreateOrder_QuantityBounds(t *testing.T) {
	tests := []struct {
		qty     int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{10, false},
		{11, true},
	}

	for _, tt := range tests {
		f := newFixture(t)
		event := f.addEvent("5.00", true)

		_, err := f.svc.Order.CreateOrder(context.Background(), f.buyer, &request.CreateOrderRequest{
			EventID:       event.ID.String(),
			Quantity:      tt.qty,
			PaymentMethod: "credit_card",
		})

		if tt.wantErr {
			assert.ErrorIs(t, err, utils.ErrValidation, "qty %d", tt.qty)
			assert.Empty(t, f.st.orders, "qty %d must not persist", tt.qty)
		} else {
			assert.NoError(t, err, "qty %d", tt.qty)
			assert.Len(t, f.st.orders, 1)
		}
	}
}

func TestCreateOrder_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	active := f.addEvent("5.00", true)
	inactive := f.addEvent("5.00", false)

	tests := []struct {
		name string
		req  request.CreateOrderRequest
	}{
		{"inactive event", request.CreateOrderRequest{EventID: inactive.ID.String(), Quantity: 1, PaymentMethod: "credit_card"}},
		{"unknown event", request.CreateOrderRequest{EventID: uuid.NewString(), Quantity: 1, PaymentMethod: "credit_card"}},
		{"bad payment method", request.CreateOrderRequest{EventID: active.ID.String(), Quantity: 1, PaymentMethod: "cash"}},
		{"bad event id", request.CreateOrderRequest{EventID: "not-a-uuid", Quantity: 1, PaymentMethod: "credit_card"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Order.CreateOrder(context.Background(), f.buyer, &tt.req)
			assert.ErrorIs(t, err, utils.ErrValidation)
		})
	}
	assert.Empty(t, f.st.orders)
}

func TestSetStatus_ApproveIssuesOneTicketPerUnit(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("25.00", true)
	orderID := createOrder(t, f, f.buyer, event.ID, 3)

	resp, err := f.svc.Order.SetStatus(context.Background(), f.admin, uuid.MustParse(orderID),
		&request.UpdateOrderStatusRequest{Status: "approved"})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusApproved, resp.Status)
	assert.Equal(t, "75.00", resp.TotalAmount)
	require.Len(t, resp.Tickets, 3)

	stored := f.storedOrder(t, orderID)
	require.NotNil(t, stored.PaymentConfirmedAt)

	tickets := f.ticketsOf(orderID)
	require.Len(t, tickets, 3)

	seen := map[string]bool{}
	for _, tk := range tickets {
		assert.True(t, strings.HasPrefix(tk.TicketCode, "TKT"))
		assert.False(t, seen[tk.TicketCode], "duplicate code %s", tk.TicketCode)
		seen[tk.TicketCode] = true

		var payload entity.QRPayload
		require.NoError(t, json.Unmarshal([]byte(tk.QRPayload), &payload))
		assert.Equal(t, tk.TicketCode, payload.TicketID)
		assert.Equal(t, event.ID.String(), payload.EventID)
		assert.Equal(t, f.buyer.UserID.String(), payload.UserID)
		assert.Equal(t, stored.OrderCode, payload.OrderID)

		require.NotNil(t, tk.QRCode)
		assert.Equal(t, "qr_codes/qr_"+tk.TicketCode+".png", *tk.QRCode)
	}
	assert.Equal(t, 3, f.media.count("qr_codes/"))
	assert.Contains(t, f.publisher.types(), events.EventOrderApproved)
}

func TestSetStatus_TerminalStatesReject(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("12.00", true)
	orderID := createOrder(t, f, f.buyer, event.ID, 2)
	id := uuid.MustParse(orderID)

	_, err := f.svc.Order.SetStatus(context.Background(), f.admin, id, &request.UpdateOrderStatusRequest{Status: "approved"})
	require.NoError(t, err)
	confirmedAt := *f.storedOrder(t, orderID).PaymentConfirmedAt

	_, err = f.svc.Order.SetStatus(context.Background(), f.admin, id, &request.UpdateOrderStatusRequest{Status: "rejected"})
	require.ErrorIs(t, err, utils.ErrConflict)
	assert.Contains(t, err.Error(), "order is already approved")

	_, err = f.svc.Order.ApproveOrder(context.Background(), f.admin, id, nil)
	require.ErrorIs(t, err, utils.ErrConflict)

	stored := f.storedOrder(t, orderID)
	assert.Equal(t, entity.OrderStatusApproved, stored.Status)
	assert.Equal(t, confirmedAt, *stored.PaymentConfirmedAt)
	assert.Len(t, f.ticketsOf(orderID), 2)
}

func TestSetStatus_AccessRules(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("12.00", true)
	orderID := uuid.MustParse(createOrder(t, f, f.buyer, event.ID, 1))

	_, err := f.svc.Order.SetStatus(context.Background(), f.buyer, orderID, &request.UpdateOrderStatusRequest{Status: "pending"})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = f.svc.Order.SetStatus(context.Background(), f.stranger, orderID, &request.UpdateOrderStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = f.svc.Order.SetStatus(context.Background(), f.buyer, orderID, &request.UpdateOrderStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = f.svc.Order.SetStatus(context.Background(), f.admin, uuid.New(), &request.UpdateOrderStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	assert.Equal(t, entity.OrderStatusPending, f.storedOrder(t, orderID.String()).Status)
}

func TestSetStatus_RecomputesTotalFromCurrentPrice(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("10.00", true)
	orderID := createOrder(t, f, f.buyer, event.ID, 4)

	e := f.st.events[event.ID]
	e.Price = decimal.RequireFromString("12.50")
	f.st.events[event.ID] = e

	resp, err := f.svc.Order.SetStatus(context.Background(), f.admin, uuid.MustParse(orderID),
		&request.UpdateOrderStatusRequest{Status: "rejected", AdminNotes: strPtr("no payment")})
	require.NoError(t, err)

	assert.Equal(t, "50.00", resp.TotalAmount)
	assert.Equal(t, "no payment", *resp.AdminNotes)
	assert.Empty(t, f.ticketsOf(orderID))
	assert.Nil(t, f.storedOrder(t, orderID).PaymentConfirmedAt)
}

func TestApproveAndReject_DefaultNotes(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("8.00", true)
	first := uuid.MustParse(createOrder(t, f, f.buyer, event.ID, 1))
	second := uuid.MustParse(createOrder(t, f, f.buyer, event.ID, 1))

	approved, err := f.svc.Order.ApproveOrder(context.Background(), f.admin, first, nil)
	require.NoError(t, err)
	require.NotNil(t, approved.AdminNotes)
	assert.Equal(t, "", *approved.AdminNotes)
	assert.Len(t, approved.Tickets, 1)
	assert.Equal(t, "buyer", approved.User.Username)

	rejected, err := f.svc.Order.RejectOrder(context.Background(), f.admin, second, nil)
	require.NoError(t, err)
	assert.Equal(t, "Order rejected by admin", *rejected.AdminNotes)
	assert.Equal(t, entity.OrderStatusRejected, rejected.Status)

	_, err = f.svc.Order.ApproveOrder(context.Background(), f.buyer, second, nil)
	assert.ErrorIs(t, err, utils.ErrForbidden)
}

func TestApprove_IssuanceFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("8.00", true)
	orderID := createOrder(t, f, f.buyer, event.ID, 3)
	f.encoder.failFrom = 2

	_, err := f.svc.Order.ApproveOrder(context.Background(), f.admin, uuid.MustParse(orderID), nil)
	require.Error(t, err)

	stored := f.storedOrder(t, orderID)
	assert.Equal(t, entity.OrderStatusPending, stored.Status)
	assert.Nil(t, stored.PaymentConfirmedAt)
	assert.Empty(t, f.ticketsOf(orderID))
	assert.Equal(t, 0, f.media.count("qr_codes/"))
}

func TestTicketIssuer_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("8.00", true)
	orderID := createOrder(t, f, f.buyer, event.ID, 4)

	_, err := f.svc.Order.ApproveOrder(context.Background(), f.admin, uuid.MustParse(orderID), nil)
	require.NoError(t, err)

	order := f.storedOrder(t, orderID)
	issuer := newTicketIssuer(f.encoder, f.media, zaptestLogger(t))

	again, err := issuer.Issue(context.Background(), f.repo, &order)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Len(t, f.ticketsOf(orderID), 4)
}

func TestGetStatus_VisibilityAndCache(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("20.00", true)
	orderID := createOrder(t, f, f.buyer, event.ID, 2)
	code := f.storedOrder(t, orderID).OrderCode

	resp, err := f.svc.Order.GetStatus(context.Background(), f.buyer, code)
	require.NoError(t, err)
	assert.Equal(t, code, resp.OrderID)
	assert.Equal(t, "40.00", resp.TotalAmount)
	assert.Equal(t, "Jazz Night", resp.EventTitle)
	assert.Equal(t, entity.PaymentChannelMobileMoney, resp.PaymentMethod)

	// pending tidak di-cache
	_, ok := f.cache.data[code]
	require.False(t, ok)

	_, err = f.svc.Order.GetStatus(context.Background(), f.stranger, code)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = f.svc.Order.GetStatus(context.Background(), f.admin, code)
	assert.NoError(t, err)

	_, err = f.svc.Order.GetStatus(context.Background(), f.buyer, "ORD000")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = f.svc.Order.ApproveOrder(context.Background(), f.admin, uuid.MustParse(orderID), nil)
	require.NoError(t, err)

	resp, err = f.svc.Order.GetStatus(context.Background(), f.buyer, code)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusApproved, resp.Status)

	// status terminal masuk cache, tapi non-owner tetap tidak boleh lihat
	_, ok = f.cache.data[code]
	require.True(t, ok)

	_, err = f.svc.Order.GetStatus(context.Background(), f.stranger, code)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

// approvingCache menjalankan approval tepat sebelum Set pertama, meniru
// transisi yang commit di antara baca DB dan tulis cache.
type approvingCache struct {
	*memCache
	approve func()
	fired   bool
}

func (c *approvingCache) Set(ctx context.Context, code string, value any) error {
	if !c.fired {
		c.fired = true
		c.approve()
	}
	return c.memCache.Set(ctx, code, value)
}

func TestGetStatus_ApprovalBetweenReadAndCacheWrite(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("20.00", true)
	orderID := createOrder(t, f, f.buyer, event.ID, 1)
	code := f.storedOrder(t, orderID).OrderCode

	approve := func() {
		_, err := f.svc.Order.ApproveOrder(context.Background(), f.admin, uuid.MustParse(orderID), nil)
		require.NoError(t, err)
	}
	racing := &approvingCache{memCache: f.cache, approve: approve}
	f.svc = NewService(f.repo, &utils.Config{}, zaptest.NewLogger(t), Dependencies{
		Cache:     racing,
		Publisher: f.publisher,
		QR:        f.encoder,
		Media:     f.media,
	})

	resp, err := f.svc.Order.GetStatus(context.Background(), f.buyer, code)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, resp.Status)
	assert.False(t, racing.fired, "pending status must not be written to cache")

	if !racing.fired {
		racing.fired = true
		approve()
	}

	resp, err = f.svc.Order.GetStatus(context.Background(), f.buyer, code)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusApproved, resp.Status)

	resp, err = f.svc.Order.GetStatus(context.Background(), f.buyer, code)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusApproved, resp.Status)
}

func TestGetPaymentStatus_Messages(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("20.00", true)
	orderID := createOrder(t, f, f.buyer, event.ID, 1)
	code := f.storedOrder(t, orderID).OrderCode

	resp, err := f.svc.Order.GetPaymentStatus(context.Background(), f.buyer, code)
	require.NoError(t, err)
	assert.Equal(t, "Payment is being processed", resp.Message)

	_, err = f.svc.Order.ApproveOrder(context.Background(), f.admin, uuid.MustParse(orderID), nil)
	require.NoError(t, err)

	resp, err = f.svc.Order.GetPaymentStatus(context.Background(), f.buyer, code)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusApproved, resp.Status)
	assert.Equal(t, "Payment confirmed and tickets generated", resp.Message)
	assert.Len(t, resp.Order.Tickets, 1)

	_, err = f.svc.Order.GetPaymentStatus(context.Background(), f.stranger, code)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestGetOrder_NonOwnerGetsNotFound(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("20.00", true)
	orderID := uuid.MustParse(createOrder(t, f, f.buyer, event.ID, 1))

	_, err := f.svc.Order.GetOrder(context.Background(), f.stranger, orderID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	own, err := f.svc.Order.GetOrder(context.Background(), f.buyer, orderID)
	require.NoError(t, err)
	assert.Equal(t, orderID.String(), own.ID)

	_, err = f.svc.Order.GetOrder(context.Background(), f.admin, orderID)
	assert.NoError(t, err)
}

func TestListOrdersByStatus_DefaultsToPending(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("5.00", true)
	createOrder(t, f, f.buyer, event.ID, 1)
	approvedID := createOrder(t, f, f.buyer, event.ID, 2)
	_, err := f.svc.Order.ApproveOrder(context.Background(), f.admin, uuid.MustParse(approvedID), nil)
	require.NoError(t, err)

	pending, err := f.svc.Order.ListOrdersByStatus(context.Background(), f.admin, &request.OrderListRequest{})
	require.NoError(t, err)
	require.Len(t, pending.Data, 1)
	assert.Equal(t, entity.OrderStatusPending, pending.Data[0].Status)
	assert.EqualValues(t, 0, pending.Data[0].TicketsCount)

	approved, err := f.svc.Order.ListOrdersByStatus(context.Background(), f.admin, &request.OrderListRequest{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, approved.Data, 1)
	assert.EqualValues(t, 2, approved.Data[0].TicketsCount)
	assert.Equal(t, "buyer", approved.Data[0].User.Username)

	_, err = f.svc.Order.ListOrdersByStatus(context.Background(), f.admin, &request.OrderListRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = f.svc.Order.ListOrdersByStatus(context.Background(), f.buyer, &request.OrderListRequest{})
	assert.ErrorIs(t, err, utils.ErrForbidden)
}

func TestListMyOrders_OnlyOwn(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("5.00", true)
	createOrder(t, f, f.buyer, event.ID, 1)
	createOrder(t, f, f.buyer, event.ID, 1)
	createOrder(t, f, f.stranger, event.ID, 1)

	resp, err := f.svc.Order.ListMyOrders(context.Background(), f.buyer, &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	assert.EqualValues(t, 2, resp.Pagination.Total)
	for _, o := range resp.Data {
		assert.Equal(t, f.buyer.UserID.String(), o.UserID)
	}
}

// deactivatingEvents mengembalikan event sebagai inactive mulai pembacaan kedua,
// seperti admin menonaktifkan event saat order sedang dibuat.
type deactivatingEvents struct {
	repository.EventRepository
	reads int
}

func (r *deactivatingEvents) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	event, err := r.EventRepository.FindByID(ctx, id)
	r.reads++
	if err != nil || event == nil || r.reads == 1 {
		return event, err
	}
	inactive := *event
	inactive.IsActive = false
	return &inactive, nil
}

func TestCreateOrder_EventDeactivatedBeforePersist(t *testing.T) {
	f := newFixture(t)
	event := f.addEvent("20.00", true)
	events := &deactivatingEvents{EventRepository: f.repo.Event}
	f.repo.Event = events

	_, err := f.svc.Order.CreateOrder(context.Background(), f.buyer, &request.CreateOrderRequest{
		EventID:       event.ID.String(),
		Quantity:      1,
		PaymentMethod: "mobile_money",
	})
	require.ErrorIs(t, err, utils.ErrValidation)
	assert.Equal(t, 2, events.reads)
	assert.Empty(t, f.st.orders)
	assert.Empty(t, f.publisher.events)
}
