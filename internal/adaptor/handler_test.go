package adaptor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// stubOrders hanya override method yang dipakai test
type stubOrders struct {
	usecase.OrderService
	created *request.CreateOrderRequest
	notes   *string
	err     error
}

func (s *stubOrders) CreateOrder(_ context.Context, _ usecase.Actor, req *request.CreateOrderRequest) (*response.OrderResponse, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	return &response.OrderResponse{OrderID: "ORD1", TotalAmount: "50.00"}, nil
}

func (s *stubOrders) ApproveOrder(_ context.Context, _ usecase.Actor, _ uuid.UUID, notes *string) (*response.AdminOrderDetailResponse, error) {
	s.notes = notes
	return &response.AdminOrderDetailResponse{}, s.err
}

type stubPayments struct {
	usecase.PaymentService
	got  *request.SubmitConfirmationRequest
	code string
}

func (s *stubPayments) SubmitConfirmation(_ context.Context, _ usecase.Actor, code string, req *request.SubmitConfirmationRequest) (*response.PaymentConfirmationResponse, error) {
	s.got = req
	s.code = code
	return &response.PaymentConfirmationResponse{OrderID: code}, nil
}

func withActor(r *http.Request, admin bool) *http.Request {
	role := "customer"
	if admin {
		role = "admin"
	}
	return r.WithContext(utils.SetUserContext(r.Context(), uuid.New(), role))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestWriteServiceError_StatusMapping(t *testing.T) {
	log := zaptest.NewLogger(t)

	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{fmt.Errorf("%w: quantity must be between 1 and 10", utils.ErrValidation), http.StatusBadRequest, "quantity must be between 1 and 10"},
		{fmt.Errorf("%w: order not found", utils.ErrNotFound), http.StatusNotFound, "order not found"},
		{fmt.Errorf("%w: ticket has already been used", utils.ErrConflict), http.StatusConflict, "ticket has already been used"},
		{fmt.Errorf("%w: admin access required", utils.ErrForbidden), http.StatusForbidden, "admin access required"},
		{fmt.Errorf("%w: invalid credentials", utils.ErrUnauthorized), http.StatusUnauthorized, "invalid credentials"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		writeServiceError(w, log, tt.err, "test")

		assert.Equal(t, tt.code, w.Code, tt.err.Error())
		resp := decode(t, w)
		assert.False(t, resp.Status)
		assert.Equal(t, tt.msg, resp.Message)
	}
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	svc := &stubOrders{}
	h := NewOrderHandler(svc, zaptest.NewLogger(t))

	body := `{"event_id":"` + uuid.NewString() + `","quantity":2,"payment_method":"mobile_money","total_amount":"1.00"}`
	r := withActor(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)), false)
	w := httptest.NewRecorder()
	h.CreateOrder(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, svc.created.Quantity)
	assert.True(t, decode(t, w).Status)

	// quantity di luar batas ditolak sebelum ke service
	svc.created = nil
	body = `{"event_id":"` + uuid.NewString() + `","quantity":11,"payment_method":"mobile_money"}`
	w = httptest.NewRecorder()
	h.CreateOrder(w, withActor(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)), false))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.created)

	w = httptest.NewRecorder()
	h.CreateOrder(w, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderHandler_ApproveWithOptionalBody(t *testing.T) {
	svc := &stubOrders{}
	h := NewOrderHandler(svc, zaptest.NewLogger(t))

	r := chi.NewRouter()
	r.Post("/api/admin/orders/{id}/approve", h.ApproveOrder)

	id := uuid.NewString()

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/admin/orders/"+id+"/approve", nil), true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.notes)

	req = withActor(httptest.NewRequest(http.MethodPost, "/api/admin/orders/"+id+"/approve", strings.NewReader(`{"notes":"paid at desk"}`)), true)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.notes)
	assert.Equal(t, "paid at desk", *svc.notes)

	svc.err = fmt.Errorf("%w: cannot change status from approved to approved", utils.ErrConflict)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withActor(httptest.NewRequest(http.MethodPost, "/api/admin/orders/"+id+"/approve", nil), true))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withActor(httptest.NewRequest(http.MethodPost, "/api/admin/orders/not-a-uuid/approve", nil), true))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_SubmitMultipart(t *testing.T) {
	svc := &stubPayments{}
	h := NewPaymentHandler(svc, zaptest.NewLogger(t))

	r := chi.NewRouter()
	r.Post("/api/payments/{code}/submit-confirmation", h.SubmitConfirmation)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("transaction_id", "TX-77"))
	fw, err := mw.CreateFormFile("payment_screenshot", "receipt.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\nrest"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/payments/ORD42/submit-confirmation", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, withActor(req, false))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ORD42", svc.code)
	require.NotNil(t, svc.got.TransactionID)
	assert.Equal(t, "TX-77", *svc.got.TransactionID)
	assert.Nil(t, svc.got.ConfirmationNotes)
	require.NotNil(t, svc.got.Screenshot)
	assert.Equal(t, "receipt.png", svc.got.Screenshot.Filename)
}

func TestPaymentHandler_SubmitJSON(t *testing.T) {
	svc := &stubPayments{}
	h := NewPaymentHandler(svc, zaptest.NewLogger(t))

	r := chi.NewRouter()
	r.Post("/api/payments/{code}/submit-confirmation", h.SubmitConfirmation)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/ORD42/submit-confirmation",
		strings.NewReader(`{"confirmation_notes":"sent from MoMo"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, withActor(req, false))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.got.TransactionID)
	assert.Equal(t, "sent from MoMo", *svc.got.ConfirmationNotes)
	assert.Nil(t, svc.got.Screenshot)
}

func TestPaymentHandler_SubmitJSONTooLarge(t *testing.T) {
	svc := &stubPayments{}
	h := NewPaymentHandler(svc, zaptest.NewLogger(t))

	r := chi.NewRouter()
	r.Post("/api/payments/{code}/submit-confirmation", h.SubmitConfirmation)

	body := `{"confirmation_notes":"` + strings.Repeat("a", 1<<17) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/ORD42/submit-confirmation", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, withActor(req, false))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decode(t, w).Message)
	assert.Nil(t, svc.got)
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/events?page=3&per_page=500", nil)
	p := parsePagination(r)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.PerPage)

	p = parsePagination(httptest.NewRequest(http.MethodGet, "/api/events?page=-1&per_page=x", nil))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PerPage)
}
