package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	// batas body multipart: screenshot + field text
	maxConfirmationBody = usecase.MaxScreenshotSize + 1<<20
	// body JSON tidak membawa file
	maxConfirmationJSON = 64 << 10
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// GetPaymentMethods handles GET /api/payment-methods
func (h *PaymentHandler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ListPaymentMethods(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "list payment methods")
		return
	}

	utils.ResponseSuccess(w, "Payment methods retrieved successfully", methods)
}

// SubmitConfirmation handles POST /api/payments/{code}/submit-confirmation
// Terima multipart/form-data (dengan file payment_screenshot) atau JSON.
func (h *PaymentHandler) SubmitConfirmation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	req, err := h.parseConfirmation(w, r)
	if err != nil {
		h.log.Warn("Invalid confirmation body", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	confirmation, err := h.service.SubmitConfirmation(r.Context(), actor, chi.URLParam(r, "code"), req)
	if err != nil {
		h.handleServiceError(w, err, "submit payment confirmation")
		return
	}

	utils.ResponseSuccess(w, "Payment confirmation submitted successfully", confirmation)
}

// ReviewConfirmation handles PATCH /api/admin/payments/{code}/review-confirmation
func (h *PaymentHandler) ReviewConfirmation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.ReviewConfirmationRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxConfirmationJSON)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	confirmation, err := h.service.ReviewConfirmation(r.Context(), actor, chi.URLParam(r, "code"), &req)
	if err != nil {
		h.handleServiceError(w, err, "review payment confirmation")
		return
	}

	utils.ResponseSuccess(w, "Payment confirmation reviewed successfully", confirmation)
}

func (h *PaymentHandler) parseConfirmation(w http.ResponseWriter, r *http.Request) (*request.SubmitConfirmationRequest, error) {
	req := &request.SubmitConfirmationRequest{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxConfirmationJSON)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return req, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxConfirmationBody)
	if err := r.ParseMultipartForm(maxConfirmationBody); err != nil {
		return nil, err
	}
	defer r.MultipartForm.RemoveAll()

	if v := r.FormValue("transaction_id"); v != "" {
		req.TransactionID = &v
	}
	if v := r.FormValue("confirmation_notes"); v != "" {
		req.ConfirmationNotes = &v
	}

	file, header, err := r.FormFile("payment_screenshot")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// baca max+1 byte supaya service bisa menolak file yang kebesaran
	data, err := io.ReadAll(io.LimitReader(file, usecase.MaxScreenshotSize+1))
	if err != nil {
		return nil, err
	}
	req.Screenshot = &request.Upload{Filename: header.Filename, Data: data}

	return req, nil
}

func (h *PaymentHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	writeServiceError(w, h.log, err, operation)
}
