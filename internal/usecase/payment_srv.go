package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/pkg/metrics"
	"event-ticketing/pkg/storage"
	"event-ticketing/pkg/utils"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// MaxScreenshotSize batas upload bukti transfer
const MaxScreenshotSize = 5 << 20

type PaymentService interface {
	ListPaymentMethods(ctx context.Context) ([]response.PaymentMethodResponse, error)
	SubmitConfirmation(ctx context.Context, actor Actor, orderCode string, req *request.SubmitConfirmationRequest) (*response.PaymentConfirmationResponse, error)
	ReviewConfirmation(ctx context.Context, actor Actor, orderCode string, req *request.ReviewConfirmationRequest) (*response.PaymentConfirmationResponse, error)
}

type paymentService struct {
	repo     *repository.Repository
	workflow *orderWorkflow
	media    MediaStore
	log      *zap.Logger
	now      func() time.Time
}

func NewPaymentService(repo *repository.Repository, workflow *orderWorkflow, media MediaStore, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:     repo,
		workflow: workflow,
		media:    media,
		log:      log.With(zap.String("service", "payment")),
		now:      time.Now,
	}
}

func (s *paymentService) ListPaymentMethods(ctx context.Context) ([]response.PaymentMethodResponse, error) {
	methods, err := s.repo.PaymentMethod.FindAllActive(ctx)
	if err != nil {
		s.log.Error("Failed to list payment methods", zap.Error(err))
		return nil, fmt.Errorf("list payment methods: %w", err)
	}

	items := make([]response.PaymentMethodResponse, len(methods))
	for i, pm := range methods {
		items[i] = response.PaymentMethodToResponse(pm)
	}
	return items, nil
}

func (s *paymentService) SubmitConfirmation(ctx context.Context, actor Actor, orderCode string, req *request.SubmitConfirmationRequest) (*response.PaymentConfirmationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Submit confirmation validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", utils.ErrValidation, utils.FormatValidationErrors(errs))
	}

	// Hanya pemilik order yang boleh submit, termasuk admin
	order, err := s.repo.Order.FindByCode(ctx, orderCode)
	if err != nil {
		s.log.Error("Failed to find order", zap.Error(err), zap.String("order_code", orderCode))
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order == nil || order.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: order not found or you do not have permission", utils.ErrNotFound)
	}

	var screenshot *string
	if req.Screenshot != nil {
		path, err := s.storeScreenshot(ctx, order, req.Screenshot)
		if err != nil {
			return nil, err
		}
		screenshot = &path
	}

	var (
		pc       *entity.PaymentConfirmation
		replaced *string
	)
	err = s.repo.Tx.WithinTx(ctx, func(repo *repository.Repository) error {
		// lock order dulu supaya serial dengan ReviewConfirmation; confirmation
		// dibaca setelah lock sehingga confirmed_by dari review tidak tertimpa
		if _, err := repo.Order.FindByCodeForUpdate(ctx, order.OrderCode); err != nil {
			return fmt.Errorf("lock order: %w", err)
		}

		var err error
		pc, err = repo.PaymentConfirmation.GetOrCreate(ctx, order.ID, s.now())
		if err != nil {
			return err
		}

		// partial update: field yang tidak dikirim tidak disentuh
		if req.TransactionID != nil {
			pc.TransactionID = req.TransactionID
		}
		if req.ConfirmationNotes != nil {
			pc.ConfirmationNotes = req.ConfirmationNotes
		}
		if screenshot != nil {
			replaced = pc.PaymentScreenshot
			pc.PaymentScreenshot = screenshot
		}
		pc.UpdatedAt = s.now()

		return repo.PaymentConfirmation.Update(ctx, pc)
	})
	if err != nil {
		if screenshot != nil {
			s.removeFile(ctx, *screenshot)
		}
		s.log.Error("Failed to submit payment confirmation", zap.Error(err), zap.String("order_code", orderCode))
		return nil, fmt.Errorf("submit payment confirmation: %w", err)
	}

	if replaced != nil && *replaced != "" {
		s.removeFile(ctx, *replaced)
	}

	metrics.RecordPaymentConfirmation("submitted")
	s.log.Info("Payment confirmation submitted",
		zap.String("order_code", orderCode),
		zap.String("user_id", actor.UserID.String()),
		zap.Bool("with_screenshot", screenshot != nil),
	)

	return response.PaymentConfirmationToResponse(pc, order.OrderCode, mediaURL(s.media, pc.PaymentScreenshot)), nil
}

func (s *paymentService) ReviewConfirmation(ctx context.Context, actor Actor, orderCode string, req *request.ReviewConfirmationRequest) (*response.PaymentConfirmationResponse, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: admin access required", utils.ErrForbidden)
	}

	target := entity.OrderStatus(req.Status)
	if _, ok := entity.ActionFor(target); !ok {
		return nil, fmt.Errorf("%w: status must be \"approved\" or \"rejected\"", utils.ErrValidation)
	}

	var pc *entity.PaymentConfirmation
	_, err := s.workflow.runTransition(ctx, func(repo *repository.Repository) (*transitionResult, error) {
		order, err := repo.Order.FindByCodeForUpdate(ctx, orderCode)
		if err != nil {
			return nil, fmt.Errorf("lock order: %w", err)
		}
		if order == nil {
			return nil, fmt.Errorf("%w: order not found", utils.ErrNotFound)
		}

		pc, err = repo.PaymentConfirmation.FindByOrderID(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("load payment confirmation: %w", err)
		}
		if pc == nil {
			return nil, fmt.Errorf("%w: payment confirmation not found", utils.ErrNotFound)
		}

		result, err := s.workflow.apply(ctx, repo, order, target, nil)
		if err != nil {
			return nil, err
		}

		confirmedBy := actor.UserID
		pc.ConfirmedBy = &confirmedBy
		if req.ConfirmationNotes != nil && *req.ConfirmationNotes != "" {
			pc.ConfirmationNotes = req.ConfirmationNotes
		}
		pc.UpdatedAt = s.now()

		if err := repo.PaymentConfirmation.Update(ctx, pc); err != nil {
			// result dikembalikan supaya file QR yang sudah dibuat ikut dibersihkan
			return result, fmt.Errorf("update payment confirmation: %w", err)
		}
		return result, nil
	})
	if err != nil {
		s.log.Warn("Review payment confirmation failed",
			zap.Error(err),
			zap.String("order_code", orderCode),
			zap.String("status", req.Status),
		)
		return nil, err
	}

	metrics.RecordPaymentConfirmation(req.Status)
	s.log.Info("Payment confirmation reviewed",
		zap.String("order_code", orderCode),
		zap.String("status", req.Status),
		zap.String("admin_id", actor.UserID.String()),
	)

	return response.PaymentConfirmationToResponse(pc, orderCode, mediaURL(s.media, pc.PaymentScreenshot)), nil
}

// storeScreenshot cek isi file (bukan ekstensi) harus gambar, max 5 MiB
func (s *paymentService) storeScreenshot(ctx context.Context, order *entity.Order, upload *request.Upload) (string, error) {
	if len(upload.Data) == 0 {
		return "", fmt.Errorf("%w: payment screenshot is empty", utils.ErrValidation)
	}
	if len(upload.Data) > MaxScreenshotSize {
		return "", fmt.Errorf("%w: payment screenshot exceeds 5 MiB", utils.ErrValidation)
	}

	mtype := mimetype.Detect(upload.Data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		s.log.Warn("Rejected non-image screenshot",
			zap.String("order_code", order.OrderCode),
			zap.String("mime", mtype.String()),
			zap.String("filename", upload.Filename),
		)
		return "", fmt.Errorf("%w: payment screenshot must be an image", utils.ErrValidation)
	}

	suffix, err := utils.GenerateRandomHex(4)
	if err != nil {
		return "", fmt.Errorf("generate screenshot name: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", order.OrderCode, suffix, mtype.Extension())
	path, err := s.media.Save(ctx, storage.DirPaymentConfirmations, name, upload.Data)
	if err != nil {
		s.log.Error("Failed to store screenshot", zap.Error(err), zap.String("order_code", order.OrderCode))
		return "", fmt.Errorf("store screenshot: %w", err)
	}
	return path, nil
}

func (s *paymentService) removeFile(ctx context.Context, path string) {
	if err := s.media.Remove(ctx, path); err != nil {
		s.log.Warn("Failed to remove media file", zap.Error(err), zap.String("path", path))
	}
}
