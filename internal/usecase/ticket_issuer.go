package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/storage"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ticketIssuer creates the tickets of an approved order. It always runs with
// the repositories of the caller's transaction.
type ticketIssuer struct {
	qr    QREncoder
	media MediaStore
	log   *zap.Logger
	now   func() time.Time
}

func newTicketIssuer(qr QREncoder, media MediaStore, log *zap.Logger) *ticketIssuer {
	return &ticketIssuer{
		qr:    qr,
		media: media,
		log:   log.With(zap.String("service", "ticket_issuer")),
		now:   time.Now,
	}
}

// Issue membuat tepat order.Quantity ticket. No-op kalau order sudah punya ticket.
// Kalau gagal di tengah jalan, file QR yang sudah ditulis dihapus lagi.
func (i *ticketIssuer) Issue(ctx context.Context, repo *repository.Repository, order *entity.Order) ([]*entity.Ticket, error) {
	existing, err := repo.Ticket.CountByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("count existing tickets: %w", err)
	}
	if existing > 0 {
		i.log.Info("Tickets already issued, skipping",
			zap.String("order_code", order.OrderCode),
			zap.Int64("existing", existing),
		)
		return nil, nil
	}

	tickets := make([]*entity.Ticket, 0, order.Quantity)
	for n := 0; n < order.Quantity; n++ {
		ticket, err := i.render(ctx, order)
		if err != nil {
			i.Discard(ctx, tickets)
			return nil, err
		}
		// file sudah ditulis, masukkan dulu supaya ikut di-discard kalau insert gagal
		tickets = append(tickets, ticket)

		if err := repo.Ticket.Create(ctx, ticket); err != nil {
			i.Discard(ctx, tickets)
			return nil, fmt.Errorf("create ticket %d of %d: %w", n+1, order.Quantity, err)
		}
	}

	i.log.Info("Tickets issued",
		zap.String("order_code", order.OrderCode),
		zap.Int("count", len(tickets)),
	)
	return tickets, nil
}

func (i *ticketIssuer) render(ctx context.Context, order *entity.Order) (*entity.Ticket, error) {
	now := i.now()

	code, err := utils.GenerateTicketCode(now, order.ID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(entity.QRPayload{
		TicketID: code,
		EventID:  order.EventID.String(),
		UserID:   order.UserID.String(),
		OrderID:  order.OrderCode,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal qr payload: %w", err)
	}

	png, err := i.qr.Encode(string(payload))
	if err != nil {
		return nil, fmt.Errorf("render qr for %s: %w", code, err)
	}

	path, err := i.media.Save(ctx, storage.DirQRCodes, "qr_"+code+".png", png)
	if err != nil {
		return nil, fmt.Errorf("store qr for %s: %w", code, err)
	}

	return &entity.Ticket{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		TicketCode: code,
		OrderID:    order.ID,
		QRPayload:  string(payload),
		QRCode:     &path,
	}, nil
}

// Discard menghapus file QR milik ticket yang tidak jadi disimpan
func (i *ticketIssuer) Discard(ctx context.Context, tickets []*entity.Ticket) {
	for _, t := range tickets {
		if t.QRCode == nil {
			continue
		}
		if err := i.media.Remove(ctx, *t.QRCode); err != nil {
			i.log.Warn("Failed to remove orphan qr image",
				zap.Error(err),
				zap.String("path", *t.QRCode),
			)
		}
	}
}
