package usecase

import (
	"context"
	"fmt"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/response"
)

// mediaURL returns the absolute URL of a stored file, nil for no file
func mediaURL(media MediaStore, rel *string) *string {
	if rel == nil || *rel == "" {
		return nil
	}
	url := media.URL(*rel)
	return &url
}

// orderView memuat event dan ticket untuk OrderResponse
func orderView(ctx context.Context, repo *repository.Repository, media MediaStore, order *entity.Order) (response.OrderResponse, error) {
	event, err := repo.Event.FindByID(ctx, order.EventID)
	if err != nil {
		return response.OrderResponse{}, fmt.Errorf("load event of order %s: %w", order.OrderCode, err)
	}

	tickets, err := repo.Ticket.FindByOrderID(ctx, order.ID)
	if err != nil {
		return response.OrderResponse{}, fmt.Errorf("load tickets of order %s: %w", order.OrderCode, err)
	}

	items := make([]response.TicketResponse, len(tickets))
	for i, t := range tickets {
		items[i] = response.TicketToResponse(t, mediaURL(media, t.QRCode), nil, nil)
	}

	return response.OrderToResponse(order, event, items), nil
}

func userView(ctx context.Context, repo *repository.Repository, order *entity.Order) (*response.UserResponse, error) {
	user, err := repo.User.FindByID(ctx, order.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user of order %s: %w", order.OrderCode, err)
	}
	if user == nil {
		return nil, nil
	}
	resp := response.UserToResponse(user)
	return &resp, nil
}

func adminOrderDetailView(ctx context.Context, repo *repository.Repository, media MediaStore, order *entity.Order) (*response.AdminOrderDetailResponse, error) {
	base, err := orderView(ctx, repo, media, order)
	if err != nil {
		return nil, err
	}

	user, err := userView(ctx, repo, order)
	if err != nil {
		return nil, err
	}

	pc, err := repo.PaymentConfirmation.FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load payment confirmation of order %s: %w", order.OrderCode, err)
	}

	var confirmation *response.PaymentConfirmationResponse
	if pc != nil {
		confirmation = response.PaymentConfirmationToResponse(pc, order.OrderCode, mediaURL(media, pc.PaymentScreenshot))
	}

	return &response.AdminOrderDetailResponse{
		OrderResponse:       base,
		User:                user,
		PaymentConfirmation: confirmation,
	}, nil
}
