package usecase

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventService interface {
	ListEvents(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error)
	GetEvent(ctx context.Context, id uuid.UUID) (*response.EventResponse, error)

	// Admin
	CreateEvent(ctx context.Context, actor Actor, req *request.EventRequest) (*response.EventResponse, error)
	UpdateEvent(ctx context.Context, actor Actor, id uuid.UUID, req *request.EventUpdateRequest) (*response.EventResponse, error)
}

type eventService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewEventService(repo *repository.Repository, log *zap.Logger) EventService {
	return &eventService{
		repo: repo,
		log:  log.With(zap.String("service", "event")),
		now:  time.Now,
	}
}

func (s *eventService) ListEvents(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error) {
	normalizePage(req)

	events, err := s.repo.Event.FindActive(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list events", zap.Error(err))
		return nil, fmt.Errorf("list events: %w", err)
	}

	total, err := s.repo.Event.CountActive(ctx)
	if err != nil {
		s.log.Error("Failed to count events", zap.Error(err))
		return nil, fmt.Errorf("count events: %w", err)
	}

	items := make([]response.EventResponse, len(events))
	for i, event := range events {
		items[i] = response.EventToResponse(event)
	}

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

func (s *eventService) GetEvent(ctx context.Context, id uuid.UUID) (*response.EventResponse, error) {
	event, err := s.repo.Event.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get event", zap.Error(err), zap.String("event_id", id.String()))
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event not found", utils.ErrNotFound)
	}

	resp := response.EventToResponse(event)
	return &resp, nil
}

func (s *eventService) CreateEvent(ctx context.Context, actor Actor, req *request.EventRequest) (*response.EventResponse, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: admin access required", utils.ErrForbidden)
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create event validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", utils.ErrValidation, utils.FormatValidationErrors(errs))
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be RFC3339", utils.ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", utils.ErrValidation)
	}

	now := s.now()
	event := &entity.Event{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Price:       req.Price.Round(2),
		ImageURL:    req.ImageURL,
		Location:    req.Location,
		OrganizerID: actor.UserID,
		IsActive:    true,
	}

	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.log.Error("Failed to create event", zap.Error(err), zap.String("title", req.Title))
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("title", event.Title),
		zap.String("organizer_id", actor.UserID.String()),
	)

	resp := response.EventToResponse(event)
	return &resp, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, actor Actor, id uuid.UUID, req *request.EventUpdateRequest) (*response.EventResponse, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: admin access required", utils.ErrForbidden)
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update event validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", utils.ErrValidation, utils.FormatValidationErrors(errs))
	}

	event, err := s.repo.Event.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find event for update", zap.Error(err), zap.String("event_id", id.String()))
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event not found", utils.ErrNotFound)
	}

	// partial update, hanya field yang dikirim
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be RFC3339", utils.ErrValidation)
		}
		event.Date = date
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", utils.ErrValidation)
		}
		event.Price = req.Price.Round(2)
	}
	if req.ImageURL != nil {
		event.ImageURL = req.ImageURL
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}
	event.UpdatedAt = s.now()

	if err := s.repo.Event.Update(ctx, event); err != nil {
		s.log.Error("Failed to update event", zap.Error(err), zap.String("event_id", id.String()))
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.log.Info("Event updated", zap.String("event_id", id.String()))

	resp := response.EventToResponse(event)
	return &resp, nil
}
