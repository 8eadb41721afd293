package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Price       string    `json:"price"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Location    string    `json:"location"`
	OrganizerID string    `json:"organizer_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventSummary dipakai nested di order dan ticket
type EventSummary struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
}

func EventToResponse(event *entity.Event) EventResponse {
	return EventResponse{
		ID:          event.ID.String(),
		Title:       event.Title,
		Description: event.Description,
		Date:        event.Date,
		Price:       event.Price.StringFixed(2),
		ImageURL:    event.ImageURL,
		Location:    event.Location,
		OrganizerID: event.OrganizerID.String(),
		IsActive:    event.IsActive,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func EventToSummary(event *entity.Event) *EventSummary {
	if event == nil {
		return nil
	}
	return &EventSummary{
		ID:       event.ID.String(),
		Title:    event.Title,
		Date:     event.Date,
		Location: event.Location,
	}
}
