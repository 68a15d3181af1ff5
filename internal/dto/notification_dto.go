package dto

import (
	"time"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

// NotificationResponse is one entry in the manager activity feed.
type NotificationResponse struct {
	ID        uint           `json:"id"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	PlanID    *uint          `json:"plan_id"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewNotificationResponse converts a model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		Type:      model.Type,
		Message:   model.Message,
		PlanID:    model.PlanID,
		Metadata:  model.Metadata,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}

	return responses
}
