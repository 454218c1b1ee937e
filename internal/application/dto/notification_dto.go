package dto

import (
	"time"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// ListNotificationsRequest filtros de GET /api/notifications.
type ListNotificationsRequest struct {
	PageRequest
	UnreadOnly bool `query:"unread_only"`
}

// NotificationResponse notificación in-app en respuestas.
type NotificationResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToNotificationResponse convierte la entidad al DTO de respuesta.
func ToNotificationResponse(n *entity.Notification) *NotificationResponse {
	if n == nil {
		return nil
	}
	return &NotificationResponse{
		ID:           n.ID,
		Type:         n.Type,
		Title:        n.Title,
		Body:         n.Body,
		ResourceType: n.ResourceType,
		ResourceID:   n.ResourceID,
		Read:         n.Read,
		CreatedAt:    n.CreatedAt,
	}
}
