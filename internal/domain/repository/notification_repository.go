package repository

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// NotificationRepository puerto de persistencia para notificaciones in-app.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, tenantID, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, tenantID, userID, id string) error
}
