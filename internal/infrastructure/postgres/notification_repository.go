package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación del puerto NotificationRepository sobre
// PostgreSQL.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador de notificaciones.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create persiste una notificación nueva.
func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, tenant_id, user_id, type, title, body,
			resource_type, resource_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		n.ID, n.TenantID, n.UserID, n.Type, n.Title, n.Body,
		n.ResourceType, n.ResourceID, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByUser lista notificaciones del destinatario, más recientes primero.
func (r *NotificationRepo) ListByUser(ctx context.Context, tenantID, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	query := `
		SELECT id, tenant_id, user_id, type, title, body, resource_type, resource_id, read, created_at
		FROM notifications
		WHERE tenant_id = $1 AND user_id = $2 AND ($3 = false OR read = false)
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, tenantID, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	var list []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.TenantID, &n.UserID, &n.Type, &n.Title, &n.Body,
			&n.ResourceType, &n.ResourceID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// MarkRead marca como leída una notificación del destinatario. Idempotente.
func (r *NotificationRepo) MarkRead(ctx context.Context, tenantID, userID, id string) error {
	query := `
		UPDATE notifications SET read = true
		WHERE id = $1 AND tenant_id = $2 AND user_id = $3`
	_, err := r.q.Exec(ctx, query, id, tenantID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
