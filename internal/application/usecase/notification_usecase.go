package usecase

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// NotificationUseCase bandeja de notificaciones del usuario.
type NotificationUseCase struct {
	repo repository.NotificationRepository
}

// NewNotificationUseCase construye el caso de uso.
func NewNotificationUseCase(repo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{repo: repo}
}

// List lista las notificaciones del propio actor.
func (uc *NotificationUseCase) List(ctx context.Context, actor rbac.Context, in dto.ListNotificationsRequest) ([]*dto.NotificationResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := uc.repo.ListByUser(ctx, actor.TenantID, actor.UserID, in.UnreadOnly, in.Limit, in.Offset)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	out := make([]*dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, dto.ToNotificationResponse(n))
	}
	return out, nil
}

// MarkRead marca como leída una notificación propia. Idempotente: marcar
// una ya leída no es error.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, actor rbac.Context, id string) error {
	if err := actor.RequireAny(); err != nil {
		return err
	}
	if err := uc.repo.MarkRead(ctx, actor.TenantID, actor.UserID, id); err != nil {
		return domain.Wrap(err)
	}
	return nil
}
