package repository

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// TaskRepository puerto de persistencia para tareas.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Task, error)
	ListByProject(ctx context.Context, tenantID, projectID string, limit, offset int) ([]*entity.Task, error)
	Update(ctx context.Context, t *entity.Task) error
	// UpdateStatusFrom cambia el estado solo si sigue en `from` (CAS).
	UpdateStatusFrom(ctx context.Context, tenantID, id, from, to string) (bool, error)
	Delete(ctx context.Context, tenantID, id string) error
}
