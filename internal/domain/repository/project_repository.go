package repository

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// ProjectRepository puerto de persistencia para proyectos y su membresía.
type ProjectRepository interface {
	// Create persiste el proyecto y su membresía inicial (PM incluido).
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Project, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Project, error)
	Update(ctx context.Context, p *entity.Project) error
	// UpdateStatusFrom cambia el estado solo si sigue en `from` (CAS).
	UpdateStatusFrom(ctx context.Context, tenantID, id, from, to string) (bool, error)
	AddMember(ctx context.Context, tenantID, projectID, userID string) error
	RemoveMember(ctx context.Context, tenantID, projectID, userID string) error
	// ListIDsByPM proyectos gestionados por el PM (lectura de facturas).
	ListIDsByPM(ctx context.Context, tenantID, pmID string) ([]string, error)
}
