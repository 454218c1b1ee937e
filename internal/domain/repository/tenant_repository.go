package repository

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// TenantRepository puerto de persistencia para tenants.
type TenantRepository interface {
	Create(ctx context.Context, t *entity.Tenant) error
	// GetByID retorna también tenants soft-deleted; el servicio decide si
	// los trata como inexistentes.
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	Update(ctx context.Context, t *entity.Tenant) error
}
