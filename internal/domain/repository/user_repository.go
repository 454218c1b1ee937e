package repository

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// UserRepository puerto de persistencia para usuarios. Los Get* acotados
// por tenant retornan (nil, nil) si no existe o pertenece a otro tenant.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.User, error)
	// GetByEmail busca globalmente (para login, antes de resolver tenant).
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.User, error)
	// CountTenantAdmins cuenta usuarios activos con rol tenant_admin en el
	// tenant, excluyendo excludeID (vacío = no excluir). Para la protección
	// de último administrador.
	CountTenantAdmins(ctx context.Context, tenantID, excludeID string) (int, error)
}
