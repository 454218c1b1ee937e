package auth

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// TxRunner ejecuta el registro de tenant (tenant + primer tenant_admin) en
// una sola transacción: nunca queda un tenant sin administrador.
type TxRunner interface {
	RunRegistration(ctx context.Context, fn func(
		tenantRepo repository.TenantRepository,
		userRepo repository.UserRepository,
	) error) error
}
