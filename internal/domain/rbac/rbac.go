// Package rbac evalúa permisos por rol dentro de un tenant. Puro y sin
// estado: todas las decisiones son cómputos por llamada sobre el Context
// explícito, seguro de paralelizar sin coordinación.
package rbac

import (
	"strings"

	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// Context identidad que ejecuta la operación: usuario, tenant elegido al
// autenticarse y roles dentro de ese tenant. Se pasa explícito a cada
// llamada de servicio — nunca estado ambiental ni thread-local.
type Context struct {
	UserID   string
	TenantID string
	Roles    []entity.Role
}

// Valid reporta si el contexto tiene usuario y tenant resueltos.
func (c Context) Valid() bool { return c.UserID != "" && c.TenantID != "" }

// RequireTenant falla con ERR-AUTH-001 si no hay tenant en el contexto.
func (c Context) RequireTenant() error {
	if !c.Valid() {
		return domain.Authz(domain.CodeNoTenant, "el usuario no tiene tenant en el contexto")
	}
	return nil
}

// HasRole reporta si el contexto posee al menos uno de los roles dados
// (intersección de conjuntos).
func (c Context) HasRole(allowed ...entity.Role) bool {
	for _, want := range allowed {
		for _, have := range c.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Require es HasRole elevando AuthorizationError ERR-AUTH-002 en fallo.
func (c Context) Require(allowed ...entity.Role) error {
	if err := c.RequireTenant(); err != nil {
		return err
	}
	if c.HasRole(allowed...) {
		return nil
	}
	names := make([]string, len(allowed))
	for i, r := range allowed {
		names[i] = string(r)
	}
	return domain.Authz(domain.CodeRole, "se requiere alguno de los roles: "+strings.Join(names, ", "))
}

// RequireAny exige contexto válido con al menos un rol reconocido en el
// tenant (operaciones abiertas a cualquier usuario del tenant).
func (c Context) RequireAny() error {
	if err := c.RequireTenant(); err != nil {
		return err
	}
	if len(c.Roles) == 0 {
		return domain.Authz(domain.CodeRole, "el usuario no tiene roles en el tenant")
	}
	return nil
}

// IsTenantAdmin atajo frecuente.
func (c Context) IsTenantAdmin() bool { return c.HasRole(entity.RoleTenantAdmin) }

// RolesFromStrings convierte claims []string a roles tipados, descartando
// valores no reconocidos (tokens viejos con roles retirados).
func RolesFromStrings(ss []string) []entity.Role {
	out := make([]entity.Role, 0, len(ss))
	for _, s := range ss {
		if entity.ValidRole(s) {
			out = append(out, entity.Role(s))
		}
	}
	return out
}
