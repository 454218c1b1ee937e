package rbac_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
)

func actorWith(roles ...entity.Role) rbac.Context {
	return rbac.Context{UserID: "u-1", TenantID: "t-1", Roles: roles}
}

func TestRequire_RolPresente_Pasa(t *testing.T) {
	actor := actorWith(entity.RolePM, entity.RoleMember)
	require.NoError(t, actor.Require(entity.RolePM))
	require.NoError(t, actor.Require(entity.RoleTenantAdmin, entity.RoleMember),
		"basta con uno de los roles permitidos")
}

func TestRequire_RolAusente_ERRAUTH002(t *testing.T) {
	actor := actorWith(entity.RoleMember)
	err := actor.Require(entity.RoleTenantAdmin)
	require.Error(t, err)

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.KindAuthorization, de.Kind)
	assert.Equal(t, "ERR-AUTH-002", de.Code)
	assert.Contains(t, de.Message, "tenant_admin", "el mensaje nombra los roles requeridos")
}

func TestRequire_SinTenant_ERRAUTH001(t *testing.T) {
	actor := rbac.Context{UserID: "u-1", Roles: []entity.Role{entity.RoleTenantAdmin}}
	err := actor.Require(entity.RoleTenantAdmin)
	require.Error(t, err)

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "ERR-AUTH-001", de.Code,
		"sin tenant en el contexto gana el chequeo de tenant, no el de rol")
}

func TestRequireAny(t *testing.T) {
	require.NoError(t, actorWith(entity.RoleMember).RequireAny())

	err := actorWith().RequireAny()
	require.Error(t, err, "sin ningún rol en el tenant no hay acceso")

	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "ERR-AUTH-002", de.Code)
}

func TestHasRole_InterseccionDeConjuntos(t *testing.T) {
	actor := actorWith(entity.RoleApprover, entity.RoleAccounting)
	assert.True(t, actor.HasRole(entity.RoleAccounting))
	assert.True(t, actor.HasRole(entity.RolePM, entity.RoleApprover))
	assert.False(t, actor.HasRole(entity.RolePM, entity.RoleITAdmin))
	assert.False(t, actor.HasRole())
}

func TestIsTenantAdmin(t *testing.T) {
	assert.True(t, actorWith(entity.RoleMember, entity.RoleTenantAdmin).IsTenantAdmin())
	assert.False(t, actorWith(entity.RoleITAdmin).IsTenantAdmin(),
		"it_admin no implica tenant_admin")
}

func TestRolesFromStrings_DescartaDesconocidos(t *testing.T) {
	roles := rbac.RolesFromStrings([]string{"pm", "superuser", "member", ""})
	assert.Equal(t, []entity.Role{entity.RolePM, entity.RoleMember}, roles,
		"los roles no reconocidos de tokens viejos se descartan en silencio")
}

func TestValid(t *testing.T) {
	assert.True(t, actorWith().Valid())
	assert.False(t, rbac.Context{UserID: "u-1"}.Valid())
	assert.False(t, rbac.Context{TenantID: "t-1"}.Valid())
	assert.False(t, rbac.Context{}.Valid())
}
