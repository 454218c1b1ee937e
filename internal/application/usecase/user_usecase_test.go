package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memUserRepo struct {
	users map[string]*entity.User
}

func newMemUserRepo(users ...*entity.User) *memUserRepo {
	r := &memUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, tenantID, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) ListByTenant(_ context.Context, tenantID string, _, _ int) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		if u.TenantID == tenantID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memUserRepo) CountTenantAdmins(_ context.Context, tenantID, excludeID string) (int, error) {
	n := 0
	for _, u := range r.users {
		if u.TenantID == tenantID && u.Status == entity.UserStatusActive &&
			u.HasRole(entity.RoleTenantAdmin) && u.ID != excludeID {
			n++
		}
	}
	return n, nil
}

type memAuditRepo struct {
	entries []*entity.AuditEntry
}

func (r *memAuditRepo) Insert(_ context.Context, e *entity.AuditEntry) error {
	r.entries = append(r.entries, e)
	return nil
}
func (r *memAuditRepo) List(_ context.Context, _ string, _ repository.AuditFilter) ([]*entity.AuditEntry, error) {
	return r.entries, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Arnés
// ──────────────────────────────────────────────────────────────────────────────

const tenantA = "t-a"

func adminCtx(id string) rbac.Context {
	return rbac.Context{UserID: id, TenantID: tenantA, Roles: []entity.Role{entity.RoleTenantAdmin}}
}

func activeUser(id string, roles ...entity.Role) *entity.User {
	return &entity.User{
		ID: id, TenantID: tenantA, Email: id + "@acme.test",
		Roles: roles, Status: entity.UserStatusActive,
	}
}

func wantCode(t *testing.T, err error, kind domain.Kind, code string) {
	t.Helper()
	require.Error(t, err)
	de, ok := domain.AsError(err)
	require.True(t, ok, "el error debe ser *domain.Error, got: %v", err)
	assert.Equal(t, kind, de.Kind)
	assert.Equal(t, code, de.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invite / Activate
// ──────────────────────────────────────────────────────────────────────────────

func TestInvite_CreaInvitadoYAudita(t *testing.T) {
	repo := newMemUserRepo(activeUser("admin-1", entity.RoleTenantAdmin))
	auditRepo := &memAuditRepo{}
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(auditRepo))

	out, err := uc.Invite(context.Background(), adminCtx("admin-1"), dto.InviteUserRequest{
		Email: "Nuevo@Acme.Test", Roles: []string{"member", "pm"},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.UserStatusInvited, out.Status)
	assert.Equal(t, "nuevo@acme.test", out.Email, "el email se normaliza a minúsculas")
	assert.ElementsMatch(t, []string{"member", "pm"}, out.Roles)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, entity.AuditUserInvite, auditRepo.entries[0].Action)
}

func TestInvite_PorNoAdmin_ERRAUTH002(t *testing.T) {
	repo := newMemUserRepo()
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(&memAuditRepo{}))

	member := rbac.Context{UserID: "u-1", TenantID: tenantA, Roles: []entity.Role{entity.RoleMember}}
	_, err := uc.Invite(context.Background(), member, dto.InviteUserRequest{
		Email: "x@acme.test", Roles: []string{"member"},
	})
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-002")
}

func TestInvite_EmailDuplicado_ERRVAL006(t *testing.T) {
	existing := activeUser("u-1", entity.RoleMember)
	existing.Email = "dup@acme.test"
	repo := newMemUserRepo(activeUser("admin-1", entity.RoleTenantAdmin), existing)
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(&memAuditRepo{}))

	_, err := uc.Invite(context.Background(), adminCtx("admin-1"), dto.InviteUserRequest{
		Email: "dup@acme.test", Roles: []string{"member"},
	})
	wantCode(t, err, domain.KindValidation, "ERR-VAL-006")
}

func TestInvite_ConcederITAdminSinSerlo_ERRAUTH006(t *testing.T) {
	repo := newMemUserRepo(activeUser("admin-1", entity.RoleTenantAdmin))
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(&memAuditRepo{}))

	_, err := uc.Invite(context.Background(), adminCtx("admin-1"), dto.InviteUserRequest{
		Email: "x@acme.test", Roles: []string{"it_admin"},
	})
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-006")
}

func TestActivate_Invitado_QuedaActivo(t *testing.T) {
	invited := &entity.User{
		ID: "u-inv", TenantID: tenantA, Email: "inv@acme.test",
		Roles: []entity.Role{entity.RoleMember}, Status: entity.UserStatusInvited,
	}
	repo := newMemUserRepo(invited)
	auditRepo := &memAuditRepo{}
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(auditRepo))

	out, err := uc.Activate(context.Background(), tenantA, "u-inv", dto.ActivateUserRequest{Password: "secreta123"})
	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusActive, out.Status)

	stored, _ := repo.GetByID(context.Background(), tenantA, "u-inv")
	assert.NotEmpty(t, stored.PasswordHash)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, "u-inv", auditRepo.entries[0].ActorID, "el propio invitado es el actor")
}

func TestActivate_YaActivo_ERRVAL007(t *testing.T) {
	repo := newMemUserRepo(activeUser("u-1", entity.RoleMember))
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(&memAuditRepo{}))

	_, err := uc.Activate(context.Background(), tenantA, "u-1", dto.ActivateUserRequest{Password: "secreta123"})
	wantCode(t, err, domain.KindValidation, "ERR-VAL-007")
}

func TestActivate_PasswordCorta_ERRVAL001(t *testing.T) {
	repo := newMemUserRepo()
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(&memAuditRepo{}))

	_, err := uc.Activate(context.Background(), tenantA, "u-x", dto.ActivateUserRequest{Password: "corta"})
	wantCode(t, err, domain.KindValidation, "ERR-VAL-001")
}

// ──────────────────────────────────────────────────────────────────────────────
// ChangeRoles / Deactivate — protecciones
// ──────────────────────────────────────────────────────────────────────────────

func TestChangeRoles_SobreUnoMismo_ERRAUTH004(t *testing.T) {
	repo := newMemUserRepo(activeUser("admin-1", entity.RoleTenantAdmin))
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(&memAuditRepo{}))

	_, err := uc.ChangeRoles(context.Background(), adminCtx("admin-1"), "admin-1", dto.ChangeRolesRequest{Roles: []string{"member"}})
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-004")
}

func TestChangeRoles_QuitarAdminAlUltimo_ERRAUTH005(t *testing.T) {
	// admin-1 es el único tenant_admin activo: el otro admin del tenant
	// está deshabilitado y no cuenta para la protección.
	disabledAdmin := activeUser("admin-off", entity.RoleTenantAdmin)
	disabledAdmin.Status = entity.UserStatusDisabled
	repo := newMemUserRepo(activeUser("admin-1", entity.RoleTenantAdmin), disabledAdmin)
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(&memAuditRepo{}))

	_, err := uc.ChangeRoles(context.Background(), adminCtx("admin-off"), "admin-1", dto.ChangeRolesRequest{Roles: []string{"member"}})
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-005")
}

func TestChangeRoles_QuitarAdminConOtroActivo_OK(t *testing.T) {
	repo := newMemUserRepo(
		activeUser("admin-1", entity.RoleTenantAdmin),
		activeUser("admin-2", entity.RoleTenantAdmin),
	)
	auditRepo := &memAuditRepo{}
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(auditRepo))

	out, err := uc.ChangeRoles(context.Background(), adminCtx("admin-1"), "admin-2", dto.ChangeRolesRequest{Roles: []string{"member"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"member"}, out.Roles)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, entity.AuditUserRoleChange, auditRepo.entries[0].Action)
}

func TestDeactivate_UltimoAdmin_ERRAUTH005(t *testing.T) {
	repo := newMemUserRepo(
		activeUser("admin-1", entity.RoleTenantAdmin),
		activeUser("admin-2", entity.RoleTenantAdmin),
	)
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(&memAuditRepo{}))

	// admin-1 deshabilita a admin-2: válido, queda admin-1.
	_, err := uc.Deactivate(context.Background(), adminCtx("admin-1"), "admin-2")
	require.NoError(t, err)

	// Ahora admin-2 está deshabilitado; nadie puede deshabilitar a admin-1.
	_, err = uc.Deactivate(context.Background(), adminCtx("admin-2"), "admin-1")
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-005")
}

func TestDeactivate_SobreUnoMismo_ERRAUTH004(t *testing.T) {
	repo := newMemUserRepo(activeUser("admin-1", entity.RoleTenantAdmin))
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(&memAuditRepo{}))

	_, err := uc.Deactivate(context.Background(), adminCtx("admin-1"), "admin-1")
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-004")
}

func TestReactivate_CuentaDeshabilitada_OK(t *testing.T) {
	disabled := activeUser("u-1", entity.RoleMember)
	disabled.Status = entity.UserStatusDisabled
	repo := newMemUserRepo(activeUser("admin-1", entity.RoleTenantAdmin), disabled)
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(&memAuditRepo{}))

	out, err := uc.Reactivate(context.Background(), adminCtx("admin-1"), "u-1")
	require.NoError(t, err)
	assert.Equal(t, entity.UserStatusActive, out.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// ResetPassword — higiene del audit log
// ──────────────────────────────────────────────────────────────────────────────

func TestResetPassword_AuditaSinSnapshots(t *testing.T) {
	repo := newMemUserRepo(
		activeUser("admin-1", entity.RoleTenantAdmin),
		activeUser("u-1", entity.RoleMember),
	)
	auditRepo := &memAuditRepo{}
	uc := usecase.NewUserUseCase(repo, audit.NewRecorder(auditRepo))

	err := uc.ResetPassword(context.Background(), adminCtx("admin-1"), "u-1", dto.ResetPasswordRequest{Password: "nuevaclave9"})
	require.NoError(t, err)

	stored, _ := repo.GetByID(context.Background(), tenantA, "u-1")
	assert.NotEmpty(t, stored.PasswordHash)

	require.Len(t, auditRepo.entries, 1)
	e := auditRepo.entries[0]
	assert.Equal(t, entity.AuditUserPasswordReset, e.Action)
	assert.Nil(t, e.Before, "la entrada de reset jamás transporta material de credenciales")
	assert.Nil(t, e.After)
}
