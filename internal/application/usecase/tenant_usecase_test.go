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
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake y arnés
// ──────────────────────────────────────────────────────────────────────────────

type fakeTenantRepo struct {
	tenants map[string]*entity.Tenant
}

func (r *fakeTenantRepo) Create(_ context.Context, t *entity.Tenant) error {
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r *fakeTenantRepo) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTenantRepo) Update(_ context.Context, t *entity.Tenant) error {
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

const tenantName = "Acme Corp"

func newTenantHarness(t *testing.T) (*usecase.TenantUseCase, *fakeTenantRepo, *memAuditRepo) {
	t.Helper()
	repo := &fakeTenantRepo{tenants: map[string]*entity.Tenant{
		tenantA: {ID: tenantA, Name: tenantName, Settings: map[string]string{"timezone": "UTC"}},
	}}
	auditRepo := &memAuditRepo{}
	return usecase.NewTenantUseCase(repo, audit.NewRecorder(auditRepo)), repo, auditRepo
}

func itAdminCtx(id string) rbac.Context {
	return rbac.Context{UserID: id, TenantID: tenantA, Roles: []entity.Role{entity.RoleITAdmin}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / UpdateSettings
// ──────────────────────────────────────────────────────────────────────────────

func TestTenantUpdate_AdminRenombra(t *testing.T) {
	uc, repo, auditRepo := newTenantHarness(t)

	out, err := uc.Update(context.Background(), adminCtx("admin-1"), dto.UpdateTenantRequest{Name: "Acme Corp SL"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp SL", out.Name)

	stored, _ := repo.GetByID(context.Background(), tenantA)
	assert.Equal(t, "Acme Corp SL", stored.Name)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, entity.AuditTenantUpdate, auditRepo.entries[0].Action)
}

func TestTenantUpdate_MiembroProhibido_YSinRastroEnAuditoria(t *testing.T) {
	uc, repo, auditRepo := newTenantHarness(t)

	_, err := uc.Update(context.Background(), memberCtx("u-1"), dto.UpdateTenantRequest{Name: "Intruso SA"})
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-002")

	stored, _ := repo.GetByID(context.Background(), tenantA)
	assert.Equal(t, tenantName, stored.Name, "el nombre no cambia")
	assert.Empty(t, auditRepo.entries, "una operación denegada no deja entrada de auditoría")
}

func TestTenantUpdateSettings_ReemplazaYAudita(t *testing.T) {
	uc, repo, auditRepo := newTenantHarness(t)

	out, err := uc.UpdateSettings(context.Background(), adminCtx("admin-1"), dto.TenantSettingsRequest{
		Settings: map[string]string{"timezone": "Europe/Madrid", "language": "es"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", out.Settings["timezone"])

	stored, _ := repo.GetByID(context.Background(), tenantA)
	assert.Equal(t, "es", stored.Settings["language"])
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, entity.AuditTenantSettingsChange, auditRepo.entries[0].Action)
}

// ──────────────────────────────────────────────────────────────────────────────
// SoftDelete
// ──────────────────────────────────────────────────────────────────────────────

func TestTenantSoftDelete_SoloITAdmin(t *testing.T) {
	uc, _, _ := newTenantHarness(t)

	err := uc.SoftDelete(context.Background(), adminCtx("admin-1"), dto.DeleteTenantRequest{Confirm: tenantName})
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-002")
}

func TestTenantSoftDelete_ConfirmacionIncorrecta_ERRVAL008(t *testing.T) {
	uc, _, _ := newTenantHarness(t)

	err := uc.SoftDelete(context.Background(), itAdminCtx("it-1"), dto.DeleteTenantRequest{Confirm: "acme corp"})
	wantCode(t, err, domain.KindValidation, "ERR-VAL-008")
}

func TestTenantSoftDelete_NombreExacto_MarcaYAudita(t *testing.T) {
	uc, repo, auditRepo := newTenantHarness(t)

	require.NoError(t, uc.SoftDelete(context.Background(), itAdminCtx("it-1"), dto.DeleteTenantRequest{Confirm: tenantName}))

	stored, _ := repo.GetByID(context.Background(), tenantA)
	assert.True(t, stored.Deleted())
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, entity.AuditTenantSoftDelete, auditRepo.entries[0].Action)

	// Un tenant eliminado se comporta como inexistente para el resto de
	// operaciones.
	_, err := uc.Get(context.Background(), memberCtx("u-1"))
	wantCode(t, err, domain.KindNotFound, "ERR-VAL-404")
}
