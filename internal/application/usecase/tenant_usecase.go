package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// Códigos de negocio del tenant.
const (
	codeTenantNotFound = "ERR-VAL-404"
	codeTenantConfirm  = "ERR-VAL-008" // la confirmación no coincide con el nombre
)

// TenantUseCase ajustes y ciclo de vida del tenant.
type TenantUseCase struct {
	tenantRepo repository.TenantRepository
	recorder   *audit.Recorder
}

// NewTenantUseCase construye el caso de uso.
func NewTenantUseCase(tenantRepo repository.TenantRepository, recorder *audit.Recorder) *TenantUseCase {
	return &TenantUseCase{tenantRepo: tenantRepo, recorder: recorder}
}

// Get obtiene el tenant del actor. Visible para cualquier usuario del tenant.
func (uc *TenantUseCase) Get(ctx context.Context, actor rbac.Context) (*dto.TenantResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	t, err := uc.getLive(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	return dto.ToTenantResponse(t), nil
}

// Update cambia el nombre del tenant. Solo tenant_admin.
func (uc *TenantUseCase) Update(ctx context.Context, actor rbac.Context, in dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	if err := actor.Require(entity.RoleTenantAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("ERR-VAL-001", "el nombre del tenant es obligatorio")
	}
	t, err := uc.getLive(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToTenantResponse(t))
	t.Name = name
	t.UpdatedAt = time.Now()

	if err := uc.tenantRepo.Update(ctx, t); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditTenantUpdate,
		ResourceType: "tenant",
		ResourceID:   t.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToTenantResponse(t)),
	}); err != nil {
		return nil, err
	}
	return dto.ToTenantResponse(t), nil
}

// UpdateSettings reemplaza los ajustes clave-valor. Solo tenant_admin.
func (uc *TenantUseCase) UpdateSettings(ctx context.Context, actor rbac.Context, in dto.TenantSettingsRequest) (*dto.TenantResponse, error) {
	if err := actor.Require(entity.RoleTenantAdmin); err != nil {
		return nil, err
	}
	if in.Settings == nil {
		return nil, domain.Invalid("ERR-VAL-001", "settings no puede ser nulo")
	}
	t, err := uc.getLive(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToTenantResponse(t))
	t.Settings = in.Settings
	t.UpdatedAt = time.Now()

	if err := uc.tenantRepo.Update(ctx, t); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditTenantSettingsChange,
		ResourceType: "tenant",
		ResourceID:   t.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToTenantResponse(t)),
	}); err != nil {
		return nil, err
	}
	return dto.ToTenantResponse(t), nil
}

// SoftDelete marca el tenant como eliminado. Solo it_admin y con
// confirmación del nombre exacto. Recuperable durante 30 días; la purga
// definitiva corre fuera de la aplicación.
func (uc *TenantUseCase) SoftDelete(ctx context.Context, actor rbac.Context, in dto.DeleteTenantRequest) error {
	if err := actor.Require(entity.RoleITAdmin); err != nil {
		return err
	}
	t, err := uc.getLive(ctx, actor.TenantID)
	if err != nil {
		return err
	}
	if in.Confirm != t.Name {
		return domain.Invalid(codeTenantConfirm, "la confirmación debe ser el nombre exacto del tenant")
	}

	before := audit.Snapshot(dto.ToTenantResponse(t))
	now := time.Now()
	t.DeletedAt = &now
	t.UpdatedAt = now

	if err := uc.tenantRepo.Update(ctx, t); err != nil {
		return domain.Wrap(err)
	}
	return uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditTenantSoftDelete,
		ResourceType: "tenant",
		ResourceID:   t.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToTenantResponse(t)),
	})
}

// getLive carga el tenant tratando los soft-deleted como inexistentes.
func (uc *TenantUseCase) getLive(ctx context.Context, tenantID string) (*entity.Tenant, error) {
	t, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if t == nil || t.Deleted() {
		return nil, domain.NotFound(codeTenantNotFound, "el tenant")
	}
	return t, nil
}
