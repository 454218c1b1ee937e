package usecase

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// AuditUseCase consulta del audit log. Solo lectura: la escritura pasa
// exclusivamente por el Recorder.
type AuditUseCase struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(auditRepo repository.AuditLogRepository) *AuditUseCase {
	return &AuditUseCase{auditRepo: auditRepo}
}

// List lista entradas del tenant con filtros. Solo tenant_admin o it_admin.
func (uc *AuditUseCase) List(ctx context.Context, actor rbac.Context, in dto.ListAuditRequest) ([]*dto.AuditEntryResponse, error) {
	if err := actor.Require(entity.RoleTenantAdmin, entity.RoleITAdmin); err != nil {
		return nil, err
	}
	in.DefaultPage()
	f := repository.AuditFilter{
		Action:       in.Action,
		ResourceType: in.ResourceType,
		ActorID:      in.ActorID,
		Limit:        in.Limit,
		Offset:       in.Offset,
	}
	if in.From != "" {
		t, err := dto.ParseDate(in.From)
		if err != nil {
			return nil, domain.Invalid("ERR-VAL-002", "filtro from inválido (formato YYYY-MM-DD)")
		}
		f.From = &t
	}
	if in.To != "" {
		t, err := dto.ParseDate(in.To)
		if err != nil {
			return nil, domain.Invalid("ERR-VAL-002", "filtro to inválido (formato YYYY-MM-DD)")
		}
		f.To = &t
	}
	list, err := uc.auditRepo.List(ctx, actor.TenantID, f)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	out := make([]*dto.AuditEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.ToAuditEntryResponse(e))
	}
	return out, nil
}
