package approval

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/notify"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
	"github.com/tu-usuario/backoffice-pro/internal/domain/statemachine"
)

// Códigos de negocio del workflow (además de ERR-WF-001, la transición).
const (
	codeWFNotFound       = "ERR-WF-404"
	codeWFSubmitTitle    = "ERR-WF-002" // enviar sin título
	codeWFSubmitApprover = "ERR-WF-003" // enviar sin aprobador designado
	codeWFRejectReason   = "ERR-WF-004" // rechazar sin motivo
	codeWFNotEditable    = "ERR-WF-005" // editar fuera de draft/rejected
)

// WorkflowUseCase reglas de negocio de solicitudes de aprobación.
type WorkflowUseCase struct {
	wfRepo     repository.WorkflowRepository
	userRepo   repository.UserRepository
	txRunner   TxRunner
	recorder   *audit.Recorder
	dispatcher *notify.Dispatcher
}

// NewWorkflowUseCase construye el caso de uso.
func NewWorkflowUseCase(
	wfRepo repository.WorkflowRepository,
	userRepo repository.UserRepository,
	txRunner TxRunner,
	recorder *audit.Recorder,
	dispatcher *notify.Dispatcher,
) *WorkflowUseCase {
	return &WorkflowUseCase{
		wfRepo:     wfRepo,
		userRepo:   userRepo,
		txRunner:   txRunner,
		recorder:   recorder,
		dispatcher: dispatcher,
	}
}

// Create crea una solicitud en draft o, con Submit=true, directamente
// enviada. El consecutivo por tenant se genera de forma atómica dentro de
// la misma transacción que el insert.
func (uc *WorkflowUseCase) Create(ctx context.Context, actor rbac.Context, in dto.CreateWorkflowRequest) (*dto.WorkflowResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	if !entity.ValidWorkflowType(in.Type) {
		return nil, domain.Invalid("ERR-VAL-001", "tipo de solicitud no reconocido")
	}
	start, end, err := parseDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if in.Amount != nil && in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.Invalid("ERR-VAL-004", "el monto debe ser mayor que cero")
	}
	if in.ApproverID != "" {
		if err := uc.checkApprover(ctx, actor.TenantID, in.ApproverID); err != nil {
			return nil, err
		}
	}

	status := entity.WorkflowStatusDraft
	if in.Submit {
		// Un borrador puede nacer incompleto; una solicitud enviada no.
		if in.Title == "" {
			return nil, domain.Invalid(codeWFSubmitTitle, "el título es obligatorio para enviar la solicitud")
		}
		if in.ApproverID == "" {
			return nil, domain.Invalid(codeWFSubmitApprover, "la solicitud necesita un aprobador designado para enviarse")
		}
		status = entity.WorkflowStatusSubmitted
	}

	now := time.Now()
	wf := &entity.Workflow{
		ID:          uuid.New().String(),
		TenantID:    actor.TenantID,
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Amount:      in.Amount,
		StartDate:   start,
		EndDate:     end,
		Status:      status,
		ApproverID:  in.ApproverID,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = uc.txRunner.RunApproval(ctx, func(
		wfRepo repository.WorkflowRepository,
		_ repository.ExpenseRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		number, err := wfRepo.NextNumber(ctx, actor.TenantID)
		if err != nil {
			return err
		}
		wf.Number = number
		if err := wfRepo.Create(ctx, wf); err != nil {
			return err
		}
		return uc.recorder.WithRepo(auditRepo).Record(ctx, audit.Entry{
			TenantID:     actor.TenantID,
			ActorID:      actor.UserID,
			Action:       entity.AuditWorkflowCreate,
			ResourceType: "workflow",
			ResourceID:   wf.ID,
			After:        audit.Snapshot(dto.ToWorkflowResponse(wf)),
		})
	})
	if err != nil {
		return nil, domain.Wrap(err)
	}

	if wf.Status == entity.WorkflowStatusSubmitted {
		uc.dispatcher.WorkflowSubmitted(ctx, wf)
	}
	return dto.ToWorkflowResponse(wf), nil
}

// Update edita campos de la solicitud. Solo el creador; solo en draft o
// rejected (la reedición precede al reenvío).
func (uc *WorkflowUseCase) Update(ctx context.Context, actor rbac.Context, id string, in dto.UpdateWorkflowRequest) (*dto.WorkflowResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	wf, err := uc.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if wf.Status != entity.WorkflowStatusDraft && wf.Status != entity.WorkflowStatusRejected {
		return nil, domain.Invalid(codeWFNotEditable, "solo solicitudes en borrador o rechazadas se pueden editar")
	}
	start, end, err := parseDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if in.Amount != nil && in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.Invalid("ERR-VAL-004", "el monto debe ser mayor que cero")
	}
	if in.ApproverID != "" && in.ApproverID != wf.ApproverID {
		if err := uc.checkApprover(ctx, actor.TenantID, in.ApproverID); err != nil {
			return nil, err
		}
	}

	before := audit.Snapshot(dto.ToWorkflowResponse(wf))
	wf.Title = in.Title
	wf.Description = in.Description
	wf.Amount = in.Amount
	wf.StartDate = start
	wf.EndDate = end
	wf.ApproverID = in.ApproverID
	wf.UpdatedAt = time.Now()

	if err := uc.wfRepo.Update(ctx, wf); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditWorkflowUpdate,
		ResourceType: "workflow",
		ResourceID:   wf.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToWorkflowResponse(wf)),
	}); err != nil {
		return nil, err
	}
	return dto.ToWorkflowResponse(wf), nil
}

// Submit envía la solicitud (draft|rejected → submitted). Solo el creador.
// Título y aprobador se re-verifican en el momento de la transición.
func (uc *WorkflowUseCase) Submit(ctx context.Context, actor rbac.Context, id string) (*dto.WorkflowResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	wf, err := uc.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if wf.Title == "" {
		return nil, domain.Invalid(codeWFSubmitTitle, "el título es obligatorio para enviar la solicitud")
	}
	if wf.ApproverID == "" {
		return nil, domain.Invalid(codeWFSubmitApprover, "la solicitud necesita un aprobador designado para enviarse")
	}
	if err := statemachine.Check(statemachine.EntityWorkflow, wf.Status, entity.WorkflowStatusSubmitted); err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToWorkflowResponse(wf))
	from := wf.Status
	wf.Status = entity.WorkflowStatusSubmitted
	wf.RejectionReason = "" // rejection_reason solo vive en rejected
	wf.ApprovedAt = nil
	wf.UpdatedAt = time.Now()

	if err := uc.applyTransition(ctx, wf, from); err != nil {
		return nil, err
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditWorkflowSubmit,
		ResourceType: "workflow",
		ResourceID:   wf.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToWorkflowResponse(wf)),
	}); err != nil {
		return nil, err
	}
	uc.dispatcher.WorkflowSubmitted(ctx, wf)
	return dto.ToWorkflowResponse(wf), nil
}

// Approve aprueba la solicitud. Solo el aprobador designado o un
// tenant_admin. Bajo dos aprobaciones concurrentes exactamente una gana:
// la otra pierde el compare-and-set y recibe StateTransitionError.
func (uc *WorkflowUseCase) Approve(ctx context.Context, actor rbac.Context, id string) (*dto.WorkflowResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	wf, err := uc.getForDecision(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.Check(statemachine.EntityWorkflow, wf.Status, entity.WorkflowStatusApproved); err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToWorkflowResponse(wf))
	from := wf.Status
	now := time.Now()
	wf.Status = entity.WorkflowStatusApproved
	wf.ApprovedAt = &now // approved_at seteado si y solo si approved
	wf.UpdatedAt = now

	if err := uc.applyTransition(ctx, wf, from); err != nil {
		return nil, err
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditWorkflowApprove,
		ResourceType: "workflow",
		ResourceID:   wf.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToWorkflowResponse(wf)),
	}); err != nil {
		return nil, err
	}
	uc.dispatcher.WorkflowApproved(ctx, wf)
	return dto.ToWorkflowResponse(wf), nil
}

// Reject rechaza la solicitud con motivo obligatorio, que se persiste
// junto con el cambio de estado.
func (uc *WorkflowUseCase) Reject(ctx context.Context, actor rbac.Context, id, reason string) (*dto.WorkflowResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, domain.Invalid(codeWFRejectReason, "el motivo de rechazo es obligatorio")
	}
	wf, err := uc.getForDecision(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.Check(statemachine.EntityWorkflow, wf.Status, entity.WorkflowStatusRejected); err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToWorkflowResponse(wf))
	from := wf.Status
	wf.Status = entity.WorkflowStatusRejected
	wf.RejectionReason = reason
	wf.ApprovedAt = nil
	wf.UpdatedAt = time.Now()

	if err := uc.applyTransition(ctx, wf, from); err != nil {
		return nil, err
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditWorkflowReject,
		ResourceType: "workflow",
		ResourceID:   wf.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToWorkflowResponse(wf)),
	}); err != nil {
		return nil, err
	}
	uc.dispatcher.WorkflowRejected(ctx, wf)
	return dto.ToWorkflowResponse(wf), nil
}

// Withdraw retira la solicitud (submitted|rejected → withdrawn). Solo el
// creador.
func (uc *WorkflowUseCase) Withdraw(ctx context.Context, actor rbac.Context, id string) (*dto.WorkflowResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	wf, err := uc.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.Check(statemachine.EntityWorkflow, wf.Status, entity.WorkflowStatusWithdrawn); err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToWorkflowResponse(wf))
	from := wf.Status
	wf.Status = entity.WorkflowStatusWithdrawn
	wf.RejectionReason = ""
	wf.UpdatedAt = time.Now()

	if err := uc.applyTransition(ctx, wf, from); err != nil {
		return nil, err
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditWorkflowWithdraw,
		ResourceType: "workflow",
		ResourceID:   wf.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToWorkflowResponse(wf)),
	}); err != nil {
		return nil, err
	}
	return dto.ToWorkflowResponse(wf), nil
}

// Get obtiene una solicitud del tenant del actor.
func (uc *WorkflowUseCase) Get(ctx context.Context, actor rbac.Context, id string) (*dto.WorkflowResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	wf, err := uc.wfRepo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if wf == nil {
		return nil, domain.NotFound(codeWFNotFound, "la solicitud")
	}
	return dto.ToWorkflowResponse(wf), nil
}

// List lista solicitudes del tenant con filtros de igualdad.
func (uc *WorkflowUseCase) List(ctx context.Context, actor rbac.Context, in dto.ListWorkflowsRequest) ([]*dto.WorkflowResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := uc.wfRepo.List(ctx, actor.TenantID, repository.WorkflowFilter{
		Status:     in.Status,
		Type:       in.Type,
		CreatedBy:  in.CreatedBy,
		ApproverID: in.ApproverID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, domain.Wrap(err)
	}
	out := make([]*dto.WorkflowResponse, 0, len(list))
	for _, wf := range list {
		out = append(out, dto.ToWorkflowResponse(wf))
	}
	return out, nil
}

// ── internos ──────────────────────────────────────────────────────────────────

// applyTransition escribe el cambio de estado con compare-and-set. Si otro
// escritor ganó la carrera, se relee el estado fresco y se responde con el
// StateTransitionError correspondiente (nunca éxito silencioso doble).
func (uc *WorkflowUseCase) applyTransition(ctx context.Context, wf *entity.Workflow, from string) error {
	ok, err := uc.wfRepo.UpdateStatusFrom(ctx, wf, from)
	if err != nil {
		return domain.Wrap(err)
	}
	if ok {
		return nil
	}
	fresh, err := uc.wfRepo.GetByID(ctx, wf.TenantID, wf.ID)
	if err != nil {
		return domain.Wrap(err)
	}
	if fresh == nil {
		return domain.NotFound(codeWFNotFound, "la solicitud")
	}
	return domain.Transition(statemachine.CodeWorkflowTransition, "workflow", fresh.Status, wf.Status)
}

// getOwned carga la solicitud y exige que el actor sea su creador.
func (uc *WorkflowUseCase) getOwned(ctx context.Context, actor rbac.Context, id string) (*entity.Workflow, error) {
	wf, err := uc.wfRepo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if wf == nil {
		return nil, domain.NotFound(codeWFNotFound, "la solicitud")
	}
	if wf.CreatedBy != actor.UserID {
		return nil, domain.Authz(domain.CodeNotOwner, "solo el creador puede operar esta solicitud")
	}
	return wf, nil
}

// getForDecision carga la solicitud y exige aprobador designado o
// tenant_admin.
func (uc *WorkflowUseCase) getForDecision(ctx context.Context, actor rbac.Context, id string) (*entity.Workflow, error) {
	wf, err := uc.wfRepo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if wf == nil {
		return nil, domain.NotFound(codeWFNotFound, "la solicitud")
	}
	if wf.ApproverID != actor.UserID && !actor.IsTenantAdmin() {
		return nil, domain.Authz(domain.CodeNotOwner, "solo el aprobador designado o un tenant_admin puede decidir esta solicitud")
	}
	return wf, nil
}

// checkApprover valida que el aprobador exista en el tenant, esté activo y
// tenga un rol aprobador.
func (uc *WorkflowUseCase) checkApprover(ctx context.Context, tenantID, approverID string) error {
	u, err := uc.userRepo.GetByID(ctx, tenantID, approverID)
	if err != nil {
		return domain.Wrap(err)
	}
	if u == nil || u.Status != entity.UserStatusActive {
		return domain.Invalid("ERR-VAL-005", "el aprobador no existe o no está activo en el tenant")
	}
	if !u.HasRole(entity.RoleApprover) && !u.HasRole(entity.RoleTenantAdmin) {
		return domain.Invalid("ERR-VAL-005", "el usuario designado no tiene rol aprobador")
	}
	return nil
}

// parseDateRange parsea y valida el rango opcional (end >= start).
func parseDateRange(startStr, endStr *string) (start, end *time.Time, err error) {
	if startStr != nil && *startStr != "" {
		t, perr := dto.ParseDate(*startStr)
		if perr != nil {
			return nil, nil, domain.Invalid("ERR-VAL-002", "fecha de inicio inválida (formato YYYY-MM-DD)")
		}
		start = &t
	}
	if endStr != nil && *endStr != "" {
		t, perr := dto.ParseDate(*endStr)
		if perr != nil {
			return nil, nil, domain.Invalid("ERR-VAL-002", "fecha de fin inválida (formato YYYY-MM-DD)")
		}
		end = &t
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, domain.Invalid("ERR-VAL-003", "la fecha de fin no puede ser anterior a la de inicio")
	}
	return start, end, nil
}
