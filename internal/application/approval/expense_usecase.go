package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/notify"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

const codeExpenseNotFound = "ERR-WF-404" // el gasto vive dentro de su workflow

// ExpenseUseCase gastos con workflow de aprobación vinculado. El gasto y su
// workflow se crean en la misma transacción: nunca existe un gasto sin
// workflow ni un workflow de gasto huérfano.
type ExpenseUseCase struct {
	expenseRepo repository.ExpenseRepository
	wfRepo      repository.WorkflowRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	txRunner    TxRunner
	recorder    *audit.Recorder
	dispatcher  *notify.Dispatcher
}

// NewExpenseUseCase construye el caso de uso.
func NewExpenseUseCase(
	expenseRepo repository.ExpenseRepository,
	wfRepo repository.WorkflowRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	txRunner TxRunner,
	recorder *audit.Recorder,
	dispatcher *notify.Dispatcher,
) *ExpenseUseCase {
	return &ExpenseUseCase{
		expenseRepo: expenseRepo,
		wfRepo:      wfRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		txRunner:    txRunner,
		recorder:    recorder,
		dispatcher:  dispatcher,
	}
}

// Create registra el gasto y genera su workflow (type=expense) de forma
// atómica. Con Submit=true el workflow nace enviado al aprobador designado.
func (uc *ExpenseUseCase) Create(ctx context.Context, actor rbac.Context, in dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	if !entity.ValidExpenseCategory(in.Category) {
		return nil, domain.Invalid("ERR-VAL-001", "categoría de gasto no reconocida")
	}
	if in.Amount.LessThan(entity.ExpenseMinAmount) || in.Amount.GreaterThan(entity.ExpenseMaxAmount) {
		return nil, domain.Invalidf("ERR-VAL-004", "el monto debe estar entre %s y %s",
			entity.ExpenseMinAmount.String(), entity.ExpenseMaxAmount.String())
	}
	date, err := dto.ParseDate(in.Date)
	if err != nil {
		return nil, domain.Invalid("ERR-VAL-002", "fecha del gasto inválida (formato YYYY-MM-DD)")
	}
	if in.ProjectID != "" {
		p, err := uc.projectRepo.GetByID(ctx, actor.TenantID, in.ProjectID)
		if err != nil {
			return nil, domain.Wrap(err)
		}
		if p == nil {
			return nil, domain.Invalid("ERR-VAL-005", "el proyecto indicado no existe en el tenant")
		}
	}
	if in.ApproverID != "" {
		if err := uc.checkApprover(ctx, actor.TenantID, in.ApproverID); err != nil {
			return nil, err
		}
	}
	if in.Submit && in.ApproverID == "" {
		return nil, domain.Invalid(codeWFSubmitApprover, "el gasto necesita un aprobador designado para enviarse")
	}

	now := time.Now()
	status := entity.WorkflowStatusDraft
	if in.Submit {
		status = entity.WorkflowStatusSubmitted
	}
	amount := in.Amount
	wf := &entity.Workflow{
		ID:          uuid.New().String(),
		TenantID:    actor.TenantID,
		Type:        entity.WorkflowTypeExpense,
		Title:       fmt.Sprintf("Gasto %s %s", in.Category, date.Format("2006-01-02")),
		Description: in.Note,
		Amount:      &amount,
		Status:      status,
		ApproverID:  in.ApproverID,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	exp := &entity.Expense{
		ID:         uuid.New().String(),
		TenantID:   actor.TenantID,
		WorkflowID: wf.ID,
		ProjectID:  in.ProjectID,
		Category:   in.Category,
		Amount:     in.Amount,
		Date:       date,
		Note:       in.Note,
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = uc.txRunner.RunApproval(ctx, func(
		wfRepo repository.WorkflowRepository,
		expenseRepo repository.ExpenseRepository,
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
		if err := expenseRepo.Create(ctx, exp); err != nil {
			return err
		}
		rec := uc.recorder.WithRepo(auditRepo)
		if err := rec.Record(ctx, audit.Entry{
			TenantID:     actor.TenantID,
			ActorID:      actor.UserID,
			Action:       entity.AuditExpenseCreate,
			ResourceType: "expense",
			ResourceID:   exp.ID,
			After:        audit.Snapshot(dto.ToExpenseResponse(exp, wf.Status)),
			Metadata:     map[string]any{"workflow_id": wf.ID},
		}); err != nil {
			return err
		}
		if in.Submit {
			return rec.Record(ctx, audit.Entry{
				TenantID:     actor.TenantID,
				ActorID:      actor.UserID,
				Action:       entity.AuditExpenseSubmit,
				ResourceType: "expense",
				ResourceID:   exp.ID,
				After:        audit.Snapshot(dto.ToExpenseResponse(exp, wf.Status)),
				Metadata:     map[string]any{"workflow_id": wf.ID},
			})
		}
		return nil
	})
	if err != nil {
		return nil, domain.Wrap(err)
	}

	if wf.Status == entity.WorkflowStatusSubmitted {
		uc.dispatcher.WorkflowSubmitted(ctx, wf)
	}
	return dto.ToExpenseResponse(exp, wf.Status), nil
}

// Get obtiene un gasto con el estado de su workflow vinculado. Visible para
// el creador, el aprobador del workflow y los tenant_admin.
func (uc *ExpenseUseCase) Get(ctx context.Context, actor rbac.Context, id string) (*dto.ExpenseResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	exp, err := uc.expenseRepo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if exp == nil {
		return nil, domain.NotFound(codeExpenseNotFound, "el gasto")
	}
	wf, err := uc.wfRepo.GetByID(ctx, actor.TenantID, exp.WorkflowID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if wf == nil {
		return nil, domain.NotFound(codeExpenseNotFound, "el gasto")
	}
	if exp.CreatedBy != actor.UserID && wf.ApproverID != actor.UserID && !actor.IsTenantAdmin() {
		return nil, domain.Authz(domain.CodeNotOwner, "sin acceso a este gasto")
	}
	return dto.ToExpenseResponse(exp, wf.Status), nil
}

// ListMine lista los gastos del actor con el estado de su workflow.
func (uc *ExpenseUseCase) ListMine(ctx context.Context, actor rbac.Context, page dto.PageRequest) ([]*dto.ExpenseResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.expenseRepo.ListByCreator(ctx, actor.TenantID, actor.UserID, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	out := make([]*dto.ExpenseResponse, 0, len(list))
	for _, exp := range list {
		wf, err := uc.wfRepo.GetByID(ctx, actor.TenantID, exp.WorkflowID)
		if err != nil {
			return nil, domain.Wrap(err)
		}
		status := ""
		if wf != nil {
			status = wf.Status
		}
		out = append(out, dto.ToExpenseResponse(exp, status))
	}
	return out, nil
}

func (uc *ExpenseUseCase) checkApprover(ctx context.Context, tenantID, approverID string) error {
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
