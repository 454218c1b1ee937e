// Package billing facturación: ciclo de vida de facturas, totales derivados
// en servidor y representación gráfica en PDF.
package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
	"github.com/tu-usuario/backoffice-pro/internal/domain/statemachine"
)

// Códigos de negocio de facturación (además de ERR-INV-001, la transición).
const (
	codeInvNotFound  = "ERR-INV-404"
	codeInvNotDraft  = "ERR-INV-002" // solo draft se edita
	codeInvDelDraft  = "ERR-INV-003" // solo draft se borra
	codeInvNoLines   = "ERR-INV-004" // la factura necesita al menos una línea
	codeInvBadLine   = "ERR-INV-005" // cantidad/precio fuera de rango
	codeInvBadRate   = "ERR-INV-006" // tax_rate fuera de [0, 100]
)

var maxTaxRate = decimal.NewFromInt(100)

// InvoiceUseCase reglas de negocio de facturas. Los totales se recalculan
// siempre de las líneas; los valores del cliente se ignoran.
type InvoiceUseCase struct {
	invoiceRepo repository.InvoiceRepository
	projectRepo repository.ProjectRepository
	txRunner    BillingTxRunner
	recorder    *audit.Recorder
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(invoiceRepo repository.InvoiceRepository, projectRepo repository.ProjectRepository, txRunner BillingTxRunner, recorder *audit.Recorder) *InvoiceUseCase {
	return &InvoiceUseCase{invoiceRepo: invoiceRepo, projectRepo: projectRepo, txRunner: txRunner, recorder: recorder}
}

// Create crea una factura en draft con sus líneas en una transacción. Solo
// accounting o tenant_admin.
func (uc *InvoiceUseCase) Create(ctx context.Context, actor rbac.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := actor.Require(entity.RoleAccounting, entity.RoleTenantAdmin); err != nil {
		return nil, err
	}
	inv, err := uc.buildInvoice(ctx, actor, in)
	if err != nil {
		return nil, err
	}

	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		for i := range inv.Lines {
			if err := invoiceRepo.CreateLine(ctx, &inv.Lines[i]); err != nil {
				return err
			}
		}
		return uc.recorder.WithRepo(auditRepo).Record(ctx, audit.Entry{
			TenantID:     actor.TenantID,
			ActorID:      actor.UserID,
			Action:       entity.AuditInvoiceCreate,
			ResourceType: "invoice",
			ResourceID:   inv.ID,
			After:        audit.Snapshot(dto.ToInvoiceResponse(inv)),
		})
	})
	if err != nil {
		return nil, domain.Wrap(err)
	}
	return dto.ToInvoiceResponse(inv), nil
}

// Update reemplaza cabecera y líneas de una factura en draft. Las líneas se
// reescriben completas y los totales se rederivan, todo en una transacción.
func (uc *InvoiceUseCase) Update(ctx context.Context, actor rbac.Context, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := actor.Require(entity.RoleAccounting, entity.RoleTenantAdmin); err != nil {
		return nil, err
	}
	existing, err := uc.getWithLines(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != entity.InvoiceStatusDraft {
		return nil, domain.Invalid(codeInvNotDraft, "solo facturas en borrador se pueden editar")
	}
	updated, err := uc.buildInvoice(ctx, actor, in)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	for i := range updated.Lines {
		updated.Lines[i].InvoiceID = existing.ID
	}

	before := audit.Snapshot(dto.ToInvoiceResponse(existing))
	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		if err := invoiceRepo.DeleteLines(ctx, existing.ID); err != nil {
			return err
		}
		if err := invoiceRepo.Update(ctx, updated); err != nil {
			return err
		}
		for i := range updated.Lines {
			if err := invoiceRepo.CreateLine(ctx, &updated.Lines[i]); err != nil {
				return err
			}
		}
		return uc.recorder.WithRepo(auditRepo).Record(ctx, audit.Entry{
			TenantID:     actor.TenantID,
			ActorID:      actor.UserID,
			Action:       entity.AuditInvoiceUpdate,
			ResourceType: "invoice",
			ResourceID:   updated.ID,
			Before:       before,
			After:        audit.Snapshot(dto.ToInvoiceResponse(updated)),
		})
	})
	if err != nil {
		return nil, domain.Wrap(err)
	}
	return dto.ToInvoiceResponse(updated), nil
}

// ChangeStatus transiciona la factura (draft → sent → paid, cancelaciones)
// con compare-and-set.
func (uc *InvoiceUseCase) ChangeStatus(ctx context.Context, actor rbac.Context, id, to string) (*dto.InvoiceResponse, error) {
	if err := actor.Require(entity.RoleAccounting, entity.RoleTenantAdmin); err != nil {
		return nil, err
	}
	inv, err := uc.getWithLines(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !statemachine.ValidStatus(statemachine.EntityInvoice, to) {
		return nil, domain.Invalid("ERR-VAL-001", "estado de factura no reconocido")
	}
	if err := statemachine.Check(statemachine.EntityInvoice, inv.Status, to); err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToInvoiceResponse(inv))
	from := inv.Status
	ok, err := uc.invoiceRepo.UpdateStatusFrom(ctx, actor.TenantID, inv.ID, from, to)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if !ok {
		fresh, err := uc.invoiceRepo.GetByID(ctx, actor.TenantID, inv.ID)
		if err != nil {
			return nil, domain.Wrap(err)
		}
		if fresh == nil {
			return nil, domain.NotFound(codeInvNotFound, "la factura")
		}
		return nil, domain.Transition(statemachine.CodeInvoiceTransition, "invoice", fresh.Status, to)
	}
	inv.Status = to
	inv.UpdatedAt = time.Now()

	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditInvoiceStatusChange,
		ResourceType: "invoice",
		ResourceID:   inv.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToInvoiceResponse(inv)),
	}); err != nil {
		return nil, err
	}
	return dto.ToInvoiceResponse(inv), nil
}

// Delete borra una factura en draft con sus líneas.
func (uc *InvoiceUseCase) Delete(ctx context.Context, actor rbac.Context, id string) error {
	if err := actor.Require(entity.RoleAccounting, entity.RoleTenantAdmin); err != nil {
		return err
	}
	inv, err := uc.getWithLines(ctx, actor.TenantID, id)
	if err != nil {
		return err
	}
	if inv.Status != entity.InvoiceStatusDraft {
		return domain.Invalid(codeInvDelDraft, "solo facturas en borrador se pueden borrar")
	}

	before := audit.Snapshot(dto.ToInvoiceResponse(inv))
	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		if err := invoiceRepo.DeleteLines(ctx, inv.ID); err != nil {
			return err
		}
		if err := invoiceRepo.Delete(ctx, actor.TenantID, inv.ID); err != nil {
			return err
		}
		return uc.recorder.WithRepo(auditRepo).Record(ctx, audit.Entry{
			TenantID:     actor.TenantID,
			ActorID:      actor.UserID,
			Action:       entity.AuditInvoiceDelete,
			ResourceType: "invoice",
			ResourceID:   inv.ID,
			Before:       before,
		})
	})
	return domain.Wrap(err)
}

// Get obtiene una factura con líneas. accounting y tenant_admin ven todas;
// un pm solo las de sus proyectos.
func (uc *InvoiceUseCase) Get(ctx context.Context, actor rbac.Context, id string) (*dto.InvoiceResponse, error) {
	if err := actor.Require(entity.RoleAccounting, entity.RoleTenantAdmin, entity.RolePM); err != nil {
		return nil, err
	}
	inv, err := uc.getWithLines(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.checkReadScope(ctx, actor, inv); err != nil {
		return nil, err
	}
	return dto.ToInvoiceResponse(inv), nil
}

// List lista facturas. El alcance de un pm se restringe en la consulta a
// sus proyectos gestionados.
func (uc *InvoiceUseCase) List(ctx context.Context, actor rbac.Context, in dto.ListInvoicesRequest) ([]*dto.InvoiceResponse, error) {
	if err := actor.Require(entity.RoleAccounting, entity.RoleTenantAdmin, entity.RolePM); err != nil {
		return nil, err
	}
	in.DefaultPage()
	f := repository.InvoiceFilter{Status: in.Status, Limit: in.Limit, Offset: in.Offset}
	if !actor.HasRole(entity.RoleAccounting, entity.RoleTenantAdmin) {
		ids, err := uc.projectRepo.ListIDsByPM(ctx, actor.TenantID, actor.UserID)
		if err != nil {
			return nil, domain.Wrap(err)
		}
		if ids == nil {
			ids = []string{}
		}
		f.ProjectIDs = ids
	}
	list, err := uc.invoiceRepo.List(ctx, actor.TenantID, f)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	out := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		lines, err := uc.invoiceRepo.GetLines(ctx, inv.ID)
		if err != nil {
			return nil, domain.Wrap(err)
		}
		inv.Lines = lines
		out = append(out, dto.ToInvoiceResponse(inv))
	}
	return out, nil
}

// ── internos ──────────────────────────────────────────────────────────────────

// buildInvoice valida el request completo y deriva líneas y totales.
func (uc *InvoiceUseCase) buildInvoice(ctx context.Context, actor rbac.Context, in dto.CreateInvoiceRequest) (*entity.Invoice, error) {
	if in.ClientName == "" {
		return nil, domain.Invalid("ERR-VAL-001", "el nombre del cliente es obligatorio")
	}
	issued, err := dto.ParseDate(in.IssuedDate)
	if err != nil {
		return nil, domain.Invalid("ERR-VAL-002", "fecha de emisión inválida (formato YYYY-MM-DD)")
	}
	due, err := dto.ParseDate(in.DueDate)
	if err != nil {
		return nil, domain.Invalid("ERR-VAL-002", "fecha de vencimiento inválida (formato YYYY-MM-DD)")
	}
	if due.Before(issued) {
		return nil, domain.Invalid("ERR-VAL-003", "la fecha de vencimiento no puede ser anterior a la de emisión")
	}
	if in.TaxRate.LessThan(decimal.Zero) || in.TaxRate.GreaterThan(maxTaxRate) {
		return nil, domain.Invalid(codeInvBadRate, "tax_rate debe estar entre 0 y 100")
	}
	if len(in.Lines) == 0 {
		return nil, domain.Invalid(codeInvNoLines, "la factura necesita al menos una línea")
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

	now := time.Now()
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		TenantID:   actor.TenantID,
		ClientName: in.ClientName,
		ProjectID:  in.ProjectID,
		IssuedDate: issued,
		DueDate:    due,
		TaxRate:    in.TaxRate,
		Status:     entity.InvoiceStatusDraft,
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	inv.Lines = make([]entity.InvoiceLine, 0, len(in.Lines))
	for i, l := range in.Lines {
		if l.Description == "" {
			return nil, domain.Invalidf(codeInvBadLine, "línea %d: la descripción es obligatoria", i+1)
		}
		if l.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, domain.Invalidf(codeInvBadLine, "línea %d: la cantidad debe ser mayor que cero", i+1)
		}
		if l.UnitPrice.LessThan(decimal.Zero) {
			return nil, domain.Invalidf(codeInvBadLine, "línea %d: el precio unitario no puede ser negativo", i+1)
		}
		inv.Lines = append(inv.Lines, entity.InvoiceLine{
			ID:          uuid.New().String(),
			InvoiceID:   inv.ID,
			Position:    i + 1,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      entity.LineAmount(l.Quantity, l.UnitPrice),
		})
	}
	inv.Subtotal, inv.Tax, inv.Total = entity.ComputeInvoiceTotals(inv.Lines, inv.TaxRate)
	return inv, nil
}

func (uc *InvoiceUseCase) getWithLines(ctx context.Context, tenantID, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if inv == nil {
		return nil, domain.NotFound(codeInvNotFound, "la factura")
	}
	lines, err := uc.invoiceRepo.GetLines(ctx, inv.ID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	inv.Lines = lines
	return inv, nil
}

// checkReadScope un pm sin rol contable solo lee facturas de sus proyectos.
func (uc *InvoiceUseCase) checkReadScope(ctx context.Context, actor rbac.Context, inv *entity.Invoice) error {
	if actor.HasRole(entity.RoleAccounting, entity.RoleTenantAdmin) {
		return nil
	}
	if inv.ProjectID != "" {
		p, err := uc.projectRepo.GetByID(ctx, actor.TenantID, inv.ProjectID)
		if err != nil {
			return domain.Wrap(err)
		}
		if p != nil && p.PMID == actor.UserID {
			return nil
		}
	}
	// No filtra existencia: mismo comportamiento que una factura inexistente.
	return domain.NotFound(codeInvNotFound, "la factura")
}
