package billing

import (
	"context"
	"fmt"

	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica (PDF) de una factura. Solo
// facturas ya enviadas o pagadas: un borrador todavía puede cambiar.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	tenantRepo  repository.TenantRepository
	generator   InvoicePDFGenerator
	recorder    *audit.Recorder
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(invoiceRepo repository.InvoiceRepository, tenantRepo repository.TenantRepository, generator InvoicePDFGenerator, recorder *audit.Recorder) *PDFUseCase {
	return &PDFUseCase{invoiceRepo: invoiceRepo, tenantRepo: tenantRepo, generator: generator, recorder: recorder}
}

// DownloadInvoicePDF carga factura, líneas y tenant, y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - NotFoundError              si la factura no existe en el tenant.
//   - ValidationError            si la factura sigue en draft o fue cancelada.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, actor rbac.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	if err := actor.Require(entity.RoleAccounting, entity.RoleTenantAdmin); err != nil {
		return nil, "", err
	}

	// ── 1. Cargar factura con líneas ─────────────────────────────────────────
	inv, err := uc.invoiceRepo.GetByID(ctx, actor.TenantID, invoiceID)
	if err != nil {
		return nil, "", domain.Wrap(err)
	}
	if inv == nil {
		return nil, "", domain.NotFound(codeInvNotFound, "la factura")
	}
	lines, err := uc.invoiceRepo.GetLines(ctx, inv.ID)
	if err != nil {
		return nil, "", domain.Wrap(err)
	}
	inv.Lines = lines

	// ── 2. Validar estado ────────────────────────────────────────────────────
	if inv.Status != entity.InvoiceStatusSent && inv.Status != entity.InvoiceStatusPaid {
		return nil, "", domain.Invalidf(codeInvNotDraft, "la factura está en estado %s; el PDF solo se genera para sent o paid", inv.Status)
	}

	// ── 3. Cargar tenant (encabezado del documento) ──────────────────────────
	tenant, err := uc.tenantRepo.GetByID(ctx, actor.TenantID)
	if err != nil {
		return nil, "", domain.Wrap(err)
	}
	if tenant == nil {
		return nil, "", domain.NotFound(codeInvNotFound, "la factura")
	}

	// ── 4. Generar PDF ───────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv, tenant)
	if err != nil {
		return nil, "", domain.System(domain.CodePersistence, "generación de PDF fallida", err)
	}

	filename = fmt.Sprintf("factura_%s.pdf", inv.ID)
	return pdfBytes, filename, nil
}
