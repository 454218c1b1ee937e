package billing

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// BillingTxRunner ejecuta cabecera, líneas y auditoría de una factura en una
// sola transacción.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		auditRepo repository.AuditLogRepository,
	) error) error
}

// InvoicePDFGenerator genera la representación gráfica (PDF) de una factura
// con sus líneas ya cargadas.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, inv *entity.Invoice, tenant *entity.Tenant) ([]byte, error)
}
