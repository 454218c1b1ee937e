package repository

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// InvoiceFilter filtros de listado de facturas.
type InvoiceFilter struct {
	Status string
	// ProjectIDs no-nil restringe a esos proyectos (lectura de PM).
	ProjectIDs []string
	Limit      int
	Offset     int
}

// InvoiceRepository puerto de persistencia para facturas y sus líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	CreateLine(ctx context.Context, line *entity.InvoiceLine) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Invoice, error)
	GetLines(ctx context.Context, invoiceID string) ([]entity.InvoiceLine, error)
	List(ctx context.Context, tenantID string, f InvoiceFilter) ([]*entity.Invoice, error)
	// Update reescribe la cabecera (totales incluidos).
	Update(ctx context.Context, inv *entity.Invoice) error
	DeleteLines(ctx context.Context, invoiceID string) error
	// UpdateStatusFrom cambia el estado solo si sigue en `from` (CAS).
	UpdateStatusFrom(ctx context.Context, tenantID, id, from, to string) (bool, error)
	Delete(ctx context.Context, tenantID, id string) error
}
