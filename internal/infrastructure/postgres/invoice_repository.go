package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación del puerto InvoiceRepository sobre PostgreSQL
// (usable con pool o tx). Las líneas viven en invoice_lines.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador de persistencia para facturas.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, tenant_id, client_name, project_id, issued_date,
	due_date, tax_rate, subtotal, tax, total, status, created_by, created_at, updated_at`

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.TenantID, inv.ClientName, nullIfEmpty(inv.ProjectID), inv.IssuedDate,
		inv.DueDate, inv.TaxRate, inv.Subtotal, inv.Tax, inv.Total, inv.Status,
		inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de factura.
func (r *InvoiceRepo) CreateLine(ctx context.Context, line *entity.InvoiceLine) error {
	query := `
		INSERT INTO invoice_lines (id, invoice_id, position, description, quantity, unit_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.InvoiceID, line.Position, line.Description, line.Quantity, line.UnitPrice, line.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera; (nil, nil) si no existe o es de otro tenant.
// Las líneas se cargan aparte con GetLines.
func (r *InvoiceRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND tenant_id = $2`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetLines carga las líneas ordenadas por posición.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID string) ([]entity.InvoiceLine, error) {
	query := `
		SELECT id, invoice_id, position, description, quantity, unit_price, amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Position, &l.Description, &l.Quantity, &l.UnitPrice, &l.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// List lista facturas del tenant. ProjectIDs no-nil restringe a esos
// proyectos (el alcance de lectura del PM).
func (r *InvoiceRepo) List(ctx context.Context, tenantID string, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + ` FROM invoices
		WHERE tenant_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3::text[] IS NULL OR project_id = ANY($3))
		ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, tenantID, f.Status, f.ProjectIDs, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Update reescribe la cabecera, totales incluidos.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET client_name = $3, project_id = $4, issued_date = $5, due_date = $6,
		    tax_rate = $7, subtotal = $8, tax = $9, total = $10, updated_at = $11
		WHERE id = $1 AND tenant_id = $2`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.TenantID, inv.ClientName, nullIfEmpty(inv.ProjectID), inv.IssuedDate,
		inv.DueDate, inv.TaxRate, inv.Subtotal, inv.Tax, inv.Total, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// DeleteLines borra todas las líneas de una factura.
func (r *InvoiceRepo) DeleteLines(ctx context.Context, invoiceID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM invoice_lines WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	return nil
}

// UpdateStatusFrom cambia el estado solo si sigue en `from` (compare-and-set).
func (r *InvoiceRepo) UpdateStatusFrom(ctx context.Context, tenantID, id, from, to string) (bool, error) {
	query := `
		UPDATE invoices SET status = $4, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND status = $3`
	tag, err := r.q.Exec(ctx, query, id, tenantID, from, to)
	if err != nil {
		return false, fmt.Errorf("update invoice status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete elimina la cabecera (las líneas se borran antes con DeleteLines).
func (r *InvoiceRepo) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var projectID *string
	err := row.Scan(&inv.ID, &inv.TenantID, &inv.ClientName, &projectID, &inv.IssuedDate,
		&inv.DueDate, &inv.TaxRate, &inv.Subtotal, &inv.Tax, &inv.Total, &inv.Status,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if projectID != nil {
		inv.ProjectID = *projectID
	}
	return &inv, nil
}
