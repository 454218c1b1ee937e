package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Invoice. Solo draft es mutable o borrable.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice factura emitida a un cliente. Subtotal/Tax/Total se derivan
// siempre de las líneas en el servidor; nunca se confía en el cliente.
type Invoice struct {
	ID         string
	TenantID   string
	ClientName string
	ProjectID  string // opcional
	IssuedDate time.Time
	DueDate    time.Time // >= IssuedDate
	TaxRate    decimal.Decimal
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	Status     string
	Lines      []InvoiceLine // ordenadas por Position
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InvoiceLine línea de factura. Amount = round(Quantity × UnitPrice),
// redondeo por línea y no sobre el gran total.
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	Position    int
	Description string
	Quantity    decimal.Decimal // > 0
	UnitPrice   decimal.Decimal // >= 0
	Amount      decimal.Decimal // derivado
}

// ComputeInvoiceTotals deriva (subtotal, tax, total) de las líneas:
// subtotal = Σ round(qty × price) por línea; tax = floor(subtotal × rate / 100).
// Determinista y reproducible para los mismos insumos.
func ComputeInvoiceTotals(lines []InvoiceLine, taxRate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice).Round(0))
	}
	tax = subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Floor()
	total = subtotal.Add(tax)
	return subtotal, tax, total
}

// LineAmount deriva el importe de una línea.
func LineAmount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(0)
}
