package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// InvoiceLineRequest línea de factura en requests. Amount se deriva
// siempre en el servidor; cualquier valor enviado se ignora.
type InvoiceLineRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	ClientName string               `json:"client_name"`
	ProjectID  string               `json:"project_id,omitempty"`
	IssuedDate string               `json:"issued_date"` // YYYY-MM-DD
	DueDate    string               `json:"due_date"`    // >= issued_date
	TaxRate    decimal.Decimal      `json:"tax_rate"`
	Lines      []InvoiceLineRequest `json:"lines"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id (solo draft).
type UpdateInvoiceRequest = CreateInvoiceRequest

// ListInvoicesRequest filtros de GET /api/invoices.
type ListInvoicesRequest struct {
	PageRequest
	Status string `query:"status"`
}

// InvoiceLineResponse línea en respuestas.
type InvoiceLineResponse struct {
	ID          string          `json:"id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse factura con líneas y totales derivados.
type InvoiceResponse struct {
	ID         string                `json:"id"`
	TenantID   string                `json:"tenant_id"`
	ClientName string                `json:"client_name"`
	ProjectID  string                `json:"project_id,omitempty"`
	IssuedDate string                `json:"issued_date"`
	DueDate    string                `json:"due_date"`
	TaxRate    decimal.Decimal       `json:"tax_rate"`
	Subtotal   decimal.Decimal       `json:"subtotal"`
	Tax        decimal.Decimal       `json:"tax"`
	Total      decimal.Decimal       `json:"total"`
	Status     string                `json:"status"`
	Lines      []InvoiceLineResponse `json:"lines"`
	CreatedBy  string                `json:"created_by"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// ToInvoiceResponse convierte la entidad (con líneas cargadas) al DTO.
func ToInvoiceResponse(inv *entity.Invoice) *InvoiceResponse {
	if inv == nil {
		return nil
	}
	resp := &InvoiceResponse{
		ID:         inv.ID,
		TenantID:   inv.TenantID,
		ClientName: inv.ClientName,
		ProjectID:  inv.ProjectID,
		IssuedDate: inv.IssuedDate.Format("2006-01-02"),
		DueDate:    inv.DueDate.Format("2006-01-02"),
		TaxRate:    inv.TaxRate,
		Subtotal:   inv.Subtotal,
		Tax:        inv.Tax,
		Total:      inv.Total,
		Status:     inv.Status,
		Lines:      make([]InvoiceLineResponse, 0, len(inv.Lines)),
		CreatedBy:  inv.CreatedBy,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			ID:          l.ID,
			Position:    l.Position,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Amount:      l.Amount,
		})
	}
	return resp
}
