package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// CreateExpenseRequest body para POST /api/expenses. Submit=true envía el
// workflow vinculado en el mismo acto (requiere aprobador).
type CreateExpenseRequest struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"` // YYYY-MM-DD
	ProjectID  string          `json:"project_id,omitempty"`
	Note       string          `json:"note,omitempty"`
	ApproverID string          `json:"approver_id,omitempty"`
	Submit     bool            `json:"submit,omitempty"`
}

// ExpenseResponse gasto + workflow vinculado en respuestas.
type ExpenseResponse struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenant_id"`
	WorkflowID string          `json:"workflow_id"`
	ProjectID  string          `json:"project_id,omitempty"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
	Note       string          `json:"note,omitempty"`
	Status     string          `json:"status"` // estado del workflow vinculado
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToExpenseResponse convierte la entidad al DTO; status viene del workflow.
func ToExpenseResponse(e *entity.Expense, status string) *ExpenseResponse {
	if e == nil {
		return nil
	}
	return &ExpenseResponse{
		ID:         e.ID,
		TenantID:   e.TenantID,
		WorkflowID: e.WorkflowID,
		ProjectID:  e.ProjectID,
		Category:   e.Category,
		Amount:     e.Amount,
		Date:       e.Date.Format("2006-01-02"),
		Note:       e.Note,
		Status:     status,
		CreatedBy:  e.CreatedBy,
		CreatedAt:  e.CreatedAt,
	}
}
