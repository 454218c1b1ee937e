package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// CreateWorkflowRequest body para POST /api/workflows.
// Si Submit es true la solicitud nace enviada (requiere título y aprobador).
type CreateWorkflowRequest struct {
	Type        string           `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	StartDate   *string          `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate     *string          `json:"end_date,omitempty"`
	ApproverID  string           `json:"approver_id,omitempty"`
	Submit      bool             `json:"submit,omitempty"`
}

// UpdateWorkflowRequest body para PUT /api/workflows/:id (solo creador,
// solo draft/rejected).
type UpdateWorkflowRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	StartDate   *string          `json:"start_date,omitempty"`
	EndDate     *string          `json:"end_date,omitempty"`
	ApproverID  string           `json:"approver_id,omitempty"`
}

// RejectWorkflowRequest body para POST /api/workflows/:id/reject.
type RejectWorkflowRequest struct {
	Reason string `json:"reason"`
}

// ListWorkflowsRequest filtros de GET /api/workflows.
type ListWorkflowsRequest struct {
	PageRequest
	Status     string `query:"status"`
	Type       string `query:"type"`
	CreatedBy  string `query:"created_by"`
	ApproverID string `query:"approver_id"`
}

// WorkflowResponse workflow en respuestas.
type WorkflowResponse struct {
	ID              string           `json:"id"`
	TenantID        string           `json:"tenant_id"`
	Number          int64            `json:"number"`
	Type            string           `json:"type"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	StartDate       string           `json:"start_date,omitempty"`
	EndDate         string           `json:"end_date,omitempty"`
	Status          string           `json:"status"`
	ApproverID      string           `json:"approver_id,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	CreatedBy       string           `json:"created_by"`
	ApprovedAt      string           `json:"approved_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ToWorkflowResponse convierte la entidad al DTO de respuesta.
func ToWorkflowResponse(wf *entity.Workflow) *WorkflowResponse {
	if wf == nil {
		return nil
	}
	resp := &WorkflowResponse{
		ID:              wf.ID,
		TenantID:        wf.TenantID,
		Number:          wf.Number,
		Type:            wf.Type,
		Title:           wf.Title,
		Description:     wf.Description,
		Amount:          wf.Amount,
		Status:          wf.Status,
		ApproverID:      wf.ApproverID,
		RejectionReason: wf.RejectionReason,
		CreatedBy:       wf.CreatedBy,
		CreatedAt:       wf.CreatedAt,
		UpdatedAt:       wf.UpdatedAt,
	}
	if wf.StartDate != nil {
		resp.StartDate = wf.StartDate.Format("2006-01-02")
	}
	if wf.EndDate != nil {
		resp.EndDate = wf.EndDate.Format("2006-01-02")
	}
	if wf.ApprovedAt != nil {
		resp.ApprovedAt = wf.ApprovedAt.Format(time.RFC3339)
	}
	return resp
}
