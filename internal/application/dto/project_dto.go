package dto

import (
	"time"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// CreateProjectRequest body para POST /api/projects.
type CreateProjectRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	PMID        string   `json:"pm_id"`
	StartDate   *string  `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate     *string  `json:"end_date,omitempty"`
	MemberIDs   []string `json:"member_ids,omitempty"`
}

// UpdateProjectRequest body para PUT /api/projects/:id.
type UpdateProjectRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

// ChangeStatusRequest body genérico para POST .../status.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// MemberRequest body para alta/baja de miembros.
type MemberRequest struct {
	UserID string `json:"user_id"`
}

// ProjectResponse proyecto en respuestas.
type ProjectResponse struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	PMID        string    `json:"pm_id"`
	StartDate   string    `json:"start_date,omitempty"`
	EndDate     string    `json:"end_date,omitempty"`
	MemberIDs   []string  `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToProjectResponse convierte la entidad al DTO de respuesta.
func ToProjectResponse(p *entity.Project) *ProjectResponse {
	if p == nil {
		return nil
	}
	resp := &ProjectResponse{
		ID:          p.ID,
		TenantID:    p.TenantID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		PMID:        p.PMID,
		MemberIDs:   p.MemberIDs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.StartDate != nil {
		resp.StartDate = p.StartDate.Format("2006-01-02")
	}
	if p.EndDate != nil {
		resp.EndDate = p.EndDate.Format("2006-01-02")
	}
	return resp
}
