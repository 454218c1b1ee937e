package dto

import (
	"time"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// CreateTaskRequest body para POST /api/projects/:projectID/tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	AssigneeID  string  `json:"assignee_id,omitempty"` // miembro del proyecto
	DueDate     *string `json:"due_date,omitempty"`    // YYYY-MM-DD
}

// UpdateTaskRequest body para PUT /api/tasks/:id.
type UpdateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	AssigneeID  string  `json:"assignee_id,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// TaskResponse tarea en respuestas.
type TaskResponse struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	DueDate     string    `json:"due_date,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToTaskResponse convierte la entidad al DTO de respuesta.
func ToTaskResponse(t *entity.Task) *TaskResponse {
	if t == nil {
		return nil
	}
	resp := &TaskResponse{
		ID:          t.ID,
		TenantID:    t.TenantID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		AssigneeID:  t.AssigneeID,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		resp.DueDate = t.DueDate.Format("2006-01-02")
	}
	return resp
}
