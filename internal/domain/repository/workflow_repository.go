package repository

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// WorkflowFilter filtros de listado (igualdad; cero = sin filtro).
type WorkflowFilter struct {
	Status     string
	Type       string
	CreatedBy  string
	ApproverID string
	Limit      int
	Offset     int
}

// WorkflowRepository puerto de persistencia para workflows.
type WorkflowRepository interface {
	Create(ctx context.Context, wf *entity.Workflow) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Workflow, error)
	List(ctx context.Context, tenantID string, f WorkflowFilter) ([]*entity.Workflow, error)
	// Update persiste los campos editables de un borrador (no el estado).
	Update(ctx context.Context, wf *entity.Workflow) error
	// UpdateStatusFrom aplica estado + campos derivados (approved_at,
	// rejection_reason) solo si el estado almacenado sigue siendo `from`
	// (compare-and-set). Retorna false si otro escritor ganó la carrera.
	UpdateStatusFrom(ctx context.Context, wf *entity.Workflow, from string) (bool, error)
	// NextNumber entrega el siguiente consecutivo del tenant de forma
	// atómica (UPSERT serializado en DB); nunca read-then-write.
	NextNumber(ctx context.Context, tenantID string) (int64, error)
}
