package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

var _ repository.WorkflowRepository = (*WorkflowRepo)(nil)

// WorkflowRepo implementación del puerto WorkflowRepository sobre PostgreSQL
// (usable con pool o tx).
type WorkflowRepo struct {
	q Querier
}

// NewWorkflowRepository construye el adaptador de persistencia para workflows.
func NewWorkflowRepository(q Querier) *WorkflowRepo {
	return &WorkflowRepo{q: q}
}

const workflowColumns = `id, tenant_id, number, type, title, description, amount,
	start_date, end_date, status, approver_id, rejection_reason, created_by,
	approved_at, created_at, updated_at`

// Create persiste una solicitud nueva.
func (r *WorkflowRepo) Create(ctx context.Context, wf *entity.Workflow) error {
	query := `
		INSERT INTO workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		wf.ID, wf.TenantID, wf.Number, wf.Type, wf.Title, wf.Description, wf.Amount,
		wf.StartDate, wf.EndDate, wf.Status, nullIfEmpty(wf.ApproverID),
		nullIfEmpty(wf.RejectionReason), wf.CreatedBy, wf.ApprovedAt, wf.CreatedAt, wf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud del tenant; (nil, nil) si no existe o es de otro.
func (r *WorkflowRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE id = $1 AND tenant_id = $2`
	wf, err := scanWorkflow(r.q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	return wf, nil
}

// List lista solicitudes del tenant con filtros de igualdad.
func (r *WorkflowRepo) List(ctx context.Context, tenantID string, f repository.WorkflowFilter) ([]*entity.Workflow, error) {
	query := `
		SELECT ` + workflowColumns + ` FROM workflows
		WHERE tenant_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR type = $3)
		  AND ($4 = '' OR created_by = $4)
		  AND ($5 = '' OR approver_id = $5)
		ORDER BY number DESC LIMIT $6 OFFSET $7`
	rows, err := r.q.Query(ctx, query, tenantID, f.Status, f.Type, f.CreatedBy, f.ApproverID, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()
	var list []*entity.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		list = append(list, wf)
	}
	return list, rows.Err()
}

// Update persiste los campos editables (no el estado).
func (r *WorkflowRepo) Update(ctx context.Context, wf *entity.Workflow) error {
	query := `
		UPDATE workflows
		SET title = $3, description = $4, amount = $5, start_date = $6, end_date = $7,
		    approver_id = $8, updated_at = $9
		WHERE id = $1 AND tenant_id = $2`
	_, err := r.q.Exec(ctx, query,
		wf.ID, wf.TenantID, wf.Title, wf.Description, wf.Amount, wf.StartDate, wf.EndDate,
		nullIfEmpty(wf.ApproverID), wf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	return nil
}

// UpdateStatusFrom aplica estado y campos derivados solo si el estado
// almacenado sigue siendo `from` (compare-and-set). Retorna false si otro
// escritor ganó la carrera.
func (r *WorkflowRepo) UpdateStatusFrom(ctx context.Context, wf *entity.Workflow, from string) (bool, error) {
	query := `
		UPDATE workflows
		SET status = $4, rejection_reason = $5, approved_at = $6, updated_at = $7
		WHERE id = $1 AND tenant_id = $2 AND status = $3`
	tag, err := r.q.Exec(ctx, query,
		wf.ID, wf.TenantID, from, wf.Status, nullIfEmpty(wf.RejectionReason), wf.ApprovedAt, wf.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("update workflow status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// NextNumber entrega el siguiente consecutivo del tenant de forma atómica:
// UPSERT serializado por la fila de tenant_sequences, nunca read-then-write.
func (r *WorkflowRepo) NextNumber(ctx context.Context, tenantID string) (int64, error) {
	query := `
		INSERT INTO tenant_sequences (tenant_id, workflow_number)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id)
		DO UPDATE SET workflow_number = tenant_sequences.workflow_number + 1
		RETURNING workflow_number`
	var n int64
	if err := r.q.QueryRow(ctx, query, tenantID).Scan(&n); err != nil {
		return 0, fmt.Errorf("next workflow number: %w", err)
	}
	return n, nil
}

func scanWorkflow(row pgx.Row) (*entity.Workflow, error) {
	var wf entity.Workflow
	var approverID, rejectionReason *string
	err := row.Scan(
		&wf.ID, &wf.TenantID, &wf.Number, &wf.Type, &wf.Title, &wf.Description, &wf.Amount,
		&wf.StartDate, &wf.EndDate, &wf.Status, &approverID, &rejectionReason, &wf.CreatedBy,
		&wf.ApprovedAt, &wf.CreatedAt, &wf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if approverID != nil {
		wf.ApproverID = *approverID
	}
	if rejectionReason != nil {
		wf.RejectionReason = *rejectionReason
	}
	return &wf, nil
}
