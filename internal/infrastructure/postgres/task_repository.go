package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

var _ repository.TaskRepository = (*TaskRepo)(nil)

// TaskRepo implementación del puerto TaskRepository sobre PostgreSQL.
type TaskRepo struct {
	q Querier
}

// NewTaskRepository construye el adaptador de persistencia para tareas.
func NewTaskRepository(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

const taskColumns = `id, tenant_id, project_id, title, description, status,
	assignee_id, due_date, created_by, created_at, updated_at`

// Create persiste una tarea nueva.
func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TenantID, t.ProjectID, t.Title, t.Description, t.Status,
		nullIfEmpty(t.AssigneeID), t.DueDate, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID obtiene una tarea del tenant; (nil, nil) si no existe o es de otro.
func (r *TaskRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND tenant_id = $2`
	t, err := scanTask(r.q.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListByProject lista tareas de un proyecto con paginación.
func (r *TaskRepo) ListByProject(ctx context.Context, tenantID, projectID string, limit, offset int) ([]*entity.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE tenant_id = $1 AND project_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	var list []*entity.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Update actualiza los campos editables (no el estado).
func (r *TaskRepo) Update(ctx context.Context, t *entity.Task) error {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, assignee_id = $5, due_date = $6, updated_at = $7
		WHERE id = $1 AND tenant_id = $2`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TenantID, t.Title, t.Description, nullIfEmpty(t.AssigneeID), t.DueDate, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// UpdateStatusFrom cambia el estado solo si sigue en `from` (compare-and-set).
func (r *TaskRepo) UpdateStatusFrom(ctx context.Context, tenantID, id, from, to string) (bool, error) {
	query := `
		UPDATE tasks SET status = $4, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND status = $3`
	tag, err := r.q.Exec(ctx, query, id, tenantID, from, to)
	if err != nil {
		return false, fmt.Errorf("update task status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete elimina la tarea.
func (r *TaskRepo) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var t entity.Task
	var assigneeID *string
	err := row.Scan(&t.ID, &t.TenantID, &t.ProjectID, &t.Title, &t.Description, &t.Status,
		&assigneeID, &t.DueDate, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if assigneeID != nil {
		t.AssigneeID = *assigneeID
	}
	return &t, nil
}
