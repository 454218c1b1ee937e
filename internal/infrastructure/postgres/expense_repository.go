package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

var _ repository.ExpenseRepository = (*ExpenseRepo)(nil)

// ExpenseRepo implementación del puerto ExpenseRepository sobre PostgreSQL
// (usable con pool o tx).
type ExpenseRepo struct {
	q Querier
}

// NewExpenseRepository construye el adaptador de persistencia para gastos.
func NewExpenseRepository(q Querier) *ExpenseRepo {
	return &ExpenseRepo{q: q}
}

const expenseColumns = `id, tenant_id, workflow_id, project_id, category,
	amount, date, note, created_by, created_at, updated_at`

// Create persiste un gasto nuevo.
func (r *ExpenseRepo) Create(ctx context.Context, e *entity.Expense) error {
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.TenantID, e.WorkflowID, nullIfEmpty(e.ProjectID), e.Category,
		e.Amount, e.Date, e.Note, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetByID obtiene un gasto del tenant; (nil, nil) si no existe o es de otro.
func (r *ExpenseRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 AND tenant_id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, id, tenantID), "get expense")
}

// GetByWorkflowID obtiene el gasto vinculado a un workflow.
func (r *ExpenseRepo) GetByWorkflowID(ctx context.Context, tenantID, workflowID string) (*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE workflow_id = $1 AND tenant_id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, workflowID, tenantID), "get expense by workflow")
}

// ListByCreator lista los gastos de un usuario con paginación.
func (r *ExpenseRepo) ListByCreator(ctx context.Context, tenantID, createdBy string, limit, offset int) ([]*entity.Expense, error) {
	query := `
		SELECT ` + expenseColumns + ` FROM expenses
		WHERE tenant_id = $1 AND created_by = $2
		ORDER BY date DESC, created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tenantID, createdBy, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *ExpenseRepo) scanOne(row pgx.Row, op string) (*entity.Expense, error) {
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

func scanExpense(row pgx.Row) (*entity.Expense, error) {
	var e entity.Expense
	var projectID *string
	err := row.Scan(&e.ID, &e.TenantID, &e.WorkflowID, &projectID, &e.Category,
		&e.Amount, &e.Date, &e.Note, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if projectID != nil {
		e.ProjectID = *projectID
	}
	return &e, nil
}
