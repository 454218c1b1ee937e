package repository

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// ExpenseRepository puerto de persistencia para gastos.
type ExpenseRepository interface {
	Create(ctx context.Context, e *entity.Expense) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Expense, error)
	GetByWorkflowID(ctx context.Context, tenantID, workflowID string) (*entity.Expense, error)
	ListByCreator(ctx context.Context, tenantID, createdBy string, limit, offset int) ([]*entity.Expense, error)
}
