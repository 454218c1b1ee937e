package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/backoffice-pro/internal/application/approval"
	"github.com/tu-usuario/backoffice-pro/internal/application/auth"
	"github.com/tu-usuario/backoffice-pro/internal/application/billing"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// Ensure TxRunner implements los runners de cada capa de aplicación.
var _ approval.TxRunner = (*TxRunner)(nil)
var _ auth.TxRunner = (*TxRunner)(nil)
var _ billing.BillingTxRunner = (*TxRunner)(nil)
var _ usecase.TimesheetTxRunner = (*TxRunner)(nil)
var _ usecase.ProjectTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con repos
// atados a la tx.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunApproval inicia una transacción con repos de workflows, gastos y
// auditoría (creación atómica de solicitudes y gastos).
func (r *TxRunner) RunApproval(ctx context.Context, fn func(
	wfRepo repository.WorkflowRepository,
	expenseRepo repository.ExpenseRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewWorkflowRepository(q), NewExpenseRepository(q), NewAuditRepository(q))
	})
}

// RunRegistration inicia una transacción con repos de tenants y usuarios
// (bootstrap de tenant + primer admin).
func (r *TxRunner) RunRegistration(ctx context.Context, fn func(
	tenantRepo repository.TenantRepository,
	userRepo repository.UserRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewTenantRepository(q), NewUserRepository(q))
	})
}

// RunBilling inicia una transacción con repos de facturas y auditoría
// (cabecera + líneas + entrada de auditoría en un solo commit).
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewInvoiceRepository(q), NewAuditRepository(q))
	})
}

// RunProject inicia una transacción con repos de proyectos y auditoría
// (proyecto + membresía inicial + entrada de auditoría en un solo commit).
func (r *TxRunner) RunProject(ctx context.Context, fn func(
	projectRepo repository.ProjectRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewProjectRepository(q), NewAuditRepository(q))
	})
}

// RunTimesheet inicia una transacción con repos de partes de horas y
// auditoría (upsert masivo todo-o-nada).
func (r *TxRunner) RunTimesheet(ctx context.Context, fn func(
	tsRepo repository.TimesheetRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewTimesheetRepository(q), NewAuditRepository(q))
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
