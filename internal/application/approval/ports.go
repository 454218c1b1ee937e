package approval

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// TxRunner ejecuta fn con repositorios atados a una transacción: o todo se
// aplica (workflow + gasto + auditoría) o nada. Evita quedar con un
// workflow huérfano si falla el insert del gasto.
type TxRunner interface {
	RunApproval(ctx context.Context, fn func(
		wfRepo repository.WorkflowRepository,
		expenseRepo repository.ExpenseRepository,
		auditRepo repository.AuditLogRepository,
	) error) error
}
