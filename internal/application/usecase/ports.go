package usecase

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// TimesheetTxRunner ejecuta el upsert masivo de partes de horas en una sola
// transacción: o entran todas las entradas o ninguna.
type TimesheetTxRunner interface {
	RunTimesheet(ctx context.Context, fn func(
		tsRepo repository.TimesheetRepository,
		auditRepo repository.AuditLogRepository,
	) error) error
}

// ProjectTxRunner ejecuta la creación de un proyecto con su membresía inicial
// y la entrada de auditoría en una sola transacción.
type ProjectTxRunner interface {
	RunProject(ctx context.Context, fn func(
		projectRepo repository.ProjectRepository,
		auditRepo repository.AuditLogRepository,
	) error) error
}
