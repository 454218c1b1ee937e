package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// TimesheetFilter filtros de listado de partes de horas.
type TimesheetFilter struct {
	UserID    string
	ProjectID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// TimesheetRepository puerto de persistencia para partes de horas.
// Create/Update respetan la unicidad compuesta (user, date, project, task);
// la implementación mapea la violación a un error de dominio.
type TimesheetRepository interface {
	Create(ctx context.Context, ts *entity.Timesheet) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Timesheet, error)
	// GetByKey busca por la clave compuesta (user, date, project, task);
	// (nil, nil) si no existe.
	GetByKey(ctx context.Context, tenantID, userID, projectID, taskID string, date time.Time) (*entity.Timesheet, error)
	List(ctx context.Context, tenantID string, f TimesheetFilter) ([]*entity.Timesheet, error)
	Update(ctx context.Context, ts *entity.Timesheet) error
	Delete(ctx context.Context, tenantID, id string) error
	// SumHoursForDay suma las horas del usuario en la fecha, excluyendo
	// excludeID (vacío = ninguna). Para el tope diario de 24 horas.
	SumHoursForDay(ctx context.Context, tenantID, userID string, date time.Time, excludeID string) (decimal.Decimal, error)
	// CountByTask partes vinculados a una tarea (guardia de borrado de Task).
	CountByTask(ctx context.Context, tenantID, taskID string) (int, error)
}
