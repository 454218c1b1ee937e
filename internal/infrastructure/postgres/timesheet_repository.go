package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

var _ repository.TimesheetRepository = (*TimesheetRepo)(nil)

// TimesheetRepo implementación del puerto TimesheetRepository sobre
// PostgreSQL. El índice único (tenant_id, user_id, date, project_id,
// task_id) respalda la unicidad compuesta; task_id usa '' como valor no-nulo
// para que el índice cubra también las entradas sin tarea.
type TimesheetRepo struct {
	q Querier
}

// NewTimesheetRepository construye el adaptador de partes de horas.
func NewTimesheetRepository(q Querier) *TimesheetRepo {
	return &TimesheetRepo{q: q}
}

const timesheetColumns = `id, tenant_id, user_id, project_id, task_id, date,
	hours, note, created_at, updated_at`

// Create persiste un parte nuevo; mapea la violación de unicidad al error de
// dominio de duplicado.
func (r *TimesheetRepo) Create(ctx context.Context, ts *entity.Timesheet) error {
	query := `
		INSERT INTO timesheets (` + timesheetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		ts.ID, ts.TenantID, ts.UserID, ts.ProjectID, ts.TaskID, ts.Date,
		ts.Hours, ts.Note, ts.CreatedAt, ts.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Invalid("ERR-TS-003", "ya existe un parte para ese usuario, fecha, proyecto y tarea")
		}
		return fmt.Errorf("insert timesheet: %w", err)
	}
	return nil
}

// GetByID obtiene un parte del tenant; (nil, nil) si no existe o es de otro.
func (r *TimesheetRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE id = $1 AND tenant_id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, id, tenantID), "get timesheet")
}

// GetByKey busca por la clave compuesta; (nil, nil) si no existe.
func (r *TimesheetRepo) GetByKey(ctx context.Context, tenantID, userID, projectID, taskID string, date time.Time) (*entity.Timesheet, error) {
	query := `
		SELECT ` + timesheetColumns + ` FROM timesheets
		WHERE tenant_id = $1 AND user_id = $2 AND project_id = $3 AND task_id = $4 AND date = $5`
	return r.scanOne(r.q.QueryRow(ctx, query, tenantID, userID, projectID, taskID, date), "get timesheet by key")
}

// List lista partes del tenant con filtros.
func (r *TimesheetRepo) List(ctx context.Context, tenantID string, f repository.TimesheetFilter) ([]*entity.Timesheet, error) {
	query := `
		SELECT ` + timesheetColumns + ` FROM timesheets
		WHERE tenant_id = $1
		  AND ($2 = '' OR user_id = $2)
		  AND ($3 = '' OR project_id = $3)
		  AND ($4::date IS NULL OR date >= $4)
		  AND ($5::date IS NULL OR date <= $5)
		ORDER BY date DESC, created_at DESC LIMIT $6 OFFSET $7`
	rows, err := r.q.Query(ctx, query, tenantID, f.UserID, f.ProjectID, f.From, f.To, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list timesheets: %w", err)
	}
	defer rows.Close()
	var list []*entity.Timesheet
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timesheet: %w", err)
		}
		list = append(list, ts)
	}
	return list, rows.Err()
}

// Update actualiza un parte; respeta la unicidad compuesta.
func (r *TimesheetRepo) Update(ctx context.Context, ts *entity.Timesheet) error {
	query := `
		UPDATE timesheets
		SET project_id = $3, task_id = $4, date = $5, hours = $6, note = $7, updated_at = $8
		WHERE id = $1 AND tenant_id = $2`
	_, err := r.q.Exec(ctx, query,
		ts.ID, ts.TenantID, ts.ProjectID, ts.TaskID, ts.Date, ts.Hours, ts.Note, ts.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Invalid("ERR-TS-003", "ya existe un parte para ese usuario, fecha, proyecto y tarea")
		}
		return fmt.Errorf("update timesheet: %w", err)
	}
	return nil
}

// Delete elimina un parte.
func (r *TimesheetRepo) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM timesheets WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete timesheet: %w", err)
	}
	return nil
}

// SumHoursForDay suma las horas del usuario en la fecha, excluyendo
// excludeID (vacío = ninguna).
func (r *TimesheetRepo) SumHoursForDay(ctx context.Context, tenantID, userID string, date time.Time, excludeID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(hours), 0) FROM timesheets
		WHERE tenant_id = $1 AND user_id = $2 AND date = $3
		  AND ($4 = '' OR id <> $4)`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, tenantID, userID, date, excludeID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum hours for day: %w", err)
	}
	return sum, nil
}

// CountByTask partes vinculados a una tarea.
func (r *TimesheetRepo) CountByTask(ctx context.Context, tenantID, taskID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM timesheets WHERE tenant_id = $1 AND task_id = $2`,
		tenantID, taskID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count timesheets by task: %w", err)
	}
	return n, nil
}

func (r *TimesheetRepo) scanOne(row pgx.Row, op string) (*entity.Timesheet, error) {
	ts, err := scanTimesheet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ts, nil
}

func scanTimesheet(row pgx.Row) (*entity.Timesheet, error) {
	var ts entity.Timesheet
	err := row.Scan(&ts.ID, &ts.TenantID, &ts.UserID, &ts.ProjectID, &ts.TaskID, &ts.Date,
		&ts.Hours, &ts.Note, &ts.CreatedAt, &ts.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
