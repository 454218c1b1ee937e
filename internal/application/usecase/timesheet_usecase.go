package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// Códigos de negocio de partes de horas.
const (
	codeTSNotFound  = "ERR-TS-404"
	codeTSHours     = "ERR-TS-001" // fuera de [0.25, 24] o no múltiplo de 0.25
	codeTSDailyCap  = "ERR-TS-002" // la suma del día superaría 24 horas
	codeTSDuplicate = "ERR-TS-003" // ya existe (user, date, project, task)
)

// TimesheetUseCase partes de horas: registro individual y upsert masivo.
type TimesheetUseCase struct {
	tsRepo      repository.TimesheetRepository
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	txRunner    TimesheetTxRunner
	recorder    *audit.Recorder
}

// NewTimesheetUseCase construye el caso de uso.
func NewTimesheetUseCase(
	tsRepo repository.TimesheetRepository,
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	txRunner TimesheetTxRunner,
	recorder *audit.Recorder,
) *TimesheetUseCase {
	return &TimesheetUseCase{
		tsRepo:      tsRepo,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		txRunner:    txRunner,
		recorder:    recorder,
	}
}

// Create registra un parte de horas del propio actor. Valida membresía del
// proyecto, pertenencia de la tarea, rango/incrementos, duplicado y tope
// diario de 24 horas.
func (uc *TimesheetUseCase) Create(ctx context.Context, actor rbac.Context, in dto.TimesheetEntryRequest) (*dto.TimesheetResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	ts, err := uc.buildEntry(ctx, actor, in)
	if err != nil {
		return nil, err
	}
	if err := uc.checkDuplicate(ctx, actor.TenantID, ts, ""); err != nil {
		return nil, err
	}
	if err := uc.checkDailyCap(ctx, actor.TenantID, ts, ""); err != nil {
		return nil, err
	}
	if err := uc.tsRepo.Create(ctx, ts); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditTimesheetCreate,
		ResourceType: "timesheet",
		ResourceID:   ts.ID,
		After:        audit.Snapshot(dto.ToTimesheetResponse(ts)),
	}); err != nil {
		return nil, err
	}
	return dto.ToTimesheetResponse(ts), nil
}

// Update edita un parte propio. Las validaciones de horas, duplicado y tope
// diario se reevalúan contra el estado resultante.
func (uc *TimesheetUseCase) Update(ctx context.Context, actor rbac.Context, id string, in dto.TimesheetEntryRequest) (*dto.TimesheetResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	existing, err := uc.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	updated, err := uc.buildEntry(ctx, actor, in)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := uc.checkDuplicate(ctx, actor.TenantID, updated, existing.ID); err != nil {
		return nil, err
	}
	if err := uc.checkDailyCap(ctx, actor.TenantID, updated, existing.ID); err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToTimesheetResponse(existing))
	if err := uc.tsRepo.Update(ctx, updated); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditTimesheetUpdate,
		ResourceType: "timesheet",
		ResourceID:   updated.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToTimesheetResponse(updated)),
	}); err != nil {
		return nil, err
	}
	return dto.ToTimesheetResponse(updated), nil
}

// Delete borra un parte propio.
func (uc *TimesheetUseCase) Delete(ctx context.Context, actor rbac.Context, id string) error {
	if err := actor.RequireAny(); err != nil {
		return err
	}
	ts, err := uc.getOwned(ctx, actor, id)
	if err != nil {
		return err
	}
	before := audit.Snapshot(dto.ToTimesheetResponse(ts))
	if err := uc.tsRepo.Delete(ctx, actor.TenantID, ts.ID); err != nil {
		return domain.Wrap(err)
	}
	return uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditTimesheetDelete,
		ResourceType: "timesheet",
		ResourceID:   ts.ID,
		Before:       before,
	})
}

// BulkUpsert aplica un lote de entradas en una sola transacción: cada
// entrada crea o actualiza según exista la clave compuesta; si cualquiera
// falla no entra ninguna.
func (uc *TimesheetUseCase) BulkUpsert(ctx context.Context, actor rbac.Context, in dto.BulkUpsertTimesheetRequest) ([]*dto.TimesheetResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	if len(in.Entries) == 0 {
		return nil, domain.Invalid("ERR-VAL-001", "el lote no puede estar vacío")
	}
	// Validaciones de forma y membresía fuera de la transacción; el estado
	// (duplicados, tope diario) se evalúa dentro, entrada por entrada, de
	// modo que las entradas previas del mismo lote cuenten.
	built := make([]*entity.Timesheet, 0, len(in.Entries))
	for _, e := range in.Entries {
		ts, err := uc.buildEntry(ctx, actor, e)
		if err != nil {
			return nil, err
		}
		built = append(built, ts)
	}

	out := make([]*dto.TimesheetResponse, 0, len(built))
	err := uc.txRunner.RunTimesheet(ctx, func(
		tsRepo repository.TimesheetRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		rec := uc.recorder.WithRepo(auditRepo)
		for _, ts := range built {
			existing, err := tsRepo.GetByKey(ctx, actor.TenantID, ts.UserID, ts.ProjectID, ts.TaskID, ts.Date)
			if err != nil {
				return err
			}
			excludeID := ""
			if existing != nil {
				excludeID = existing.ID
			}
			sum, err := tsRepo.SumHoursForDay(ctx, actor.TenantID, ts.UserID, ts.Date, excludeID)
			if err != nil {
				return err
			}
			if sum.Add(ts.Hours).GreaterThan(entity.TimesheetDailyCap) {
				return domain.Invalidf(codeTSDailyCap, "la suma de horas del %s superaría el tope diario de 24", ts.Date.Format(dto.DateLayout))
			}
			if existing == nil {
				if err := tsRepo.Create(ctx, ts); err != nil {
					return err
				}
				if err := rec.Record(ctx, audit.Entry{
					TenantID:     actor.TenantID,
					ActorID:      actor.UserID,
					Action:       entity.AuditTimesheetCreate,
					ResourceType: "timesheet",
					ResourceID:   ts.ID,
					After:        audit.Snapshot(dto.ToTimesheetResponse(ts)),
				}); err != nil {
					return err
				}
				out = append(out, dto.ToTimesheetResponse(ts))
				continue
			}
			before := audit.Snapshot(dto.ToTimesheetResponse(existing))
			ts.ID = existing.ID
			ts.CreatedAt = existing.CreatedAt
			if err := tsRepo.Update(ctx, ts); err != nil {
				return err
			}
			if err := rec.Record(ctx, audit.Entry{
				TenantID:     actor.TenantID,
				ActorID:      actor.UserID,
				Action:       entity.AuditTimesheetUpdate,
				ResourceType: "timesheet",
				ResourceID:   ts.ID,
				Before:       before,
				After:        audit.Snapshot(dto.ToTimesheetResponse(ts)),
			}); err != nil {
				return err
			}
			out = append(out, dto.ToTimesheetResponse(ts))
		}
		return nil
	})
	if err != nil {
		return nil, domain.Wrap(err)
	}
	return out, nil
}

// List lista partes del tenant. Un usuario sin rol aprobador/pm/admin solo
// ve los propios: el filtro de usuario se fuerza a sí mismo.
func (uc *TimesheetUseCase) List(ctx context.Context, actor rbac.Context, in dto.ListTimesheetsRequest) ([]*dto.TimesheetResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	in.DefaultPage()
	f := repository.TimesheetFilter{
		UserID:    in.UserID,
		ProjectID: in.ProjectID,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}
	if !actor.HasRole(entity.RolePM, entity.RoleApprover, entity.RoleTenantAdmin) {
		f.UserID = actor.UserID
	}
	if in.From != "" {
		t, err := dto.ParseDate(in.From)
		if err != nil {
			return nil, domain.Invalid("ERR-VAL-002", "filtro from inválido (formato YYYY-MM-DD)")
		}
		f.From = &t
	}
	if in.To != "" {
		t, err := dto.ParseDate(in.To)
		if err != nil {
			return nil, domain.Invalid("ERR-VAL-002", "filtro to inválido (formato YYYY-MM-DD)")
		}
		f.To = &t
	}
	list, err := uc.tsRepo.List(ctx, actor.TenantID, f)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	out := make([]*dto.TimesheetResponse, 0, len(list))
	for _, ts := range list {
		out = append(out, dto.ToTimesheetResponse(ts))
	}
	return out, nil
}

// ── internos ──────────────────────────────────────────────────────────────────

// buildEntry valida forma, membresía y tarea, y construye la entidad.
func (uc *TimesheetUseCase) buildEntry(ctx context.Context, actor rbac.Context, in dto.TimesheetEntryRequest) (*entity.Timesheet, error) {
	if in.ProjectID == "" {
		return nil, domain.Invalid("ERR-VAL-001", "el parte de horas necesita un proyecto")
	}
	date, err := dto.ParseDate(in.Date)
	if err != nil {
		return nil, domain.Invalid("ERR-VAL-002", "fecha del parte inválida (formato YYYY-MM-DD)")
	}
	if !entity.ValidHours(in.Hours) {
		return nil, domain.Invalid(codeTSHours, "las horas deben estar entre 0.25 y 24 en incrementos de 0.25")
	}
	p, err := uc.projectRepo.GetByID(ctx, actor.TenantID, in.ProjectID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if p == nil {
		return nil, domain.NotFound(codePJNotFound, "el proyecto")
	}
	if !p.IsMember(actor.UserID) {
		return nil, domain.Authz(domain.CodeNotOwner, "solo miembros del proyecto registran horas en él")
	}
	if in.TaskID != "" {
		t, err := uc.taskRepo.GetByID(ctx, actor.TenantID, in.TaskID)
		if err != nil {
			return nil, domain.Wrap(err)
		}
		if t == nil || t.ProjectID != p.ID {
			return nil, domain.Invalid("ERR-VAL-005", "la tarea no existe o no pertenece al proyecto")
		}
	}
	now := time.Now()
	return &entity.Timesheet{
		ID:        uuid.New().String(),
		TenantID:  actor.TenantID,
		UserID:    actor.UserID,
		ProjectID: in.ProjectID,
		TaskID:    in.TaskID,
		Date:      date,
		Hours:     in.Hours,
		Note:      in.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (uc *TimesheetUseCase) checkDuplicate(ctx context.Context, tenantID string, ts *entity.Timesheet, excludeID string) error {
	existing, err := uc.tsRepo.GetByKey(ctx, tenantID, ts.UserID, ts.ProjectID, ts.TaskID, ts.Date)
	if err != nil {
		return domain.Wrap(err)
	}
	if existing != nil && existing.ID != excludeID {
		return domain.Invalid(codeTSDuplicate, "ya existe un parte para ese usuario, fecha, proyecto y tarea")
	}
	return nil
}

func (uc *TimesheetUseCase) checkDailyCap(ctx context.Context, tenantID string, ts *entity.Timesheet, excludeID string) error {
	sum, err := uc.tsRepo.SumHoursForDay(ctx, tenantID, ts.UserID, ts.Date, excludeID)
	if err != nil {
		return domain.Wrap(err)
	}
	if sum.Add(ts.Hours).GreaterThan(entity.TimesheetDailyCap) {
		remaining := entity.TimesheetDailyCap.Sub(sum)
		if remaining.LessThan(decimal.Zero) {
			remaining = decimal.Zero
		}
		return domain.Invalidf(codeTSDailyCap, "la suma de horas del día superaría 24 (disponibles: %s)", remaining.String())
	}
	return nil
}

func (uc *TimesheetUseCase) getOwned(ctx context.Context, actor rbac.Context, id string) (*entity.Timesheet, error) {
	ts, err := uc.tsRepo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if ts == nil {
		return nil, domain.NotFound(codeTSNotFound, "el parte de horas")
	}
	if ts.UserID != actor.UserID {
		return nil, domain.Authz(domain.CodeNotOwner, "solo el dueño puede modificar su parte de horas")
	}
	return ts, nil
}
