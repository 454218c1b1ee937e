package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
	"github.com/tu-usuario/backoffice-pro/internal/domain/statemachine"
)

// Códigos de negocio de tareas.
const (
	codeTaskNotFound      = "ERR-TASK-404"
	codeTaskAssignee      = "ERR-TASK-002" // el asignado no es miembro del proyecto
	codeTaskHasTimesheets = "ERR-TASK-003" // no se borra con partes de horas
)

// TaskUseCase tareas dentro de un proyecto.
type TaskUseCase struct {
	taskRepo      repository.TaskRepository
	projectRepo   repository.ProjectRepository
	timesheetRepo repository.TimesheetRepository
	recorder      *audit.Recorder
}

// NewTaskUseCase construye el caso de uso.
func NewTaskUseCase(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, timesheetRepo repository.TimesheetRepository, recorder *audit.Recorder) *TaskUseCase {
	return &TaskUseCase{taskRepo: taskRepo, projectRepo: projectRepo, timesheetRepo: timesheetRepo, recorder: recorder}
}

// Create crea una tarea en todo. Solo el PM del proyecto o un tenant_admin;
// el asignado, si viene, debe ser miembro.
func (uc *TaskUseCase) Create(ctx context.Context, actor rbac.Context, projectID string, in dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	p, err := uc.managedProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, domain.Invalid("ERR-VAL-001", "el título de la tarea es obligatorio")
	}
	if in.AssigneeID != "" && !p.IsMember(in.AssigneeID) {
		return nil, domain.Invalid(codeTaskAssignee, "el asignado debe ser miembro del proyecto")
	}
	due, err := parseOptionalDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	t := &entity.Task{
		ID:          uuid.New().String(),
		TenantID:    actor.TenantID,
		ProjectID:   p.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      entity.TaskStatusTodo,
		AssigneeID:  in.AssigneeID,
		DueDate:     due,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.taskRepo.Create(ctx, t); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditTaskCreate,
		ResourceType: "task",
		ResourceID:   t.ID,
		After:        audit.Snapshot(dto.ToTaskResponse(t)),
	}); err != nil {
		return nil, err
	}
	return dto.ToTaskResponse(t), nil
}

// Update edita título, descripción, asignado y fecha límite. Solo el PM del
// proyecto, el asignado actual o un tenant_admin.
func (uc *TaskUseCase) Update(ctx context.Context, actor rbac.Context, id string, in dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	t, p, err := uc.getEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, domain.Invalid("ERR-VAL-001", "el título de la tarea es obligatorio")
	}
	if in.AssigneeID != "" && !p.IsMember(in.AssigneeID) {
		return nil, domain.Invalid(codeTaskAssignee, "el asignado debe ser miembro del proyecto")
	}
	due, err := parseOptionalDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToTaskResponse(t))
	t.Title = in.Title
	t.Description = in.Description
	t.AssigneeID = in.AssigneeID
	t.DueDate = due
	t.UpdatedAt = time.Now()

	if err := uc.taskRepo.Update(ctx, t); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditTaskUpdate,
		ResourceType: "task",
		ResourceID:   t.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToTaskResponse(t)),
	}); err != nil {
		return nil, err
	}
	return dto.ToTaskResponse(t), nil
}

// ChangeStatus transiciona la tarea (todo ⇄ in_progress ⇄ done) con
// compare-and-set. Mismos permisos que Update.
func (uc *TaskUseCase) ChangeStatus(ctx context.Context, actor rbac.Context, id, to string) (*dto.TaskResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	t, _, err := uc.getEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !statemachine.ValidStatus(statemachine.EntityTask, to) {
		return nil, domain.Invalid("ERR-VAL-001", "estado de tarea no reconocido")
	}
	if err := statemachine.Check(statemachine.EntityTask, t.Status, to); err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToTaskResponse(t))
	from := t.Status
	ok, err := uc.taskRepo.UpdateStatusFrom(ctx, actor.TenantID, t.ID, from, to)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if !ok {
		fresh, err := uc.taskRepo.GetByID(ctx, actor.TenantID, t.ID)
		if err != nil {
			return nil, domain.Wrap(err)
		}
		if fresh == nil {
			return nil, domain.NotFound(codeTaskNotFound, "la tarea")
		}
		return nil, domain.Transition(statemachine.CodeTaskTransition, "task", fresh.Status, to)
	}
	t.Status = to
	t.UpdatedAt = time.Now()

	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditTaskStatusChange,
		ResourceType: "task",
		ResourceID:   t.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToTaskResponse(t)),
	}); err != nil {
		return nil, err
	}
	return dto.ToTaskResponse(t), nil
}

// Delete borra la tarea si no tiene partes de horas vinculados. Solo el PM
// del proyecto o un tenant_admin.
func (uc *TaskUseCase) Delete(ctx context.Context, actor rbac.Context, id string) error {
	if err := actor.RequireAny(); err != nil {
		return err
	}
	t, p, err := uc.getWithProject(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := requireTaskManager(actor, p); err != nil {
		return err
	}
	n, err := uc.timesheetRepo.CountByTask(ctx, actor.TenantID, t.ID)
	if err != nil {
		return domain.Wrap(err)
	}
	if n > 0 {
		return domain.Invalid(codeTaskHasTimesheets, "la tarea tiene partes de horas vinculados y no puede borrarse")
	}

	before := audit.Snapshot(dto.ToTaskResponse(t))
	if err := uc.taskRepo.Delete(ctx, actor.TenantID, t.ID); err != nil {
		return domain.Wrap(err)
	}
	return uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditTaskDelete,
		ResourceType: "task",
		ResourceID:   t.ID,
		Before:       before,
	})
}

// Get obtiene una tarea visible para miembros del proyecto.
func (uc *TaskUseCase) Get(ctx context.Context, actor rbac.Context, id string) (*dto.TaskResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	t, _, err := uc.getWithProject(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return dto.ToTaskResponse(t), nil
}

// ListByProject lista tareas de un proyecto.
func (uc *TaskUseCase) ListByProject(ctx context.Context, actor rbac.Context, projectID string, page dto.PageRequest) ([]*dto.TaskResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	if _, err := uc.memberProject(ctx, actor, projectID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.taskRepo.ListByProject(ctx, actor.TenantID, projectID, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	out := make([]*dto.TaskResponse, 0, len(list))
	for _, t := range list {
		out = append(out, dto.ToTaskResponse(t))
	}
	return out, nil
}

// memberProject carga el proyecto y exige membresía (o tenant_admin). Es la
// regla de visibilidad: gobierna las lecturas de tareas.
func (uc *TaskUseCase) memberProject(ctx context.Context, actor rbac.Context, projectID string) (*entity.Project, error) {
	p, err := uc.projectRepo.GetByID(ctx, actor.TenantID, projectID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if p == nil {
		return nil, domain.NotFound(codePJNotFound, "el proyecto")
	}
	if !p.IsMember(actor.UserID) && !actor.IsTenantAdmin() {
		return nil, domain.Authz(domain.CodeNotOwner, "solo miembros del proyecto pueden operar sus tareas")
	}
	return p, nil
}

// managedProject carga el proyecto y exige que el actor sea su PM o un
// tenant_admin.
func (uc *TaskUseCase) managedProject(ctx context.Context, actor rbac.Context, projectID string) (*entity.Project, error) {
	p, err := uc.projectRepo.GetByID(ctx, actor.TenantID, projectID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if p == nil {
		return nil, domain.NotFound(codePJNotFound, "el proyecto")
	}
	if err := requireTaskManager(actor, p); err != nil {
		return nil, err
	}
	return p, nil
}

// requireTaskManager exige que el actor sea el PM del proyecto o tenant_admin.
func requireTaskManager(actor rbac.Context, p *entity.Project) error {
	if p.PMID != actor.UserID && !actor.IsTenantAdmin() {
		return domain.Authz(domain.CodeNotOwner, "solo el PM del proyecto o un tenant_admin puede crear o borrar tareas")
	}
	return nil
}

// getEditable carga la tarea y exige que el actor pueda modificarla: el PM
// del proyecto, el asignado de la tarea o un tenant_admin.
func (uc *TaskUseCase) getEditable(ctx context.Context, actor rbac.Context, id string) (*entity.Task, *entity.Project, error) {
	t, p, err := uc.getWithProject(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if p.PMID != actor.UserID && t.AssigneeID != actor.UserID && !actor.IsTenantAdmin() {
		return nil, nil, domain.Authz(domain.CodeNotOwner, "solo el PM del proyecto, el asignado o un tenant_admin puede modificar la tarea")
	}
	return t, p, nil
}

func (uc *TaskUseCase) getWithProject(ctx context.Context, actor rbac.Context, id string) (*entity.Task, *entity.Project, error) {
	t, err := uc.taskRepo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, nil, domain.Wrap(err)
	}
	if t == nil {
		return nil, nil, domain.NotFound(codeTaskNotFound, "la tarea")
	}
	p, err := uc.memberProject(ctx, actor, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

// parseOptionalDate parsea una fecha opcional YYYY-MM-DD.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := dto.ParseDate(*s)
	if err != nil {
		return nil, domain.Invalid("ERR-VAL-002", "fecha inválida (formato YYYY-MM-DD)")
	}
	return &t, nil
}
