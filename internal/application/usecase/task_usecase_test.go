package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Arnés
// ──────────────────────────────────────────────────────────────────────────────

type taskHarness struct {
	uc        *usecase.TaskUseCase
	taskRepo  *fakeTaskRepo
	tsRepo    *fakeTSRepo
	auditRepo *memAuditRepo
}

func newTaskHarness(t *testing.T) *taskHarness {
	t.Helper()
	taskRepo := &fakeTaskRepo{tasks: map[string]*entity.Task{}}
	tsRepo := newFakeTSRepo()
	auditRepo := &memAuditRepo{}
	projects := &fakeProjectRepo{projects: map[string]*entity.Project{
		tsProjectID: {
			ID: tsProjectID, TenantID: tenantA, Name: "Proyecto Aurora",
			Status: entity.ProjectStatusActive, PMID: tsPMID,
			MemberIDs: []string{tsPMID, tsMemberID},
		},
	}}
	uc := usecase.NewTaskUseCase(taskRepo, projects, tsRepo, audit.NewRecorder(auditRepo))
	return &taskHarness{uc: uc, taskRepo: taskRepo, tsRepo: tsRepo, auditRepo: auditRepo}
}

func (h *taskHarness) mustCreate(t *testing.T, in dto.CreateTaskRequest) *dto.TaskResponse {
	t.Helper()
	out, err := h.uc.Create(context.Background(), memberCtx(tsPMID), tsProjectID, in)
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestTaskCreate_PMCreaEnTodo(t *testing.T) {
	h := newTaskHarness(t)

	out := h.mustCreate(t, dto.CreateTaskRequest{Title: "Diseñar esquema", AssigneeID: tsMemberID})
	assert.Equal(t, entity.TaskStatusTodo, out.Status, "toda tarea nace en todo")
	assert.Equal(t, tsMemberID, out.AssigneeID)
	require.Len(t, h.auditRepo.entries, 1)
	assert.Equal(t, entity.AuditTaskCreate, h.auditRepo.entries[0].Action)
}

func TestTaskCreate_MiembroSimple_ERRAUTH003(t *testing.T) {
	h := newTaskHarness(t)

	// Un miembro del proyecto sin ser su PM no puede crear tareas.
	_, err := h.uc.Create(context.Background(), memberCtx(tsMemberID), tsProjectID,
		dto.CreateTaskRequest{Title: "Tarea"})
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-003")
	assert.Empty(t, h.auditRepo.entries, "una creación denegada no deja entrada de auditoría")
}

func TestTaskCreate_TenantAdmin_OK(t *testing.T) {
	h := newTaskHarness(t)

	out, err := h.uc.Create(context.Background(), adminCtx("admin-1"), tsProjectID,
		dto.CreateTaskRequest{Title: "Tarea"})
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusTodo, out.Status)
}

func TestTaskCreate_AsignadoNoMiembro_ERRTASK002(t *testing.T) {
	h := newTaskHarness(t)

	_, err := h.uc.Create(context.Background(), memberCtx(tsPMID), tsProjectID,
		dto.CreateTaskRequest{Title: "Tarea", AssigneeID: "extraño"})
	wantCode(t, err, domain.KindValidation, "ERR-TASK-002")
}

func TestTaskCreate_NoMiembro_ERRAUTH003(t *testing.T) {
	h := newTaskHarness(t)

	_, err := h.uc.Create(context.Background(), memberCtx("extraño"), tsProjectID,
		dto.CreateTaskRequest{Title: "Tarea"})
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-003")
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / ChangeStatus — PM, asignado o tenant_admin
// ──────────────────────────────────────────────────────────────────────────────

func TestTaskUpdate_Asignado_OK(t *testing.T) {
	h := newTaskHarness(t)
	created := h.mustCreate(t, dto.CreateTaskRequest{Title: "Tarea", AssigneeID: tsMemberID})

	out, err := h.uc.Update(context.Background(), memberCtx(tsMemberID), created.ID,
		dto.UpdateTaskRequest{Title: "Tarea revisada", AssigneeID: tsMemberID})
	require.NoError(t, err)
	assert.Equal(t, "Tarea revisada", out.Title)
}

func TestTaskUpdate_MiembroNoAsignado_ERRAUTH003(t *testing.T) {
	h := newTaskHarness(t)
	created := h.mustCreate(t, dto.CreateTaskRequest{Title: "Tarea", AssigneeID: tsPMID})

	_, err := h.uc.Update(context.Background(), memberCtx(tsMemberID), created.ID,
		dto.UpdateTaskRequest{Title: "Intento ajeno"})
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-003")
}

func TestTaskChangeStatus_AsignadoTodoAInProgress_OK(t *testing.T) {
	h := newTaskHarness(t)
	created := h.mustCreate(t, dto.CreateTaskRequest{Title: "Tarea", AssigneeID: tsMemberID})

	out, err := h.uc.ChangeStatus(context.Background(), memberCtx(tsMemberID), created.ID, entity.TaskStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusInProgress, out.Status)
}

func TestTaskChangeStatus_MiembroNoAsignado_ERRAUTH003(t *testing.T) {
	h := newTaskHarness(t)
	created := h.mustCreate(t, dto.CreateTaskRequest{Title: "Tarea"})

	_, err := h.uc.ChangeStatus(context.Background(), memberCtx(tsMemberID), created.ID, entity.TaskStatusInProgress)
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-003")
}

func TestTaskChangeStatus_TodoADone_Prohibido(t *testing.T) {
	h := newTaskHarness(t)
	created := h.mustCreate(t, dto.CreateTaskRequest{Title: "Tarea"})

	// done solo se alcanza desde in_progress.
	_, err := h.uc.ChangeStatus(context.Background(), memberCtx(tsPMID), created.ID, entity.TaskStatusDone)
	wantCode(t, err, domain.KindStateTransition, "ERR-TASK-001")
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete — guarda referencial y permisos
// ──────────────────────────────────────────────────────────────────────────────

func TestTaskDelete_ConPartesDeHoras_ERRTASK003(t *testing.T) {
	h := newTaskHarness(t)
	created := h.mustCreate(t, dto.CreateTaskRequest{Title: "Tarea"})

	require.NoError(t, h.tsRepo.Create(context.Background(), &entity.Timesheet{
		ID: "ts-1", TenantID: tenantA, UserID: tsMemberID,
		ProjectID: tsProjectID, TaskID: created.ID,
		Hours: decimal.NewFromInt(4),
	}))

	err := h.uc.Delete(context.Background(), memberCtx(tsPMID), created.ID)
	wantCode(t, err, domain.KindValidation, "ERR-TASK-003")

	stored, _ := h.taskRepo.GetByID(context.Background(), tenantA, created.ID)
	assert.NotNil(t, stored, "la tarea sigue existiendo tras el rechazo")
}

func TestTaskDelete_MiembroSimple_ERRAUTH003(t *testing.T) {
	h := newTaskHarness(t)
	created := h.mustCreate(t, dto.CreateTaskRequest{Title: "Tarea", AssigneeID: tsMemberID})

	// Ni siquiera el asignado puede borrar: solo el PM o un tenant_admin.
	err := h.uc.Delete(context.Background(), memberCtx(tsMemberID), created.ID)
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-003")

	stored, _ := h.taskRepo.GetByID(context.Background(), tenantA, created.ID)
	assert.NotNil(t, stored, "la tarea sigue existiendo tras el rechazo")
}

func TestTaskDelete_SinPartes_BorraYAudita(t *testing.T) {
	h := newTaskHarness(t)
	created := h.mustCreate(t, dto.CreateTaskRequest{Title: "Tarea"})

	require.NoError(t, h.uc.Delete(context.Background(), memberCtx(tsPMID), created.ID))

	stored, _ := h.taskRepo.GetByID(context.Background(), tenantA, created.ID)
	assert.Nil(t, stored)

	last := h.auditRepo.entries[len(h.auditRepo.entries)-1]
	assert.Equal(t, entity.AuditTaskDelete, last.Action)
	assert.NotNil(t, last.Before, "el borrado lleva snapshot previo")
	assert.Nil(t, last.After)
}
