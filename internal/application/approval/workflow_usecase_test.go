package approval_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/backoffice-pro/internal/application/approval"
	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/notify"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
	"github.com/tu-usuario/backoffice-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeWorkflowRepo struct {
	items   map[string]*entity.Workflow
	nextNum int64
	// beforeCAS permite simular un escritor concurrente que gana la
	// carrera justo antes del compare-and-set.
	beforeCAS func()
}

func newFakeWorkflowRepo() *fakeWorkflowRepo {
	return &fakeWorkflowRepo{items: map[string]*entity.Workflow{}}
}

func (r *fakeWorkflowRepo) Create(_ context.Context, wf *entity.Workflow) error {
	cp := *wf
	r.items[wf.ID] = &cp
	return nil
}

func (r *fakeWorkflowRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Workflow, error) {
	wf, ok := r.items[id]
	if !ok || wf.TenantID != tenantID {
		return nil, nil
	}
	cp := *wf
	return &cp, nil
}

func (r *fakeWorkflowRepo) List(_ context.Context, tenantID string, f repository.WorkflowFilter) ([]*entity.Workflow, error) {
	var out []*entity.Workflow
	for _, wf := range r.items {
		if wf.TenantID != tenantID {
			continue
		}
		if f.Status != "" && wf.Status != f.Status {
			continue
		}
		cp := *wf
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeWorkflowRepo) Update(_ context.Context, wf *entity.Workflow) error {
	cp := *wf
	r.items[wf.ID] = &cp
	return nil
}

func (r *fakeWorkflowRepo) UpdateStatusFrom(_ context.Context, wf *entity.Workflow, from string) (bool, error) {
	if r.beforeCAS != nil {
		r.beforeCAS()
	}
	stored, ok := r.items[wf.ID]
	if !ok || stored.TenantID != wf.TenantID || stored.Status != from {
		return false, nil
	}
	cp := *wf
	r.items[wf.ID] = &cp
	return true, nil
}

func (r *fakeWorkflowRepo) NextNumber(_ context.Context, _ string) (int64, error) {
	r.nextNum++
	return r.nextNum, nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error { r.users[u.ID] = u; return nil }
func (r *fakeUserRepo) GetByID(_ context.Context, tenantID, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, nil
	}
	return u, nil
}
func (r *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*entity.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error { r.users[u.ID] = u; return nil }
func (r *fakeUserRepo) ListByTenant(_ context.Context, _ string, _, _ int) ([]*entity.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) CountTenantAdmins(_ context.Context, _, _ string) (int, error) {
	return 1, nil
}

type fakeExpenseRepo struct{}

func (fakeExpenseRepo) Create(_ context.Context, _ *entity.Expense) error { return nil }
func (fakeExpenseRepo) GetByID(_ context.Context, _, _ string) (*entity.Expense, error) {
	return nil, nil
}
func (fakeExpenseRepo) GetByWorkflowID(_ context.Context, _, _ string) (*entity.Expense, error) {
	return nil, nil
}
func (fakeExpenseRepo) ListByCreator(_ context.Context, _, _ string, _, _ int) ([]*entity.Expense, error) {
	return nil, nil
}

type fakeAuditRepo struct {
	entries []*entity.AuditEntry
}

func (r *fakeAuditRepo) Insert(_ context.Context, e *entity.AuditEntry) error {
	r.entries = append(r.entries, e)
	return nil
}
func (r *fakeAuditRepo) List(_ context.Context, _ string, _ repository.AuditFilter) ([]*entity.AuditEntry, error) {
	return r.entries, nil
}

func (r *fakeAuditRepo) lastAction() entity.AuditAction {
	if len(r.entries) == 0 {
		return ""
	}
	return r.entries[len(r.entries)-1].Action
}

type fakeNotificationRepo struct {
	created []*entity.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.created = append(r.created, n)
	return nil
}
func (r *fakeNotificationRepo) ListByUser(_ context.Context, _, _ string, _ bool, _, _ int) ([]*entity.Notification, error) {
	return r.created, nil
}
func (r *fakeNotificationRepo) MarkRead(_ context.Context, _, _, _ string) error { return nil }

// fakeTxRunner ejecuta fn directamente contra los fakes (sin transacción).
type fakeTxRunner struct {
	wfRepo      repository.WorkflowRepository
	expenseRepo repository.ExpenseRepository
	auditRepo   repository.AuditLogRepository
}

func (r *fakeTxRunner) RunApproval(ctx context.Context, fn func(
	wfRepo repository.WorkflowRepository,
	expenseRepo repository.ExpenseRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	return fn(r.wfRepo, r.expenseRepo, r.auditRepo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Arnés
// ──────────────────────────────────────────────────────────────────────────────

const (
	testTenant  = "t-1"
	creatorID   = "u-creator"
	approverID  = "u-approver"
	adminID     = "u-admin"
	strangerID  = "u-stranger"
	otherTenant = "t-other"
)

type harness struct {
	uc       *approval.WorkflowUseCase
	wfRepo   *fakeWorkflowRepo
	audit    *fakeAuditRepo
	notified *fakeNotificationRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	wfRepo := newFakeWorkflowRepo()
	userRepo := &fakeUserRepo{users: map[string]*entity.User{
		approverID: {ID: approverID, TenantID: testTenant, Status: entity.UserStatusActive, Roles: []entity.Role{entity.RoleApprover}},
		adminID:    {ID: adminID, TenantID: testTenant, Status: entity.UserStatusActive, Roles: []entity.Role{entity.RoleTenantAdmin}},
		strangerID: {ID: strangerID, TenantID: testTenant, Status: entity.UserStatusActive, Roles: []entity.Role{entity.RoleMember}},
	}}
	auditRepo := &fakeAuditRepo{}
	notifRepo := &fakeNotificationRepo{}
	tx := &fakeTxRunner{wfRepo: wfRepo, expenseRepo: fakeExpenseRepo{}, auditRepo: auditRepo}
	log := logger.New(logger.Config{Env: "development", Level: "error"})

	return &harness{
		uc:       approval.NewWorkflowUseCase(wfRepo, userRepo, tx, audit.NewRecorder(auditRepo), notify.NewDispatcher(notifRepo, log)),
		wfRepo:   wfRepo,
		audit:    auditRepo,
		notified: notifRepo,
	}
}

func creator() rbac.Context {
	return rbac.Context{UserID: creatorID, TenantID: testTenant, Roles: []entity.Role{entity.RoleMember}}
}

func approver() rbac.Context {
	return rbac.Context{UserID: approverID, TenantID: testTenant, Roles: []entity.Role{entity.RoleApprover}}
}

func admin() rbac.Context {
	return rbac.Context{UserID: adminID, TenantID: testTenant, Roles: []entity.Role{entity.RoleTenantAdmin}}
}

func mustCreate(t *testing.T, h *harness, in dto.CreateWorkflowRequest) *dto.WorkflowResponse {
	t.Helper()
	out, err := h.uc.Create(context.Background(), creator(), in)
	require.NoError(t, err)
	return out
}

func assertCode(t *testing.T, err error, kind domain.Kind, code string) {
	t.Helper()
	require.Error(t, err)
	de, ok := domain.AsError(err)
	require.True(t, ok, "el error debe ser *domain.Error, got: %v", err)
	assert.Equal(t, kind, de.Kind)
	assert.Equal(t, code, de.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_Borrador_AsignaConsecutivoYAudita(t *testing.T) {
	h := newHarness(t)
	out := mustCreate(t, h, dto.CreateWorkflowRequest{Type: entity.WorkflowTypeLeave, Title: "Vacaciones"})

	assert.Equal(t, entity.WorkflowStatusDraft, out.Status)
	assert.Equal(t, int64(1), out.Number)
	assert.Equal(t, entity.AuditWorkflowCreate, h.audit.lastAction())
	assert.Empty(t, h.notified.created, "un borrador no notifica a nadie")

	// El consecutivo es monótono por tenant.
	out2 := mustCreate(t, h, dto.CreateWorkflowRequest{Type: entity.WorkflowTypeOther, Title: "Otra"})
	assert.Equal(t, int64(2), out2.Number)
}

func TestCreate_SubmitDirecto_NotificaAlAprobador(t *testing.T) {
	h := newHarness(t)
	out := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypePurchase, Title: "Licencias", ApproverID: approverID, Submit: true,
	})

	assert.Equal(t, entity.WorkflowStatusSubmitted, out.Status)
	require.Len(t, h.notified.created, 1)
	assert.Equal(t, approverID, h.notified.created[0].UserID)
}

func TestCreate_SubmitSinAprobador_ERRWF003(t *testing.T) {
	h := newHarness(t)
	_, err := h.uc.Create(context.Background(), creator(), dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", Submit: true,
	})
	assertCode(t, err, domain.KindValidation, "ERR-WF-003")
}

func TestCreate_SubmitSinTitulo_ERRWF002(t *testing.T) {
	h := newHarness(t)
	_, err := h.uc.Create(context.Background(), creator(), dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, ApproverID: approverID, Submit: true,
	})
	assertCode(t, err, domain.KindValidation, "ERR-WF-002")
}

func TestCreate_TipoDesconocido_ERRVAL001(t *testing.T) {
	h := newHarness(t)
	_, err := h.uc.Create(context.Background(), creator(), dto.CreateWorkflowRequest{Type: "vacation"})
	assertCode(t, err, domain.KindValidation, "ERR-VAL-001")
}

func TestCreate_AprobadorSinRolAprobador_ERRVAL005(t *testing.T) {
	h := newHarness(t)
	_, err := h.uc.Create(context.Background(), creator(), dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "X", ApproverID: strangerID,
	})
	assertCode(t, err, domain.KindValidation, "ERR-VAL-005")
}

func TestCreate_RangoDeFechasInvertido_ERRVAL003(t *testing.T) {
	h := newHarness(t)
	start, end := "2026-09-10", "2026-09-01"
	_, err := h.uc.Create(context.Background(), creator(), dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "X", StartDate: &start, EndDate: &end,
	})
	assertCode(t, err, domain.KindValidation, "ERR-VAL-003")
}

// ──────────────────────────────────────────────────────────────────────────────
// Submit / Approve / Reject / Withdraw
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_DesdeDraft_OK(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID,
	})

	out, err := h.uc.Submit(context.Background(), creator(), wf.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WorkflowStatusSubmitted, out.Status)
	assert.Equal(t, entity.AuditWorkflowSubmit, h.audit.lastAction())
	require.Len(t, h.notified.created, 1)
	assert.Equal(t, approverID, h.notified.created[0].UserID)
}

func TestSubmit_NoCreador_ERRAUTH003(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID,
	})

	otro := rbac.Context{UserID: strangerID, TenantID: testTenant, Roles: []entity.Role{entity.RoleMember}}
	_, err := h.uc.Submit(context.Background(), otro, wf.ID)
	assertCode(t, err, domain.KindAuthorization, "ERR-AUTH-003")
}

func TestApprove_PorAprobadorDesignado_FijaApprovedAt(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID, Submit: true,
	})

	out, err := h.uc.Approve(context.Background(), approver(), wf.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WorkflowStatusApproved, out.Status)
	assert.NotEmpty(t, out.ApprovedAt, "approved_at se fija al aprobar")
	assert.Equal(t, entity.AuditWorkflowApprove, h.audit.lastAction())

	// Notificación de vuelta al creador.
	last := h.notified.created[len(h.notified.created)-1]
	assert.Equal(t, creatorID, last.UserID)
}

func TestApprove_PorTenantAdminNoDesignado_OK(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID, Submit: true,
	})

	out, err := h.uc.Approve(context.Background(), admin(), wf.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WorkflowStatusApproved, out.Status)
}

func TestApprove_PorMiembroCualquiera_ERRAUTH003(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID, Submit: true,
	})

	otro := rbac.Context{UserID: strangerID, TenantID: testTenant, Roles: []entity.Role{entity.RoleMember}}
	_, err := h.uc.Approve(context.Background(), otro, wf.ID)
	assertCode(t, err, domain.KindAuthorization, "ERR-AUTH-003")
}

func TestApprove_EnDraft_ERRWF001(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID,
	})

	_, err := h.uc.Approve(context.Background(), approver(), wf.ID)
	assertCode(t, err, domain.KindStateTransition, "ERR-WF-001")
}

func TestApprove_CarreraPerdida_ERRWF001(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID, Submit: true,
	})

	// Otro aprobador rechaza justo antes de nuestro compare-and-set.
	h.wfRepo.beforeCAS = func() {
		h.wfRepo.beforeCAS = nil // solo el primer CAS pierde
		stored := h.wfRepo.items[wf.ID]
		stored.Status = entity.WorkflowStatusRejected
		stored.RejectionReason = "presupuesto agotado"
	}

	_, err := h.uc.Approve(context.Background(), approver(), wf.ID)
	assertCode(t, err, domain.KindStateTransition, "ERR-WF-001")

	de, _ := domain.AsError(err)
	assert.Contains(t, de.Message, entity.WorkflowStatusRejected,
		"el error refleja el estado fresco que ganó la carrera, nunca éxito doble")
}

func TestReject_SinMotivo_ERRWF004(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID, Submit: true,
	})

	_, err := h.uc.Reject(context.Background(), approver(), wf.ID, "")
	assertCode(t, err, domain.KindValidation, "ERR-WF-004")
}

func TestReject_ConMotivo_PersisteElMotivo(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID, Submit: true,
	})

	out, err := h.uc.Reject(context.Background(), approver(), wf.ID, "faltan comprobantes")
	require.NoError(t, err)
	assert.Equal(t, entity.WorkflowStatusRejected, out.Status)
	assert.Equal(t, "faltan comprobantes", out.RejectionReason)
	assert.Empty(t, out.ApprovedAt)
}

func TestResubmit_TrasRechazo_LimpiaElMotivo(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID, Submit: true,
	})
	_, err := h.uc.Reject(context.Background(), approver(), wf.ID, "faltan comprobantes")
	require.NoError(t, err)

	out, err := h.uc.Submit(context.Background(), creator(), wf.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WorkflowStatusSubmitted, out.Status)
	assert.Empty(t, out.RejectionReason, "rejection_reason solo vive en rejected")
}

func TestWithdraw_DesdeSubmitted_OK(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID, Submit: true,
	})

	out, err := h.uc.Withdraw(context.Background(), creator(), wf.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WorkflowStatusWithdrawn, out.Status)
	assert.Equal(t, entity.AuditWorkflowWithdraw, h.audit.lastAction())
}

func TestWithdraw_DesdeApproved_ERRWF001(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID, Submit: true,
	})
	_, err := h.uc.Approve(context.Background(), approver(), wf.ID)
	require.NoError(t, err)

	_, err = h.uc.Withdraw(context.Background(), creator(), wf.ID)
	assertCode(t, err, domain.KindStateTransition, "ERR-WF-001")
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / Get — propiedad y aislamiento por tenant
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_EnSubmitted_ERRWF005(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{
		Type: entity.WorkflowTypeLeave, Title: "Vacaciones", ApproverID: approverID, Submit: true,
	})

	_, err := h.uc.Update(context.Background(), creator(), wf.ID, dto.UpdateWorkflowRequest{Title: "Otro"})
	assertCode(t, err, domain.KindValidation, "ERR-WF-005")
}

func TestGet_OtroTenant_NotFound(t *testing.T) {
	h := newHarness(t)
	wf := mustCreate(t, h, dto.CreateWorkflowRequest{Type: entity.WorkflowTypeLeave, Title: "Vacaciones"})

	foraneo := rbac.Context{UserID: "u-x", TenantID: otherTenant, Roles: []entity.Role{entity.RoleMember}}
	_, err := h.uc.Get(context.Background(), foraneo, wf.ID)
	assertCode(t, err, domain.KindNotFound, "ERR-WF-404")
}

func TestGet_Inexistente_ERRWF404(t *testing.T) {
	h := newHarness(t)
	_, err := h.uc.Get(context.Background(), creator(), "no-existe")
	assertCode(t, err, domain.KindNotFound, "ERR-WF-404")
}
