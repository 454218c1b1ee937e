package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Arnés
// ──────────────────────────────────────────────────────────────────────────────

const (
	pjPMID     = "pj-pm-1"
	pjMemberID = "pj-mem-1"
)

func pmCtx(id string) rbac.Context {
	return rbac.Context{UserID: id, TenantID: tenantA, Roles: []entity.Role{entity.RolePM}}
}

// projTxRunner imita la transacción de creación de proyectos: toma un
// snapshot y lo restaura si el callback falla.
type projTxRunner struct {
	projects  *fakeProjectRepo
	auditRepo *memAuditRepo
}

func (r *projTxRunner) RunProject(_ context.Context, fn func(
	projectRepo repository.ProjectRepository,
	auditRepo repository.AuditLogRepository,
) error) error {
	snap := make(map[string]*entity.Project, len(r.projects.projects))
	for k, v := range r.projects.projects {
		snap[k] = v
	}
	kept := len(r.auditRepo.entries)
	if err := fn(r.projects, r.auditRepo); err != nil {
		r.projects.projects = snap
		r.auditRepo.entries = r.auditRepo.entries[:kept]
		return err
	}
	return nil
}

type projectHarness struct {
	uc       *usecase.ProjectUseCase
	projects *fakeProjectRepo
	audit    *memAuditRepo
}

func newProjectHarness(t *testing.T) *projectHarness {
	t.Helper()
	projects := &fakeProjectRepo{projects: map[string]*entity.Project{}}
	auditRepo := &memAuditRepo{}
	users := newMemUserRepo(
		activeUser(pjPMID, entity.RolePM),
		activeUser(pjMemberID, entity.RoleMember),
	)
	runner := &projTxRunner{projects: projects, auditRepo: auditRepo}
	uc := usecase.NewProjectUseCase(projects, users, runner, audit.NewRecorder(auditRepo))
	return &projectHarness{uc: uc, projects: projects, audit: auditRepo}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create — atomicidad de proyecto + membresía + auditoría
// ──────────────────────────────────────────────────────────────────────────────

func TestProjectCreate_PlanningConPMIncluido(t *testing.T) {
	h := newProjectHarness(t)

	out, err := h.uc.Create(context.Background(), pmCtx(pjPMID), dto.CreateProjectRequest{
		Name: "Proyecto Titán", PMID: pjPMID, MemberIDs: []string{pjMemberID},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ProjectStatusPlanning, out.Status, "todo proyecto nace en planning")
	assert.ElementsMatch(t, []string{pjMemberID, pjPMID}, out.MemberIDs, "el PM queda siempre en la membresía")
	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, entity.AuditProjectCreate, h.audit.entries[0].Action)
	assert.NotNil(t, h.audit.entries[0].After)
}

func TestProjectCreate_FalloEnMembresia_NoDejaNada(t *testing.T) {
	h := newProjectHarness(t)
	h.projects.failCreate = errors.New("conexión perdida insertando membresía")

	_, err := h.uc.Create(context.Background(), pmCtx(pjPMID), dto.CreateProjectRequest{
		Name: "Proyecto Titán", PMID: pjPMID, MemberIDs: []string{pjMemberID},
	})
	wantCode(t, err, domain.KindSystem, "ERR-SYS-001")

	assert.Empty(t, h.projects.projects, "la transacción revierte la cabecera y la membresía parcial")
	assert.Empty(t, h.audit.entries, "una creación fallida no deja entrada de auditoría")
}

func TestProjectCreate_SinRolPM_ERRAUTH002(t *testing.T) {
	h := newProjectHarness(t)

	_, err := h.uc.Create(context.Background(), memberCtx(pjMemberID), dto.CreateProjectRequest{
		Name: "Proyecto Titán", PMID: pjPMID,
	})
	wantCode(t, err, domain.KindAuthorization, "ERR-AUTH-002")
}
