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

// Códigos de negocio de proyectos.
const (
	codePJNotFound  = "ERR-PJ-404"
	codePJRemovePM  = "ERR-PJ-002" // el PM no puede quitarse como miembro
	codePJDupMember = "ERR-PJ-003" // el usuario ya es miembro
)

// ProjectUseCase gestión de proyectos, su estado y su membresía.
type ProjectUseCase struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	txRunner    ProjectTxRunner
	recorder    *audit.Recorder
}

// NewProjectUseCase construye el caso de uso.
func NewProjectUseCase(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, txRunner ProjectTxRunner, recorder *audit.Recorder) *ProjectUseCase {
	return &ProjectUseCase{projectRepo: projectRepo, userRepo: userRepo, txRunner: txRunner, recorder: recorder}
}

// Create crea un proyecto en planning. Solo pm o tenant_admin. El PM queda
// siempre dentro de la membresía.
func (uc *ProjectUseCase) Create(ctx context.Context, actor rbac.Context, in dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if err := actor.Require(entity.RolePM, entity.RoleTenantAdmin); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, domain.Invalid("ERR-VAL-001", "el nombre del proyecto es obligatorio")
	}
	if in.PMID == "" {
		return nil, domain.Invalid("ERR-VAL-001", "el proyecto necesita un PM")
	}
	pm, err := uc.userRepo.GetByID(ctx, actor.TenantID, in.PMID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if pm == nil || pm.Status != entity.UserStatusActive || !pm.HasRole(entity.RolePM) {
		return nil, domain.Invalid("ERR-VAL-005", "el PM designado no existe, no está activo o no tiene rol pm")
	}
	start, end, err := parseOptionalRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	members, err := uc.checkMembers(ctx, actor.TenantID, in.PMID, in.MemberIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &entity.Project{
		ID:          uuid.New().String(),
		TenantID:    actor.TenantID,
		Name:        in.Name,
		Description: in.Description,
		Status:      entity.ProjectStatusPlanning,
		PMID:        in.PMID,
		StartDate:   start,
		EndDate:     end,
		MemberIDs:   members,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// Proyecto, membresía inicial y auditoría entran juntos o no entra nada.
	err = uc.txRunner.RunProject(ctx, func(
		projectRepo repository.ProjectRepository,
		auditRepo repository.AuditLogRepository,
	) error {
		if err := projectRepo.Create(ctx, p); err != nil {
			return err
		}
		return uc.recorder.WithRepo(auditRepo).Record(ctx, audit.Entry{
			TenantID:     actor.TenantID,
			ActorID:      actor.UserID,
			Action:       entity.AuditProjectCreate,
			ResourceType: "project",
			ResourceID:   p.ID,
			After:        audit.Snapshot(dto.ToProjectResponse(p)),
		})
	})
	if err != nil {
		return nil, domain.Wrap(err)
	}
	return dto.ToProjectResponse(p), nil
}

// Update edita nombre, descripción y fechas. Solo el PM del proyecto o un
// tenant_admin.
func (uc *ProjectUseCase) Update(ctx context.Context, actor rbac.Context, id string, in dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	p, err := uc.getManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, domain.Invalid("ERR-VAL-001", "el nombre del proyecto es obligatorio")
	}
	start, end, err := parseOptionalRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToProjectResponse(p))
	p.Name = in.Name
	p.Description = in.Description
	p.StartDate = start
	p.EndDate = end
	p.UpdatedAt = time.Now()

	if err := uc.projectRepo.Update(ctx, p); err != nil {
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditProjectUpdate,
		ResourceType: "project",
		ResourceID:   p.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToProjectResponse(p)),
	}); err != nil {
		return nil, err
	}
	return dto.ToProjectResponse(p), nil
}

// ChangeStatus transiciona el proyecto según la máquina de estados. Solo el
// PM o un tenant_admin. Compare-and-set: bajo concurrencia solo un cambio gana.
func (uc *ProjectUseCase) ChangeStatus(ctx context.Context, actor rbac.Context, id, to string) (*dto.ProjectResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	p, err := uc.getManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !statemachine.ValidStatus(statemachine.EntityProject, to) {
		return nil, domain.Invalid("ERR-VAL-001", "estado de proyecto no reconocido")
	}
	if err := statemachine.Check(statemachine.EntityProject, p.Status, to); err != nil {
		return nil, err
	}

	before := audit.Snapshot(dto.ToProjectResponse(p))
	from := p.Status
	ok, err := uc.projectRepo.UpdateStatusFrom(ctx, actor.TenantID, p.ID, from, to)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if !ok {
		fresh, err := uc.projectRepo.GetByID(ctx, actor.TenantID, p.ID)
		if err != nil {
			return nil, domain.Wrap(err)
		}
		if fresh == nil {
			return nil, domain.NotFound(codePJNotFound, "el proyecto")
		}
		return nil, domain.Transition(statemachine.CodeProjectTransition, "project", fresh.Status, to)
	}
	p.Status = to
	p.UpdatedAt = time.Now()

	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditProjectStatusChange,
		ResourceType: "project",
		ResourceID:   p.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToProjectResponse(p)),
	}); err != nil {
		return nil, err
	}
	return dto.ToProjectResponse(p), nil
}

// AddMember agrega un usuario activo del tenant a la membresía.
func (uc *ProjectUseCase) AddMember(ctx context.Context, actor rbac.Context, projectID, userID string) (*dto.ProjectResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	p, err := uc.getManaged(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	u, err := uc.userRepo.GetByID(ctx, actor.TenantID, userID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if u == nil || u.Status != entity.UserStatusActive {
		return nil, domain.Invalid("ERR-VAL-005", "el usuario no existe o no está activo en el tenant")
	}
	if p.IsMember(userID) {
		return nil, domain.Invalid(codePJDupMember, "el usuario ya es miembro del proyecto")
	}

	before := audit.Snapshot(dto.ToProjectResponse(p))
	if err := uc.projectRepo.AddMember(ctx, actor.TenantID, p.ID, userID); err != nil {
		return nil, domain.Wrap(err)
	}
	p.MemberIDs = append(p.MemberIDs, userID)
	p.UpdatedAt = time.Now()

	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditProjectAddMember,
		ResourceType: "project",
		ResourceID:   p.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToProjectResponse(p)),
		Metadata:     map[string]any{"member_id": userID},
	}); err != nil {
		return nil, err
	}
	return dto.ToProjectResponse(p), nil
}

// RemoveMember quita un miembro. El PM no puede quitarse: primero se
// reasigna el proyecto.
func (uc *ProjectUseCase) RemoveMember(ctx context.Context, actor rbac.Context, projectID, userID string) (*dto.ProjectResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	p, err := uc.getManaged(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if userID == p.PMID {
		return nil, domain.Invalid(codePJRemovePM, "el PM no puede quitarse de la membresía del proyecto")
	}
	if !p.IsMember(userID) {
		return nil, domain.NotFound(codePJNotFound, "el miembro")
	}

	before := audit.Snapshot(dto.ToProjectResponse(p))
	if err := uc.projectRepo.RemoveMember(ctx, actor.TenantID, p.ID, userID); err != nil {
		return nil, domain.Wrap(err)
	}
	kept := p.MemberIDs[:0]
	for _, id := range p.MemberIDs {
		if id != userID {
			kept = append(kept, id)
		}
	}
	p.MemberIDs = kept
	p.UpdatedAt = time.Now()

	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditProjectRemoveMember,
		ResourceType: "project",
		ResourceID:   p.ID,
		Before:       before,
		After:        audit.Snapshot(dto.ToProjectResponse(p)),
		Metadata:     map[string]any{"member_id": userID},
	}); err != nil {
		return nil, err
	}
	return dto.ToProjectResponse(p), nil
}

// Get obtiene un proyecto del tenant.
func (uc *ProjectUseCase) Get(ctx context.Context, actor rbac.Context, id string) (*dto.ProjectResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	p, err := uc.projectRepo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if p == nil {
		return nil, domain.NotFound(codePJNotFound, "el proyecto")
	}
	return dto.ToProjectResponse(p), nil
}

// List lista proyectos del tenant.
func (uc *ProjectUseCase) List(ctx context.Context, actor rbac.Context, page dto.PageRequest) ([]*dto.ProjectResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.projectRepo.List(ctx, actor.TenantID, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	out := make([]*dto.ProjectResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ToProjectResponse(p))
	}
	return out, nil
}

// getManaged carga el proyecto y exige que el actor sea su PM o tenant_admin.
func (uc *ProjectUseCase) getManaged(ctx context.Context, actor rbac.Context, id string) (*entity.Project, error) {
	p, err := uc.projectRepo.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if p == nil {
		return nil, domain.NotFound(codePJNotFound, "el proyecto")
	}
	if p.PMID != actor.UserID && !actor.IsTenantAdmin() {
		return nil, domain.Authz(domain.CodeNotOwner, "solo el PM del proyecto o un tenant_admin puede gestionarlo")
	}
	return p, nil
}

// checkMembers valida miembros iniciales y garantiza que el PM esté incluido.
func (uc *ProjectUseCase) checkMembers(ctx context.Context, tenantID, pmID string, memberIDs []string) ([]string, error) {
	members := make([]string, 0, len(memberIDs)+1)
	seen := map[string]bool{}
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		u, err := uc.userRepo.GetByID(ctx, tenantID, id)
		if err != nil {
			return nil, domain.Wrap(err)
		}
		if u == nil || u.Status != entity.UserStatusActive {
			return nil, domain.Invalid("ERR-VAL-005", "algún miembro inicial no existe o no está activo en el tenant")
		}
		members = append(members, id)
	}
	if !seen[pmID] {
		members = append(members, pmID)
	}
	return members, nil
}

// parseOptionalRange parsea fechas opcionales YYYY-MM-DD validando end >= start.
func parseOptionalRange(startStr, endStr *string) (start, end *time.Time, err error) {
	if startStr != nil && *startStr != "" {
		t, perr := dto.ParseDate(*startStr)
		if perr != nil {
			return nil, nil, domain.Invalid("ERR-VAL-002", "fecha de inicio inválida (formato YYYY-MM-DD)")
		}
		start = &t
	}
	if endStr != nil && *endStr != "" {
		t, perr := dto.ParseDate(*endStr)
		if perr != nil {
			return nil, nil, domain.Invalid("ERR-VAL-002", "fecha de fin inválida (formato YYYY-MM-DD)")
		}
		end = &t
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, domain.Invalid("ERR-VAL-003", "la fecha de fin no puede ser anterior a la de inicio")
	}
	return start, end, nil
}
