package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo implementación del puerto ProjectRepository sobre PostgreSQL.
// La membresía vive en project_members (PK compuesta project_id, user_id).
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador de persistencia para proyectos.
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

const projectColumns = `id, tenant_id, name, description, status, pm_id,
	start_date, end_date, created_at, updated_at`

// Create persiste el proyecto y su membresía inicial (PM incluido).
func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.TenantID, p.Name, p.Description, p.Status, p.PMID,
		p.StartDate, p.EndDate, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	for _, userID := range p.MemberIDs {
		if err := r.AddMember(ctx, p.TenantID, p.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

// GetByID obtiene un proyecto del tenant con su membresía; (nil, nil) si no
// existe o es de otro.
func (r *ProjectRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND tenant_id = $2`
	var p entity.Project
	err := r.q.QueryRow(ctx, query, id, tenantID).Scan(
		&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Status, &p.PMID,
		&p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	members, err := r.listMembers(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.MemberIDs = members
	return &p, nil
}

// List lista proyectos del tenant con paginación.
func (r *ProjectRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Project, error) {
	query := `
		SELECT ` + projectColumns + ` FROM projects
		WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	var list []*entity.Project
	for rows.Next() {
		var p entity.Project
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Status, &p.PMID,
			&p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range list {
		members, err := r.listMembers(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.MemberIDs = members
	}
	return list, nil
}

// Update actualiza los campos editables (no el estado).
func (r *ProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	query := `
		UPDATE projects
		SET name = $3, description = $4, pm_id = $5, start_date = $6, end_date = $7, updated_at = $8
		WHERE id = $1 AND tenant_id = $2`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.TenantID, p.Name, p.Description, p.PMID, p.StartDate, p.EndDate, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// UpdateStatusFrom cambia el estado solo si sigue en `from` (compare-and-set).
func (r *ProjectRepo) UpdateStatusFrom(ctx context.Context, tenantID, id, from, to string) (bool, error) {
	query := `
		UPDATE projects SET status = $4, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND status = $3`
	tag, err := r.q.Exec(ctx, query, id, tenantID, from, to)
	if err != nil {
		return false, fmt.Errorf("update project status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AddMember agrega un usuario a la membresía.
func (r *ProjectRepo) AddMember(ctx context.Context, tenantID, projectID, userID string) error {
	query := `
		INSERT INTO project_members (project_id, tenant_id, user_id, added_at)
		VALUES ($1, $2, $3, now())`
	_, err := r.q.Exec(ctx, query, projectID, tenantID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Invalid("ERR-PJ-003", "el usuario ya es miembro del proyecto")
		}
		return fmt.Errorf("add project member: %w", err)
	}
	return nil
}

// RemoveMember quita un usuario de la membresía.
func (r *ProjectRepo) RemoveMember(ctx context.Context, tenantID, projectID, userID string) error {
	query := `DELETE FROM project_members WHERE project_id = $1 AND tenant_id = $2 AND user_id = $3`
	_, err := r.q.Exec(ctx, query, projectID, tenantID, userID)
	if err != nil {
		return fmt.Errorf("remove project member: %w", err)
	}
	return nil
}

// ListIDsByPM proyectos gestionados por el PM.
func (r *ProjectRepo) ListIDsByPM(ctx context.Context, tenantID, pmID string) ([]string, error) {
	query := `SELECT id FROM projects WHERE tenant_id = $1 AND pm_id = $2`
	rows, err := r.q.Query(ctx, query, tenantID, pmID)
	if err != nil {
		return nil, fmt.Errorf("list projects by pm: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ProjectRepo) listMembers(ctx context.Context, projectID string) ([]string, error) {
	query := `SELECT user_id FROM project_members WHERE project_id = $1 ORDER BY added_at`
	rows, err := r.q.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	defer rows.Close()
	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}
