package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL
// (usable con pool o tx). Los roles se guardan como text[].
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, name, roles, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.TenantID, user.Email, user.PasswordHash, user.Name,
		user.RoleStrings(), user.Status, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Invalid("ERR-VAL-006", "el email ya está registrado")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario del tenant; (nil, nil) si no existe o es de otro.
func (r *UserRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.User, error) {
	query := `
		SELECT id, tenant_id, email, password_hash, name, roles, status, created_at, updated_at
		FROM users WHERE id = $1 AND tenant_id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, id, tenantID), "get user by id")
}

// GetByEmail busca globalmente (login, antes de resolver tenant).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT id, tenant_id, email, password_hash, name, roles, status, created_at, updated_at
		FROM users WHERE email = $1 LIMIT 1`
	return r.scanOne(r.q.QueryRow(ctx, query, email), "get user by email")
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET email = $3, password_hash = $4, name = $5, roles = $6, status = $7, updated_at = $8
		WHERE id = $1 AND tenant_id = $2`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.TenantID, user.Email, user.PasswordHash, user.Name,
		user.RoleStrings(), user.Status, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// ListByTenant lista usuarios del tenant con paginación.
func (r *UserRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.User, error) {
	query := `
		SELECT id, tenant_id, email, password_hash, name, roles, status, created_at, updated_at
		FROM users WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// CountTenantAdmins cuenta tenant_admin activos del tenant excluyendo
// excludeID (vacío = no excluir).
func (r *UserRepo) CountTenantAdmins(ctx context.Context, tenantID, excludeID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM users
		WHERE tenant_id = $1 AND status = 'active' AND 'tenant_admin' = ANY(roles)
		  AND ($2 = '' OR id <> $2)`
	var n int
	if err := r.q.QueryRow(ctx, query, tenantID, excludeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tenant admins: %w", err)
	}
	return n, nil
}

func (r *UserRepo) scanOne(row pgx.Row, op string) (*entity.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	var roles []string
	if err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Name, &roles, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Roles = rbac.RolesFromStrings(roles)
	return &u, nil
}
