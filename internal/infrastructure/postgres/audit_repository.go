package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditRepo)(nil)

// AuditRepo implementación append-only del puerto AuditLogRepository.
// before/after/metadata se guardan como JSONB; no existen UPDATE ni DELETE
// sobre audit_log en este adaptador.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador del audit log.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Insert registra una entrada nueva.
func (r *AuditRepo) Insert(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, tenant_id, actor_id, action, resource_type, resource_id,
			before, after, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.TenantID, e.ActorID, string(e.Action), e.ResourceType, e.ResourceID,
		e.Before, e.After, e.Metadata, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List lista entradas del tenant con filtros, más recientes primero.
func (r *AuditRepo) List(ctx context.Context, tenantID string, f repository.AuditFilter) ([]*entity.AuditEntry, error) {
	query := `
		SELECT id, tenant_id, actor_id, action, resource_type, resource_id,
			before, after, metadata, created_at
		FROM audit_log
		WHERE tenant_id = $1
		  AND ($2 = '' OR action = $2)
		  AND ($3 = '' OR resource_type = $3)
		  AND ($4 = '' OR actor_id = $4)
		  AND ($5::timestamptz IS NULL OR created_at >= $5)
		  AND ($6::timestamptz IS NULL OR created_at <= $6)
		ORDER BY created_at DESC LIMIT $7 OFFSET $8`
	rows, err := r.q.Query(ctx, query, tenantID, f.Action, f.ResourceType, f.ActorID, f.From, f.To, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		var action string
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ActorID, &action, &e.ResourceType, &e.ResourceID,
			&e.Before, &e.After, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = entity.AuditAction(action)
		list = append(list, &e)
	}
	return list, rows.Err()
}
