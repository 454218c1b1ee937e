package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// AuditFilter filtros para el listado de auditoría.
type AuditFilter struct {
	Action       string
	ResourceType string
	ActorID      string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// AuditLogRepository puerto append-only: las entradas jamás se actualizan
// ni se borran desde la aplicación.
type AuditLogRepository interface {
	Insert(ctx context.Context, e *entity.AuditEntry) error
	List(ctx context.Context, tenantID string, f AuditFilter) ([]*entity.AuditEntry, error)
}
