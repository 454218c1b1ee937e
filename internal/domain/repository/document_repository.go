package repository

import (
	"context"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// DocumentRepository puerto de persistencia para metadatos de documentos.
type DocumentRepository interface {
	Create(ctx context.Context, d *entity.Document) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Document, error)
	ListByResource(ctx context.Context, tenantID, resourceType, resourceID string) ([]*entity.Document, error)
	Delete(ctx context.Context, tenantID, id string) error
}
