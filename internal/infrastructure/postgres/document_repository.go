package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación del puerto DocumentRepository sobre PostgreSQL.
// Solo metadatos: el contenido vive en el FileStorage.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador de metadatos de documentos.
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `id, tenant_id, name, content_type, size_bytes,
	storage_key, resource_type, resource_id, uploaded_by, created_at`

// Create persiste el metadato de un documento.
func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.TenantID, d.Name, d.ContentType, d.SizeBytes,
		d.StorageKey, d.ResourceType, d.ResourceID, d.UploadedBy, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID obtiene un documento del tenant; (nil, nil) si no existe o es de otro.
func (r *DocumentRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND tenant_id = $2`
	var d entity.Document
	err := r.q.QueryRow(ctx, query, id, tenantID).Scan(
		&d.ID, &d.TenantID, &d.Name, &d.ContentType, &d.SizeBytes,
		&d.StorageKey, &d.ResourceType, &d.ResourceID, &d.UploadedBy, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

// ListByResource lista los documentos adjuntos a un recurso.
func (r *DocumentRepo) ListByResource(ctx context.Context, tenantID, resourceType, resourceID string) ([]*entity.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE tenant_id = $1 AND resource_type = $2 AND resource_id = $3
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, tenantID, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var list []*entity.Document
	for rows.Next() {
		var d entity.Document
		if err := rows.Scan(&d.ID, &d.TenantID, &d.Name, &d.ContentType, &d.SizeBytes,
			&d.StorageKey, &d.ResourceType, &d.ResourceID, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// Delete elimina el metadato.
func (r *DocumentRepo) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
