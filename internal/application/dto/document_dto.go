package dto

import (
	"time"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// DocumentResponse metadato de documento en respuestas.
type DocumentResponse struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	Name         string    `json:"name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToDocumentResponse convierte la entidad al DTO de respuesta.
func ToDocumentResponse(d *entity.Document) *DocumentResponse {
	if d == nil {
		return nil
	}
	return &DocumentResponse{
		ID:           d.ID,
		TenantID:     d.TenantID,
		Name:         d.Name,
		ContentType:  d.ContentType,
		SizeBytes:    d.SizeBytes,
		ResourceType: d.ResourceType,
		ResourceID:   d.ResourceID,
		UploadedBy:   d.UploadedBy,
		CreatedAt:    d.CreatedAt,
	}
}
