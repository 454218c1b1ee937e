package dto

import (
	"time"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// ListAuditRequest filtros de GET /api/audit-log.
type ListAuditRequest struct {
	PageRequest
	Action       string `query:"action"`
	ResourceType string `query:"resource_type"`
	ActorID      string `query:"actor_id"`
	From         string `query:"from"` // YYYY-MM-DD
	To           string `query:"to"`
}

// AuditEntryResponse entrada de auditoría en respuestas.
type AuditEntryResponse struct {
	ID           string         `json:"id"`
	TenantID     string         `json:"tenant_id"`
	ActorID      string         `json:"actor_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Before       map[string]any `json:"before,omitempty"`
	After        map[string]any `json:"after,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ToAuditEntryResponse convierte la entidad al DTO de respuesta.
func ToAuditEntryResponse(e *entity.AuditEntry) *AuditEntryResponse {
	if e == nil {
		return nil
	}
	return &AuditEntryResponse{
		ID:           e.ID,
		TenantID:     e.TenantID,
		ActorID:      e.ActorID,
		Action:       string(e.Action),
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Before:       e.Before,
		After:        e.After,
		Metadata:     e.Metadata,
		CreatedAt:    e.CreatedAt,
	}
}
