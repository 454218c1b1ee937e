package dto

import (
	"time"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// UpdateTenantRequest body para PUT /api/tenant.
type UpdateTenantRequest struct {
	Name string `json:"name"`
}

// TenantSettingsRequest body para PUT /api/tenant/settings.
type TenantSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

// DeleteTenantRequest soft-delete; Confirm debe ser el nombre exacto.
type DeleteTenantRequest struct {
	Confirm string `json:"confirm"`
}

// TenantResponse tenant en respuestas.
type TenantResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Settings  map[string]string `json:"settings,omitempty"`
	DeletedAt string            `json:"deleted_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ToTenantResponse convierte la entidad al DTO de respuesta.
func ToTenantResponse(t *entity.Tenant) *TenantResponse {
	if t == nil {
		return nil
	}
	resp := &TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Settings:  t.Settings,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.DeletedAt != nil {
		resp.DeletedAt = t.DeletedAt.Format(time.RFC3339)
	}
	return resp
}
