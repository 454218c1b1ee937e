package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
)

// TenantHandler maneja la organización del actor (protegido).
type TenantHandler struct {
	uc *usecase.TenantUseCase
}

// NewTenantHandler construye el handler.
func NewTenantHandler(uc *usecase.TenantUseCase) *TenantHandler {
	return &TenantHandler{uc: uc}
}

// Get obtiene el tenant del actor.
// GET /api/tenant
func (h *TenantHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), Actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update renombra el tenant (tenant_admin).
// PUT /api/tenant
func (h *TenantHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTenantRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.Context(), Actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateSettings reemplaza los ajustes del tenant (tenant_admin).
// PUT /api/tenant/settings
func (h *TenantHandler) UpdateSettings(c *fiber.Ctx) error {
	var in dto.TenantSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateSettings(c.Context(), Actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete marca el tenant como borrado; el body debe confirmar el nombre exacto.
// DELETE /api/tenant
func (h *TenantHandler) Delete(c *fiber.Ctx) error {
	var in dto.DeleteTenantRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.SoftDelete(c.Context(), Actor(c), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
