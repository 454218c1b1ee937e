package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
)

// AuditHandler expone el registro de auditoría (solo lectura, protegido).
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List lista entradas de auditoría (tenant_admin o it_admin).
// GET /api/audit-log
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var in dto.ListAuditRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.Context(), Actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
