package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
)

// TimesheetHandler maneja los partes de horas (protegido).
type TimesheetHandler struct {
	uc *usecase.TimesheetUseCase
}

// NewTimesheetHandler construye el handler.
func NewTimesheetHandler(uc *usecase.TimesheetUseCase) *TimesheetHandler {
	return &TimesheetHandler{uc: uc}
}

// Create registra un parte de horas.
// POST /api/timesheets
func (h *TimesheetHandler) Create(c *fiber.Ctx) error {
	var in dto.TimesheetEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), Actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update modifica un parte de horas propio.
// PUT /api/timesheets/:id
func (h *TimesheetHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.TimesheetEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.Context(), Actor(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete elimina un parte de horas propio.
// DELETE /api/timesheets/:id
func (h *TimesheetHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if err := h.uc.Delete(c.Context(), Actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BulkUpsert registra o actualiza un lote completo de partes; todo o nada.
// POST /api/timesheets/bulk
func (h *TimesheetHandler) BulkUpsert(c *fiber.Ctx) error {
	var in dto.BulkUpsertTimesheetRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.BulkUpsert(c.Context(), Actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List lista partes de horas; sin rol de gestión solo los propios.
// GET /api/timesheets
func (h *TimesheetHandler) List(c *fiber.Ctx) error {
	var in dto.ListTimesheetsRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.Context(), Actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
