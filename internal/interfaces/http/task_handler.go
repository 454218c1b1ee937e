package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
)

// TaskHandler maneja las tareas de proyecto (protegido).
type TaskHandler struct {
	uc *usecase.TaskUseCase
}

// NewTaskHandler construye el handler.
func NewTaskHandler(uc *usecase.TaskUseCase) *TaskHandler {
	return &TaskHandler{uc: uc}
}

// Create crea una tarea dentro de un proyecto.
// POST /api/projects/:projectID/tasks
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	projectID := c.Params("projectID")
	if projectID == "" {
		return missingID(c)
	}
	var in dto.CreateTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), Actor(c), projectID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update actualiza título, descripción, asignado o fecha límite.
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.UpdateTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.Context(), Actor(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus cambia el estado de la tarea.
// POST /api/tasks/:id/status
func (h *TaskHandler) ChangeStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ChangeStatus(c.Context(), Actor(c), id, in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete elimina una tarea sin partes de horas asociados.
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if err := h.uc.Delete(c.Context(), Actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID obtiene una tarea.
// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.uc.Get(c.Context(), Actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByProject lista las tareas de un proyecto.
// GET /api/projects/:projectID/tasks
func (h *TaskHandler) ListByProject(c *fiber.Ctx) error {
	projectID := c.Params("projectID")
	if projectID == "" {
		return missingID(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ListByProject(c.Context(), Actor(c), projectID, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
