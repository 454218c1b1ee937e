package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
)

// ProjectHandler maneja proyectos y su membresía (protegido).
type ProjectHandler struct {
	uc *usecase.ProjectUseCase
}

// NewProjectHandler construye el handler.
func NewProjectHandler(uc *usecase.ProjectUseCase) *ProjectHandler {
	return &ProjectHandler{uc: uc}
}

// Create godoc
// @Summary      Crear proyecto
// @Tags         projects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProjectRequest  true  "Datos del proyecto"
// @Success      201   {object}  dto.ProjectResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/projects [post]
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), Actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update actualiza datos del proyecto (PM o tenant_admin).
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.UpdateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.Context(), Actor(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus cambia el estado del proyecto.
// POST /api/projects/:id/status
func (h *ProjectHandler) ChangeStatus(c *fiber.Ctx) error {
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

// AddMember añade un miembro al proyecto.
// POST /api/projects/:id/members
func (h *ProjectHandler) AddMember(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.MemberRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddMember(c.Context(), Actor(c), id, in.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RemoveMember quita un miembro del proyecto (el PM no se puede quitar).
// DELETE /api/projects/:id/members/:userID
func (h *ProjectHandler) RemoveMember(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Params("userID")
	if id == "" || userID == "" {
		return missingID(c)
	}
	out, err := h.uc.RemoveMember(c.Context(), Actor(c), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID obtiene un proyecto del tenant.
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *fiber.Ctx) error {
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

// List lista los proyectos del tenant.
// GET /api/projects
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.Context(), Actor(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
