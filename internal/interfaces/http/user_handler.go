package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
)

// UserHandler maneja el ciclo de vida de usuarios del tenant (protegido,
// salvo la activación por invitación).
type UserHandler struct {
	uc *usecase.UserUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// Invite invita un usuario al tenant (tenant_admin).
// POST /api/users/invite
func (h *UserHandler) Invite(c *fiber.Ctx) error {
	var in dto.InviteUserRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Invite(c.Context(), Actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Activate acepta la invitación y fija la contraseña. Público: el enlace
// de invitación lleva tenant y usuario.
// POST /api/tenants/:tenantID/users/:id/activate
func (h *UserHandler) Activate(c *fiber.Ctx) error {
	tenantID := c.Params("tenantID")
	userID := c.Params("id")
	if tenantID == "" || userID == "" {
		return missingID(c)
	}
	var in dto.ActivateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Activate(c.Context(), tenantID, userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ChangeRoles reemplaza los roles de un usuario (tenant_admin, no a sí mismo).
// PUT /api/users/:id/roles
func (h *UserHandler) ChangeRoles(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.ChangeRolesRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ChangeRoles(c.Context(), Actor(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Deactivate desactiva un usuario (nunca al último tenant_admin).
// POST /api/users/:id/deactivate
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.uc.Deactivate(c.Context(), Actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reactivate reactiva un usuario desactivado.
// POST /api/users/:id/reactivate
func (h *UserHandler) Reactivate(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.uc.Reactivate(c.Context(), Actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ResetPassword fija una nueva contraseña para el usuario (tenant_admin).
// POST /api/users/:id/password-reset
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.ResetPasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.uc.ResetPassword(c.Context(), Actor(c), id, in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID obtiene un usuario del tenant.
// GET /api/users/:id
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
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

// List lista los usuarios del tenant.
// GET /api/users
func (h *UserHandler) List(c *fiber.Ctx) error {
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
