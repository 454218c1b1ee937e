package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/backoffice-pro/internal/application/approval"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
)

// WorkflowHandler maneja las solicitudes de aprobación (protegido).
type WorkflowHandler struct {
	uc *approval.WorkflowUseCase
}

// NewWorkflowHandler construye el handler.
func NewWorkflowHandler(uc *approval.WorkflowUseCase) *WorkflowHandler {
	return &WorkflowHandler{uc: uc}
}

// Create godoc
// @Summary      Crear solicitud de aprobación
// @Tags         workflows
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWorkflowRequest  true  "Datos de la solicitud"
// @Success      201   {object}  dto.WorkflowResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/workflows [post]
func (h *WorkflowHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWorkflowRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), Actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update actualiza una solicitud en draft o rejected (solo el creador).
// PUT /api/workflows/:id
func (h *WorkflowHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.UpdateWorkflowRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.Context(), Actor(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Submit envía la solicitud a aprobación.
// POST /api/workflows/:id/submit
func (h *WorkflowHandler) Submit(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.uc.Submit(c.Context(), Actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Approve aprueba la solicitud (aprobador asignado o tenant_admin).
// POST /api/workflows/:id/approve
func (h *WorkflowHandler) Approve(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.uc.Approve(c.Context(), Actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reject rechaza la solicitud con motivo obligatorio.
// POST /api/workflows/:id/reject
func (h *WorkflowHandler) Reject(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.RejectWorkflowRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Reject(c.Context(), Actor(c), id, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Withdraw retira una solicitud enviada (solo el creador).
// POST /api/workflows/:id/withdraw
func (h *WorkflowHandler) Withdraw(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.uc.Withdraw(c.Context(), Actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener solicitud por ID
// @Tags         workflows
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.WorkflowResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/workflows/{id} [get]
func (h *WorkflowHandler) GetByID(c *fiber.Ctx) error {
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

// List godoc
// @Summary      Listar solicitudes del tenant
// @Tags         workflows
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado"
// @Param        type    query  string  false  "Filtrar por tipo"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {array}  dto.WorkflowResponse
// @Router       /api/workflows [get]
func (h *WorkflowHandler) List(c *fiber.Ctx) error {
	var in dto.ListWorkflowsRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.Context(), Actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
