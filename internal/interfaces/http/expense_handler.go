package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/backoffice-pro/internal/application/approval"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
)

// ExpenseHandler maneja los gastos reembolsables (protegido).
type ExpenseHandler struct {
	uc *approval.ExpenseUseCase
}

// NewExpenseHandler construye el handler.
func NewExpenseHandler(uc *approval.ExpenseUseCase) *ExpenseHandler {
	return &ExpenseHandler{uc: uc}
}

// Create crea el gasto con su workflow vinculado (atómico).
// POST /api/expenses
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), Actor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID obtiene un gasto (creador, aprobador o tenant_admin).
// GET /api/expenses/:id
func (h *ExpenseHandler) GetByID(c *fiber.Ctx) error {
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

// ListMine lista los gastos del actor.
// GET /api/expenses
func (h *ExpenseHandler) ListMine(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ListMine(c.Context(), Actor(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
