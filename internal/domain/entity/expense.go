package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de gasto (enum cerrado).
const (
	ExpenseCategoryTransportation = "transportation"
	ExpenseCategoryMeals          = "meals"
	ExpenseCategoryLodging        = "lodging"
	ExpenseCategorySupplies       = "supplies"
	ExpenseCategoryEntertainment  = "entertainment"
	ExpenseCategoryOther          = "other"
)

// ValidExpenseCategory reporta si s es una categoría reconocida.
func ValidExpenseCategory(s string) bool {
	switch s {
	case ExpenseCategoryTransportation, ExpenseCategoryMeals, ExpenseCategoryLodging,
		ExpenseCategorySupplies, ExpenseCategoryEntertainment, ExpenseCategoryOther:
		return true
	}
	return false
}

// Rango permitido del monto de un gasto.
var (
	ExpenseMinAmount = decimal.NewFromInt(1)
	ExpenseMaxAmount = decimal.NewFromInt(10_000_000)
)

// Expense gasto reportado. Siempre tiene exactamente un Workflow generado
// (type=expense) creado atómicamente con él; el estado del gasto es el del
// workflow vinculado.
type Expense struct {
	ID         string
	TenantID   string
	WorkflowID string // workflow vinculado, nunca vacío
	ProjectID  string // opcional
	Category   string
	Amount     decimal.Decimal // [1, 10.000.000]
	Date       time.Time
	Note       string
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
