package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeInvoiceTotals_RedondeoPorLinea(t *testing.T) {
	// 2 × 1000 = 2000; 1 × 333 = 333 → subtotal 2333
	// tax = floor(2333 × 10 / 100) = 233 → total 2566
	lines := []entity.InvoiceLine{
		{Quantity: dec("2"), UnitPrice: dec("1000"), Amount: dec("2000")},
		{Quantity: dec("1"), UnitPrice: dec("333"), Amount: dec("333")},
	}
	subtotal, tax, total := entity.ComputeInvoiceTotals(lines, dec("10"))

	assert.True(t, dec("2333").Equal(subtotal), "subtotal: %s", subtotal)
	assert.True(t, dec("233").Equal(tax), "tax: %s", tax)
	assert.True(t, dec("2566").Equal(total), "total: %s", total)
}

func TestComputeInvoiceTotals_CantidadFraccionaria(t *testing.T) {
	// 1.5 × 999 = 1498.5 → redondeo por línea = 1499 (no sobre el gran total)
	lines := []entity.InvoiceLine{
		{Quantity: dec("1.5"), UnitPrice: dec("999")},
		{Quantity: dec("1.5"), UnitPrice: dec("999")},
	}
	subtotal, tax, total := entity.ComputeInvoiceTotals(lines, dec("19"))

	assert.True(t, dec("2998").Equal(subtotal),
		"cada línea redondea a 1499 antes de sumar; got %s", subtotal)
	// floor(2998 × 19 / 100) = floor(569.62) = 569
	assert.True(t, dec("569").Equal(tax), "tax: %s", tax)
	assert.True(t, dec("3567").Equal(total), "total: %s", total)
}

func TestComputeInvoiceTotals_TasaCero(t *testing.T) {
	lines := []entity.InvoiceLine{{Quantity: dec("3"), UnitPrice: dec("500")}}
	subtotal, tax, total := entity.ComputeInvoiceTotals(lines, decimal.Zero)

	assert.True(t, dec("1500").Equal(subtotal))
	assert.True(t, tax.IsZero())
	assert.True(t, dec("1500").Equal(total))
}

func TestComputeInvoiceTotals_Determinista(t *testing.T) {
	lines := []entity.InvoiceLine{
		{Quantity: dec("7"), UnitPrice: dec("142.86")},
		{Quantity: dec("0.5"), UnitPrice: dec("1001")},
	}
	s1, t1, g1 := entity.ComputeInvoiceTotals(lines, dec("21"))
	s2, t2, g2 := entity.ComputeInvoiceTotals(lines, dec("21"))

	assert.True(t, s1.Equal(s2) && t1.Equal(t2) && g1.Equal(g2),
		"mismos insumos producen los mismos totales")
}

func TestLineAmount(t *testing.T) {
	assert.True(t, dec("1000").Equal(entity.LineAmount(dec("2"), dec("500"))))
	assert.True(t, dec("1499").Equal(entity.LineAmount(dec("1.5"), dec("999"))),
		"1498.5 redondea a 1499")
	assert.True(t, entity.LineAmount(dec("3"), decimal.Zero).IsZero())
}
