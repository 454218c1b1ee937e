package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

func TestValidHours(t *testing.T) {
	cases := []struct {
		hours string
		want  bool
	}{
		{"0.25", true},
		{"0.5", true},
		{"8", true},
		{"7.75", true},
		{"24", true},
		{"0", false},
		{"0.1", false},       // no es múltiplo de 0.25
		{"8.33", false},      // no es múltiplo de 0.25
		{"24.25", false},     // supera el máximo
		{"-1", false},        // negativo
		{"0.2499999", false}, // por debajo del mínimo
	}
	for _, tc := range cases {
		t.Run(tc.hours, func(t *testing.T) {
			h := decimal.RequireFromString(tc.hours)
			assert.Equal(t, tc.want, entity.ValidHours(h))
		})
	}
}
