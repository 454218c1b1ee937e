package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Límites de horas por entrada y por día.
var (
	TimesheetMinHours  = decimal.RequireFromString("0.25")
	TimesheetMaxHours  = decimal.NewFromInt(24)
	TimesheetHoursStep = decimal.RequireFromString("0.25")
	TimesheetDailyCap  = decimal.NewFromInt(24)
)

// Timesheet parte de horas: (usuario, fecha, proyecto, tarea opcional) →
// horas. Unicidad compuesta sobre (user, date, project, task); la suma
// diaria por usuario nunca supera 24 tras una operación exitosa.
type Timesheet struct {
	ID        string
	TenantID  string
	UserID    string
	ProjectID string
	TaskID    string // opcional (vacío = sin tarea)
	Date      time.Time
	Hours     decimal.Decimal // [0.25, 24] en pasos de 0.25
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidHours reporta si h está en [0.25, 24] y es múltiplo de 0.25.
func ValidHours(h decimal.Decimal) bool {
	if h.LessThan(TimesheetMinHours) || h.GreaterThan(TimesheetMaxHours) {
		return false
	}
	// múltiplo de 0.25 ⇔ h*4 es entero
	return h.Mul(decimal.NewFromInt(4)).IsInteger()
}
