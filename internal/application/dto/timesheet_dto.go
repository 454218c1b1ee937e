package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// TimesheetEntryRequest alta/edición de un parte de horas.
type TimesheetEntryRequest struct {
	ProjectID string          `json:"project_id"`
	TaskID    string          `json:"task_id,omitempty"`
	Date      string          `json:"date"` // YYYY-MM-DD
	Hours     decimal.Decimal `json:"hours"`
	Note      string          `json:"note,omitempty"`
}

// BulkUpsertTimesheetRequest body para POST /api/timesheets/bulk.
type BulkUpsertTimesheetRequest struct {
	Entries []TimesheetEntryRequest `json:"entries"`
}

// ListTimesheetsRequest filtros de GET /api/timesheets.
type ListTimesheetsRequest struct {
	PageRequest
	UserID    string `query:"user_id"`
	ProjectID string `query:"project_id"`
	From      string `query:"from"` // YYYY-MM-DD
	To        string `query:"to"`
}

// TimesheetResponse parte de horas en respuestas.
type TimesheetResponse struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenant_id"`
	UserID    string          `json:"user_id"`
	ProjectID string          `json:"project_id"`
	TaskID    string          `json:"task_id,omitempty"`
	Date      string          `json:"date"`
	Hours     decimal.Decimal `json:"hours"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToTimesheetResponse convierte la entidad al DTO de respuesta.
func ToTimesheetResponse(ts *entity.Timesheet) *TimesheetResponse {
	if ts == nil {
		return nil
	}
	return &TimesheetResponse{
		ID:        ts.ID,
		TenantID:  ts.TenantID,
		UserID:    ts.UserID,
		ProjectID: ts.ProjectID,
		TaskID:    ts.TaskID,
		Date:      ts.Date.Format("2006-01-02"),
		Hours:     ts.Hours,
		Note:      ts.Note,
		CreatedAt: ts.CreatedAt,
		UpdatedAt: ts.UpdatedAt,
	}
}
