package entity

import "time"

// Estados de Task.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task tarea de un proyecto. El asignado, si existe, debe ser miembro del
// proyecto. Solo puede borrarse si no tiene partes de horas vinculados.
type Task struct {
	ID          string
	TenantID    string
	ProjectID   string
	Title       string
	Description string
	Status      string
	AssigneeID  string // opcional; miembro del proyecto
	DueDate     *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
