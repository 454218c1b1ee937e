package entity

import "time"

// Tipos de notificación in-app.
const (
	NotificationWorkflowSubmitted = "workflow_submitted"
	NotificationWorkflowApproved  = "workflow_approved"
	NotificationWorkflowRejected  = "workflow_rejected"
)

// Notification aviso in-app para un usuario. Estado advisory: entrega
// at-least-once, los duplicados son tolerables.
type Notification struct {
	ID           string
	TenantID     string
	UserID       string // destinatario
	Type         string
	Title        string
	Body         string
	ResourceType string // para deep-linking en la UI
	ResourceID   string
	Read         bool
	CreatedAt    time.Time
}
