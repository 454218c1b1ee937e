// Package notify crea notificaciones in-app como efecto secundario de
// transiciones de workflow. Best-effort: su fallo se registra en el log y
// jamás hace fallar la operación padre.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
	"github.com/tu-usuario/backoffice-pro/pkg/logger"
)

// Dispatcher despacha notificaciones de submit/approve/reject.
type Dispatcher struct {
	repo repository.NotificationRepository
	log  *logger.Logger
}

// NewDispatcher construye el despachador.
func NewDispatcher(repo repository.NotificationRepository, log *logger.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, log: log.Component("notify")}
}

// WorkflowSubmitted avisa al aprobador designado.
func (d *Dispatcher) WorkflowSubmitted(ctx context.Context, wf *entity.Workflow) {
	d.create(ctx, wf.TenantID, wf.ApproverID, entity.NotificationWorkflowSubmitted,
		fmt.Sprintf("Solicitud #%d pendiente de aprobación", wf.Number),
		fmt.Sprintf("%q requiere tu aprobación.", wf.Title),
		wf.ID)
}

// WorkflowApproved avisa al creador.
func (d *Dispatcher) WorkflowApproved(ctx context.Context, wf *entity.Workflow) {
	d.create(ctx, wf.TenantID, wf.CreatedBy, entity.NotificationWorkflowApproved,
		fmt.Sprintf("Solicitud #%d aprobada", wf.Number),
		fmt.Sprintf("%q fue aprobada.", wf.Title),
		wf.ID)
}

// WorkflowRejected avisa al creador incluyendo el motivo.
func (d *Dispatcher) WorkflowRejected(ctx context.Context, wf *entity.Workflow) {
	d.create(ctx, wf.TenantID, wf.CreatedBy, entity.NotificationWorkflowRejected,
		fmt.Sprintf("Solicitud #%d rechazada", wf.Number),
		fmt.Sprintf("%q fue rechazada: %s", wf.Title, wf.RejectionReason),
		wf.ID)
}

func (d *Dispatcher) create(ctx context.Context, tenantID, userID, typ, title, body, workflowID string) {
	if userID == "" {
		return
	}
	n := &entity.Notification{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		UserID:       userID,
		Type:         typ,
		Title:        title,
		Body:         body,
		ResourceType: "workflow",
		ResourceID:   workflowID,
		CreatedAt:    time.Now(),
	}
	if err := d.repo.Create(ctx, n); err != nil {
		d.log.Warn().Err(err).
			Str("tenant_id", tenantID).
			Str("user_id", userID).
			Str("type", typ).
			Msg("no se pudo crear la notificación")
	}
}
