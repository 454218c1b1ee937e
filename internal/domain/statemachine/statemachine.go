// Package statemachine es el registro de transiciones de estado permitidas
// por tipo de entidad. Es la tabla autoritativa: toda transición nueva se
// agrega aquí, nunca como caso especial inline en un servicio.
package statemachine

import (
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
)

// EntityType entidades con máquina de estados registrada.
type EntityType string

const (
	EntityWorkflow EntityType = "workflow"
	EntityProject  EntityType = "project"
	EntityTask     EntityType = "task"
	EntityInvoice  EntityType = "invoice"
)

// Códigos de StateTransitionError por entidad.
const (
	CodeWorkflowTransition = "ERR-WF-001"
	CodeProjectTransition  = "ERR-PJ-001"
	CodeTaskTransition     = "ERR-TASK-001"
	CodeInvoiceTransition  = "ERR-INV-001"
)

// transitions tabla dirigida origen → destinos permitidos. Estados
// terminales aparecen con conjunto vacío. Sin self-loops.
var transitions = map[EntityType]map[string][]string{
	EntityWorkflow: {
		entity.WorkflowStatusDraft:     {entity.WorkflowStatusSubmitted},
		entity.WorkflowStatusSubmitted: {entity.WorkflowStatusApproved, entity.WorkflowStatusRejected, entity.WorkflowStatusWithdrawn},
		entity.WorkflowStatusRejected:  {entity.WorkflowStatusSubmitted, entity.WorkflowStatusWithdrawn},
		entity.WorkflowStatusApproved:  {},
		entity.WorkflowStatusWithdrawn: {},
	},
	EntityProject: {
		entity.ProjectStatusPlanning:  {entity.ProjectStatusActive, entity.ProjectStatusCancelled},
		entity.ProjectStatusActive:    {entity.ProjectStatusCompleted, entity.ProjectStatusCancelled},
		entity.ProjectStatusCompleted: {},
		entity.ProjectStatusCancelled: {},
	},
	EntityTask: {
		entity.TaskStatusTodo:       {entity.TaskStatusInProgress},
		entity.TaskStatusInProgress: {entity.TaskStatusDone, entity.TaskStatusTodo},
		entity.TaskStatusDone:       {entity.TaskStatusInProgress},
	},
	EntityInvoice: {
		entity.InvoiceStatusDraft:     {entity.InvoiceStatusSent, entity.InvoiceStatusCancelled},
		entity.InvoiceStatusSent:      {entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled},
		entity.InvoiceStatusPaid:      {},
		entity.InvoiceStatusCancelled: {},
	},
}

var transitionCodes = map[EntityType]string{
	EntityWorkflow: CodeWorkflowTransition,
	EntityProject:  CodeProjectTransition,
	EntityTask:     CodeTaskTransition,
	EntityInvoice:  CodeInvoiceTransition,
}

// CanTransition reporta si la transición from → to está permitida para la
// entidad. Función pura de la tabla estática: mismo input, mismo resultado.
func CanTransition(e EntityType, from, to string) bool {
	allowed, ok := transitions[e]
	if !ok {
		return false
	}
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Allowed devuelve los estados destino permitidos desde from (copia).
func Allowed(e EntityType, from string) []string {
	src := transitions[e][from]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ValidStatus reporta si status existe en la tabla de la entidad.
func ValidStatus(e EntityType, status string) bool {
	_, ok := transitions[e][status]
	return ok
}

// Check valida la transición y retorna un StateTransitionError tipado
// (identificando entidad, estado actual y solicitado) si no está permitida.
func Check(e EntityType, from, to string) error {
	if CanTransition(e, from, to) {
		return nil
	}
	return domain.Transition(transitionCodes[e], string(e), from, to)
}
