package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un Workflow (solicitud aprobable).
const (
	WorkflowStatusDraft     = "draft"
	WorkflowStatusSubmitted = "submitted"
	WorkflowStatusApproved  = "approved"
	WorkflowStatusRejected  = "rejected"
	WorkflowStatusWithdrawn = "withdrawn"
)

// Tipos de workflow reconocidos.
const (
	WorkflowTypeExpense  = "expense"
	WorkflowTypeLeave    = "leave"
	WorkflowTypePurchase = "purchase"
	WorkflowTypeOther    = "other"
)

// ValidWorkflowType reporta si s es un tipo reconocido.
func ValidWorkflowType(s string) bool {
	switch s {
	case WorkflowTypeExpense, WorkflowTypeLeave, WorkflowTypePurchase, WorkflowTypeOther:
		return true
	}
	return false
}

// Workflow solicitud genérica de aprobación.
//
// Invariantes:
//   - Number es secuencial, único y monótono por tenant (generado en DB).
//   - ApprovedAt está seteado si y solo si Status == approved.
//   - RejectionReason está seteado si y solo si Status == rejected.
type Workflow struct {
	ID              string
	TenantID        string
	Number          int64 // consecutivo por tenant
	Type            string
	Title           string
	Description     string
	Amount          *decimal.Decimal // opcional (gastos, compras)
	StartDate       *time.Time       // opcional (permisos)
	EndDate         *time.Time
	Status          string
	ApproverID      string // usuario aprobador designado
	RejectionReason string
	CreatedBy       string
	ApprovedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
