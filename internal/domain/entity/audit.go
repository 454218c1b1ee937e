package entity

import "time"

// AuditAction es el vocabulario cerrado de acciones auditables, en formato
// recurso.verbo. Consumidores de reporting filtran por estos valores
// exactos: cualquier acción nueva se agrega aquí, nunca como string suelto.
type AuditAction string

const (
	AuditWorkflowCreate   AuditAction = "workflow.create"
	AuditWorkflowSubmit   AuditAction = "workflow.submit"
	AuditWorkflowApprove  AuditAction = "workflow.approve"
	AuditWorkflowReject   AuditAction = "workflow.reject"
	AuditWorkflowWithdraw AuditAction = "workflow.withdraw"
	AuditWorkflowUpdate   AuditAction = "workflow.update"

	AuditProjectCreate       AuditAction = "project.create"
	AuditProjectUpdate       AuditAction = "project.update"
	AuditProjectStatusChange AuditAction = "project.status_change"
	AuditProjectAddMember    AuditAction = "project.add_member"
	AuditProjectRemoveMember AuditAction = "project.remove_member"

	AuditTaskCreate       AuditAction = "task.create"
	AuditTaskUpdate       AuditAction = "task.update"
	AuditTaskDelete       AuditAction = "task.delete"
	AuditTaskStatusChange AuditAction = "task.status_change"

	AuditUserInvite        AuditAction = "user.invite"
	AuditUserRoleChange    AuditAction = "user.role_change"
	AuditUserActivate      AuditAction = "user.activate"
	AuditUserDeactivate    AuditAction = "user.deactivate"
	AuditUserReactivate    AuditAction = "user.reactivate"
	AuditUserPasswordReset AuditAction = "user.password_reset"

	AuditTenantUpdate         AuditAction = "tenant.update"
	AuditTenantSettingsChange AuditAction = "tenant.settings_change"
	AuditTenantSoftDelete     AuditAction = "tenant.soft_delete"

	AuditTimesheetCreate AuditAction = "timesheet.create"
	AuditTimesheetUpdate AuditAction = "timesheet.update"
	AuditTimesheetDelete AuditAction = "timesheet.delete"

	AuditExpenseCreate AuditAction = "expense.create"
	AuditExpenseSubmit AuditAction = "expense.submit"

	AuditInvoiceCreate       AuditAction = "invoice.create"
	AuditInvoiceUpdate       AuditAction = "invoice.update"
	AuditInvoiceDelete       AuditAction = "invoice.delete"
	AuditInvoiceStatusChange AuditAction = "invoice.status_change"

	AuditDocumentUpload   AuditAction = "document.upload"
	AuditDocumentDelete   AuditAction = "document.delete"
	AuditDocumentDownload AuditAction = "document.download"
)

// AuditEntry registro inmutable de una acción mutante. Nunca se actualiza
// ni se borra desde la aplicación.
type AuditEntry struct {
	ID           string
	TenantID     string
	ActorID      string
	Action       AuditAction
	ResourceType string
	ResourceID   string
	Before       map[string]any // snapshot previo (updates/deletes)
	After        map[string]any // snapshot posterior (creates/updates)
	Metadata     map[string]any
	CreatedAt    time.Time
}
