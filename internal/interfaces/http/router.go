package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/backoffice-pro/internal/application/approval"
	"github.com/tu-usuario/backoffice-pro/internal/application/auth"
	"github.com/tu-usuario/backoffice-pro/internal/application/billing"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	WorkflowUC     *approval.WorkflowUseCase
	ExpenseUC      *approval.ExpenseUseCase
	ProjectUC      *usecase.ProjectUseCase
	TaskUC         *usecase.TaskUseCase
	TimesheetUC    *usecase.TimesheetUseCase
	InvoiceUC      *billing.InvoiceUseCase
	PDFUC          *billing.PDFUseCase
	UserUC         *usecase.UserUseCase
	TenantUC       *usecase.TenantUseCase
	AuditUC        *usecase.AuditUseCase
	NotificationUC *usecase.NotificationUseCase
	DocumentUC     *usecase.DocumentUseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	userHandler := NewUserHandler(deps.UserUC)

	// Activación por invitación (público: el enlace lleva tenant y usuario)
	api.Post("/tenants/:tenantID/users/:id/activate", userHandler.Activate)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Workflows de aprobación
	workflows := protected.Group("/workflows")
	workflowHandler := NewWorkflowHandler(deps.WorkflowUC)
	workflows.Post("/", workflowHandler.Create)
	workflows.Get("/", workflowHandler.List)
	workflows.Get("/:id", workflowHandler.GetByID)
	workflows.Put("/:id", workflowHandler.Update)
	workflows.Post("/:id/submit", workflowHandler.Submit)
	workflows.Post("/:id/approve", workflowHandler.Approve)
	workflows.Post("/:id/reject", workflowHandler.Reject)
	workflows.Post("/:id/withdraw", workflowHandler.Withdraw)

	// Gastos reembolsables
	expenses := protected.Group("/expenses")
	expenseHandler := NewExpenseHandler(deps.ExpenseUC)
	expenses.Post("/", expenseHandler.Create)
	expenses.Get("/", expenseHandler.ListMine)
	expenses.Get("/:id", expenseHandler.GetByID)

	// Proyectos y tareas
	projects := protected.Group("/projects")
	projectHandler := NewProjectHandler(deps.ProjectUC)
	taskHandler := NewTaskHandler(deps.TaskUC)
	projects.Post("/", projectHandler.Create)
	projects.Get("/", projectHandler.List)
	projects.Get("/:id", projectHandler.GetByID)
	projects.Put("/:id", projectHandler.Update)
	projects.Post("/:id/status", projectHandler.ChangeStatus)
	projects.Post("/:id/members", projectHandler.AddMember)
	projects.Delete("/:id/members/:userID", projectHandler.RemoveMember)
	projects.Post("/:projectID/tasks", taskHandler.Create)
	projects.Get("/:projectID/tasks", taskHandler.ListByProject)

	tasks := protected.Group("/tasks")
	tasks.Get("/:id", taskHandler.GetByID)
	tasks.Put("/:id", taskHandler.Update)
	tasks.Post("/:id/status", taskHandler.ChangeStatus)
	tasks.Delete("/:id", taskHandler.Delete)

	// Partes de horas
	timesheets := protected.Group("/timesheets")
	timesheetHandler := NewTimesheetHandler(deps.TimesheetUC)
	timesheets.Post("/", timesheetHandler.Create)
	timesheets.Get("/", timesheetHandler.List)
	timesheets.Post("/bulk", timesheetHandler.BulkUpsert)
	timesheets.Put("/:id", timesheetHandler.Update)
	timesheets.Delete("/:id", timesheetHandler.Delete)

	// Facturación
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PDFUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Post("/:id/status", invoiceHandler.ChangeStatus)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)

	// Usuarios del tenant
	users := protected.Group("/users")
	users.Post("/invite", userHandler.Invite)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id/roles", userHandler.ChangeRoles)
	users.Post("/:id/deactivate", userHandler.Deactivate)
	users.Post("/:id/reactivate", userHandler.Reactivate)
	users.Post("/:id/password-reset", userHandler.ResetPassword)

	// Organización
	tenant := protected.Group("/tenant")
	tenantHandler := NewTenantHandler(deps.TenantUC)
	tenant.Get("/", tenantHandler.Get)
	tenant.Put("/", tenantHandler.Update)
	tenant.Put("/settings", tenantHandler.UpdateSettings)
	tenant.Delete("/", tenantHandler.Delete)

	// Auditoría (solo lectura)
	auditHandler := NewAuditHandler(deps.AuditUC)
	protected.Get("/audit-log", auditHandler.List)

	// Notificaciones
	notifications := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotificationUC)
	notifications.Get("/", notificationHandler.List)
	notifications.Post("/:id/read", notificationHandler.MarkRead)

	// Documentos adjuntos
	documents := protected.Group("/documents")
	documentHandler := NewDocumentHandler(deps.DocumentUC)
	documents.Post("/", documentHandler.Upload)
	documents.Get("/", documentHandler.ListByResource)
	documents.Get("/:id/download", documentHandler.Download)
	documents.Delete("/:id", documentHandler.Delete)
}
