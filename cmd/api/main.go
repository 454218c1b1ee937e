package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/backoffice-pro/internal/application/approval"
	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/auth"
	"github.com/tu-usuario/backoffice-pro/internal/application/billing"
	"github.com/tu-usuario/backoffice-pro/internal/application/notify"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
	infrapdf "github.com/tu-usuario/backoffice-pro/internal/infrastructure/pdf"
	"github.com/tu-usuario/backoffice-pro/internal/infrastructure/postgres"
	"github.com/tu-usuario/backoffice-pro/internal/infrastructure/storage"
	httpRouter "github.com/tu-usuario/backoffice-pro/internal/interfaces/http"
	"github.com/tu-usuario/backoffice-pro/pkg/config"
	"github.com/tu-usuario/backoffice-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios
	tenantRepo := postgres.NewTenantRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	workflowRepo := postgres.NewWorkflowRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	timesheetRepo := postgres.NewTimesheetRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Servicios transversales
	recorder := audit.NewRecorder(auditRepo)
	dispatcher := notify.NewDispatcher(notificationRepo, log)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de documentos")
	}

	// Casos de uso
	authUC := auth.NewAuthUseCase(userRepo, tenantRepo, txRunner, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	workflowUC := approval.NewWorkflowUseCase(workflowRepo, userRepo, txRunner, recorder, dispatcher)
	expenseUC := approval.NewExpenseUseCase(expenseRepo, workflowRepo, projectRepo, userRepo, txRunner, recorder, dispatcher)
	projectUC := usecase.NewProjectUseCase(projectRepo, userRepo, txRunner, recorder)
	taskUC := usecase.NewTaskUseCase(taskRepo, projectRepo, timesheetRepo, recorder)
	timesheetUC := usecase.NewTimesheetUseCase(timesheetRepo, projectRepo, taskRepo, txRunner, recorder)
	invoiceUC := billing.NewInvoiceUseCase(invoiceRepo, projectRepo, txRunner, recorder)
	pdfUC := billing.NewPDFUseCase(invoiceRepo, tenantRepo, infrapdf.NewMarotoPDFGenerator(), recorder)
	userUC := usecase.NewUserUseCase(userRepo, recorder)
	tenantUC := usecase.NewTenantUseCase(tenantRepo, recorder)
	auditUC := usecase.NewAuditUseCase(auditRepo)
	notificationUC := usecase.NewNotificationUseCase(notificationRepo)
	documentUC := usecase.NewDocumentUseCase(documentRepo, workflowRepo, expenseRepo, projectRepo, fileStorage, recorder, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    12 * 1024 * 1024, // documentos de hasta 10 MB + overhead multipart
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "BackOffice Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		WorkflowUC:     workflowUC,
		ExpenseUC:      expenseUC,
		ProjectUC:      projectUC,
		TaskUC:         taskUC,
		TimesheetUC:    timesheetUC,
		InvoiceUC:      invoiceUC,
		PDFUC:          pdfUC,
		UserUC:         userUC,
		TenantUC:       tenantUC,
		AuditUC:        auditUC,
		NotificationUC: notificationUC,
		DocumentUC:     documentUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
