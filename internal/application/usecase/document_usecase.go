package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/rbac"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
	"github.com/tu-usuario/backoffice-pro/pkg/logger"
)

// Códigos de negocio de documentos.
const (
	codeDocNotFound    = "ERR-DOC-404"
	codeDocTooLarge    = "ERR-DOC-001" // supera el tamaño máximo
	codeDocBadType     = "ERR-DOC-002" // content-type no permitido
	codeDocBadResource = "ERR-DOC-003" // recurso destino inexistente
)

// MaxDocumentSize tamaño máximo de un adjunto.
const MaxDocumentSize = 10 << 20 // 10 MiB

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"text/plain":      true,
	"text/csv":        true,
}

// FileStorage almacenamiento de contenido binario por clave opaca. La capa
// de persistencia guarda solo metadatos.
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// DocumentUseCase adjuntos sobre workflows, gastos y proyectos.
type DocumentUseCase struct {
	docRepo     repository.DocumentRepository
	wfRepo      repository.WorkflowRepository
	expenseRepo repository.ExpenseRepository
	projectRepo repository.ProjectRepository
	storage     FileStorage
	recorder    *audit.Recorder
	log         *logger.Logger
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(
	docRepo repository.DocumentRepository,
	wfRepo repository.WorkflowRepository,
	expenseRepo repository.ExpenseRepository,
	projectRepo repository.ProjectRepository,
	storage FileStorage,
	recorder *audit.Recorder,
	log *logger.Logger,
) *DocumentUseCase {
	return &DocumentUseCase{
		docRepo:     docRepo,
		wfRepo:      wfRepo,
		expenseRepo: expenseRepo,
		projectRepo: projectRepo,
		storage:     storage,
		recorder:    recorder,
		log:         log.Component("documents"),
	}
}

// Upload guarda el contenido en el storage y registra el metadato. El
// recurso destino debe existir en el tenant.
func (uc *DocumentUseCase) Upload(ctx context.Context, actor rbac.Context, resourceType, resourceID, name, contentType string, size int64, r io.Reader) (*dto.DocumentResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, domain.Invalid("ERR-VAL-001", "el nombre del archivo es obligatorio")
	}
	if size <= 0 || size > MaxDocumentSize {
		return nil, domain.Invalidf(codeDocTooLarge, "el archivo supera el tamaño máximo de %d bytes", MaxDocumentSize)
	}
	if !allowedContentTypes[contentType] {
		return nil, domain.Invalid(codeDocBadType, "tipo de contenido no permitido")
	}
	if err := uc.checkResource(ctx, actor.TenantID, resourceType, resourceID); err != nil {
		return nil, err
	}

	d := &entity.Document{
		ID:           uuid.New().String(),
		TenantID:     actor.TenantID,
		Name:         name,
		ContentType:  contentType,
		SizeBytes:    size,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		UploadedBy:   actor.UserID,
		CreatedAt:    time.Now(),
	}
	d.StorageKey = fmt.Sprintf("%s/%s/%s", actor.TenantID, resourceType, d.ID)

	if err := uc.storage.Save(ctx, d.StorageKey, r, size); err != nil {
		return nil, domain.System(domain.CodePersistence, "guardar archivo", err)
	}
	if err := uc.docRepo.Create(ctx, d); err != nil {
		// El metadato no entró: el contenido huérfano se limpia aquí mismo.
		// La limpieza es best-effort: su fallo se registra y no tapa el error.
		if derr := uc.storage.Delete(ctx, d.StorageKey); derr != nil {
			uc.log.Warn().Err(derr).
				Str("tenant_id", actor.TenantID).
				Str("storage_key", d.StorageKey).
				Msg("no se pudo limpiar el contenido huérfano")
		}
		return nil, domain.Wrap(err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditDocumentUpload,
		ResourceType: "document",
		ResourceID:   d.ID,
		After:        audit.Snapshot(dto.ToDocumentResponse(d)),
	}); err != nil {
		return nil, err
	}
	return dto.ToDocumentResponse(d), nil
}

// Download abre el contenido y audita la descarga. El caller cierra el
// ReadCloser.
func (uc *DocumentUseCase) Download(ctx context.Context, actor rbac.Context, id string) (*dto.DocumentResponse, io.ReadCloser, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, nil, err
	}
	d, err := uc.get(ctx, actor.TenantID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := uc.storage.Open(ctx, d.StorageKey)
	if err != nil {
		return nil, nil, domain.System(domain.CodePersistence, "abrir archivo", err)
	}
	if err := uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditDocumentDownload,
		ResourceType: "document",
		ResourceID:   d.ID,
	}); err != nil {
		rc.Close()
		return nil, nil, err
	}
	return dto.ToDocumentResponse(d), rc, nil
}

// Delete borra metadato y contenido. Solo quien subió el archivo o un
// tenant_admin.
func (uc *DocumentUseCase) Delete(ctx context.Context, actor rbac.Context, id string) error {
	if err := actor.RequireAny(); err != nil {
		return err
	}
	d, err := uc.get(ctx, actor.TenantID, id)
	if err != nil {
		return err
	}
	if d.UploadedBy != actor.UserID && !actor.IsTenantAdmin() {
		return domain.Authz(domain.CodeNotOwner, "solo quien subió el documento o un tenant_admin puede borrarlo")
	}

	before := audit.Snapshot(dto.ToDocumentResponse(d))
	if err := uc.docRepo.Delete(ctx, actor.TenantID, d.ID); err != nil {
		return domain.Wrap(err)
	}
	if err := uc.storage.Delete(ctx, d.StorageKey); err != nil {
		// El metadato ya no existe; el contenido residual no es visible.
		return domain.System(domain.CodePersistence, "borrar archivo", err)
	}
	return uc.recorder.Record(ctx, audit.Entry{
		TenantID:     actor.TenantID,
		ActorID:      actor.UserID,
		Action:       entity.AuditDocumentDelete,
		ResourceType: "document",
		ResourceID:   d.ID,
		Before:       before,
	})
}

// ListByResource lista los adjuntos de un recurso del tenant.
func (uc *DocumentUseCase) ListByResource(ctx context.Context, actor rbac.Context, resourceType, resourceID string) ([]*dto.DocumentResponse, error) {
	if err := actor.RequireAny(); err != nil {
		return nil, err
	}
	if err := uc.checkResource(ctx, actor.TenantID, resourceType, resourceID); err != nil {
		return nil, err
	}
	list, err := uc.docRepo.ListByResource(ctx, actor.TenantID, resourceType, resourceID)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	out := make([]*dto.DocumentResponse, 0, len(list))
	for _, d := range list {
		out = append(out, dto.ToDocumentResponse(d))
	}
	return out, nil
}

func (uc *DocumentUseCase) get(ctx context.Context, tenantID, id string) (*entity.Document, error) {
	d, err := uc.docRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, domain.Wrap(err)
	}
	if d == nil {
		return nil, domain.NotFound(codeDocNotFound, "el documento")
	}
	return d, nil
}

// checkResource verifica que el recurso destino exista en el tenant.
func (uc *DocumentUseCase) checkResource(ctx context.Context, tenantID, resourceType, resourceID string) error {
	switch resourceType {
	case "workflow":
		wf, err := uc.wfRepo.GetByID(ctx, tenantID, resourceID)
		if err != nil {
			return domain.Wrap(err)
		}
		if wf == nil {
			return domain.Invalid(codeDocBadResource, "el workflow destino no existe")
		}
	case "expense":
		e, err := uc.expenseRepo.GetByID(ctx, tenantID, resourceID)
		if err != nil {
			return domain.Wrap(err)
		}
		if e == nil {
			return domain.Invalid(codeDocBadResource, "el gasto destino no existe")
		}
	case "project":
		p, err := uc.projectRepo.GetByID(ctx, tenantID, resourceID)
		if err != nil {
			return domain.Wrap(err)
		}
		if p == nil {
			return domain.Invalid(codeDocBadResource, "el proyecto destino no existe")
		}
	default:
		return domain.Invalid(codeDocBadResource, "tipo de recurso no adjuntable")
	}
	return nil
}
