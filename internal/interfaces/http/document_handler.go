package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/backoffice-pro/internal/application/dto"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
)

// DocumentHandler maneja documentos adjuntos (protegido).
type DocumentHandler struct {
	uc *usecase.DocumentUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *usecase.DocumentUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// Upload sube un archivo multipart y lo adjunta a un recurso del tenant.
// Campos del form: file, resource_type, resource_id.
// POST /api/documents
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "ERR-VAL-001", Message: "campo file requerido (multipart)",
		})
	}
	resourceType := c.FormValue("resource_type")
	resourceID := c.FormValue("resource_id")
	if resourceType == "" || resourceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "ERR-VAL-001", Message: "resource_type y resource_id son requeridos",
		})
	}

	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "ERR-VAL-001", Message: "no se pudo leer el archivo",
		})
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	out, err := h.uc.Upload(c.Context(), Actor(c), resourceType, resourceID, fh.Filename, contentType, fh.Size, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Download descarga el contenido de un documento.
// GET /api/documents/:id/download
func (h *DocumentHandler) Download(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	meta, rc, err := h.uc.Download(c.Context(), Actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, meta.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+meta.Name+`"`)
	// SendStream cierra el reader al terminar cuando conoce el tamaño.
	return c.SendStream(rc, int(meta.SizeBytes))
}

// Delete elimina metadato y contenido (quien subió o tenant_admin).
// DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if err := h.uc.Delete(c.Context(), Actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListByResource lista los documentos adjuntos a un recurso.
// GET /api/documents?resource_type=...&resource_id=...
func (h *DocumentHandler) ListByResource(c *fiber.Ctx) error {
	resourceType := c.Query("resource_type")
	resourceID := c.Query("resource_id")
	if resourceType == "" || resourceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "ERR-VAL-001", Message: "resource_type y resource_id son requeridos",
		})
	}
	out, err := h.uc.ListByResource(c.Context(), Actor(c), resourceType, resourceID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
