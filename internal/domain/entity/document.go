package entity

import "time"

// Document metadato de un archivo adjunto a un recurso (workflow, gasto,
// proyecto). El contenido vive en el FileStorage externo; aquí solo la
// referencia y los datos para autorizar y auditar.
type Document struct {
	ID           string
	TenantID     string
	Name         string
	ContentType  string
	SizeBytes    int64
	StorageKey   string // clave opaca en el FileStorage
	ResourceType string // recurso al que está adjunto
	ResourceID   string
	UploadedBy   string
	CreatedAt    time.Time
}
