// Package audit implementa el escritor del audit log: una entrada inmutable
// por operación mutante, suficiente para reconstruir "qué cambió".
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
)

// Entry datos de la entrada a registrar. Before solo en updates/deletes,
// After solo en creates, ambos en updates.
type Entry struct {
	TenantID     string
	ActorID      string
	Action       entity.AuditAction
	ResourceType string
	ResourceID   string
	Before       map[string]any
	After        map[string]any
	Metadata     map[string]any
}

// Recorder escribe entradas vía el repositorio append-only. Se invoca de
// forma síncrona dentro de la misma operación lógica que la mutación; su
// fallo nunca se traga: se propaga como error de la operación (ERR-SYS-002).
type Recorder struct {
	repo repository.AuditLogRepository
}

// NewRecorder construye el escritor.
func NewRecorder(repo repository.AuditLogRepository) *Recorder {
	return &Recorder{repo: repo}
}

// Record persiste la entrada. Para registrarla dentro de una transacción,
// usar WithRepo con el repositorio atado a la tx.
func (r *Recorder) Record(ctx context.Context, e Entry) error {
	return record(ctx, r.repo, e)
}

// WithRepo devuelve un Recorder atado a otro repositorio (típicamente el
// de una transacción en curso).
func (r *Recorder) WithRepo(repo repository.AuditLogRepository) *Recorder {
	return &Recorder{repo: repo}
}

func record(ctx context.Context, repo repository.AuditLogRepository, e Entry) error {
	entry := &entity.AuditEntry{
		ID:           uuid.New().String(),
		TenantID:     e.TenantID,
		ActorID:      e.ActorID,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Before:       e.Before,
		After:        e.After,
		Metadata:     e.Metadata,
		CreatedAt:    time.Now(),
	}
	if err := repo.Insert(ctx, entry); err != nil {
		return domain.System(domain.CodeAuditWrite, "escribir entrada de auditoría", err)
	}
	return nil
}

// Snapshot serializa una entidad a mapa JSON para before/after. nil entra,
// nil sale.
func Snapshot(v any) map[string]any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"_snapshot_error": err.Error()}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{"_snapshot_error": err.Error()}
	}
	return m
}
