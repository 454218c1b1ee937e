package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/backoffice-pro/internal/application/audit"
	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
	"github.com/tu-usuario/backoffice-pro/internal/domain/entity"
	"github.com/tu-usuario/backoffice-pro/internal/domain/repository"
	"github.com/tu-usuario/backoffice-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeDocRepo struct {
	docs       map[string]*entity.Document
	failCreate error
}

func (r *fakeDocRepo) Create(_ context.Context, d *entity.Document) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}
func (r *fakeDocRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Document, error) {
	d, ok := r.docs[id]
	if !ok || d.TenantID != tenantID {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}
func (r *fakeDocRepo) ListByResource(_ context.Context, tenantID, resourceType, resourceID string) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, d := range r.docs {
		if d.TenantID == tenantID && d.ResourceType == resourceType && d.ResourceID == resourceID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}
func (r *fakeDocRepo) Delete(_ context.Context, _, id string) error {
	delete(r.docs, id)
	return nil
}

type fakeFileStorage struct {
	saved      map[string][]byte
	deleted    []string
	failDelete error
}

func (s *fakeFileStorage) Save(_ context.Context, key string, r io.Reader, _ int64) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.saved[key] = b
	return nil
}
func (s *fakeFileStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := s.saved[key]
	if !ok {
		return nil, errors.New("clave inexistente")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}
func (s *fakeFileStorage) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	if s.failDelete != nil {
		return s.failDelete
	}
	delete(s.saved, key)
	return nil
}

type stubWFRepo struct{}

func (stubWFRepo) Create(context.Context, *entity.Workflow) error { return nil }
func (stubWFRepo) GetByID(context.Context, string, string) (*entity.Workflow, error) {
	return nil, nil
}
func (stubWFRepo) List(context.Context, string, repository.WorkflowFilter) ([]*entity.Workflow, error) {
	return nil, nil
}
func (stubWFRepo) Update(context.Context, *entity.Workflow) error { return nil }
func (stubWFRepo) UpdateStatusFrom(context.Context, *entity.Workflow, string) (bool, error) {
	return false, nil
}
func (stubWFRepo) NextNumber(context.Context, string) (int64, error) { return 0, nil }

type stubExpRepo struct{}

func (stubExpRepo) Create(context.Context, *entity.Expense) error { return nil }
func (stubExpRepo) GetByID(context.Context, string, string) (*entity.Expense, error) {
	return nil, nil
}
func (stubExpRepo) GetByWorkflowID(context.Context, string, string) (*entity.Expense, error) {
	return nil, nil
}
func (stubExpRepo) ListByCreator(context.Context, string, string, int, int) ([]*entity.Expense, error) {
	return nil, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Arnés
// ──────────────────────────────────────────────────────────────────────────────

type docHarness struct {
	uc      *usecase.DocumentUseCase
	docs    *fakeDocRepo
	storage *fakeFileStorage
	audit   *memAuditRepo
}

func newDocHarness(t *testing.T) *docHarness {
	t.Helper()
	docs := &fakeDocRepo{docs: map[string]*entity.Document{}}
	storage := &fakeFileStorage{saved: map[string][]byte{}}
	auditRepo := &memAuditRepo{}
	projects := &fakeProjectRepo{projects: map[string]*entity.Project{
		tsProjectID: {
			ID: tsProjectID, TenantID: tenantA,
			Status: entity.ProjectStatusActive, PMID: tsPMID,
			MemberIDs: []string{tsPMID, tsMemberID},
		},
	}}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := usecase.NewDocumentUseCase(docs, stubWFRepo{}, stubExpRepo{}, projects, storage, audit.NewRecorder(auditRepo), log)
	return &docHarness{uc: uc, docs: docs, storage: storage, audit: auditRepo}
}

func (h *docHarness) upload(t *testing.T) error {
	t.Helper()
	_, err := h.uc.Upload(context.Background(), memberCtx(tsMemberID),
		"project", tsProjectID, "acta.pdf", "application/pdf",
		int64(len("contenido")), strings.NewReader("contenido"))
	return err
}

// ──────────────────────────────────────────────────────────────────────────────
// Upload
// ──────────────────────────────────────────────────────────────────────────────

func TestDocumentUpload_GuardaYAudita(t *testing.T) {
	h := newDocHarness(t)

	require.NoError(t, h.upload(t))

	require.Len(t, h.docs.docs, 1)
	require.Len(t, h.storage.saved, 1)
	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, entity.AuditDocumentUpload, h.audit.entries[0].Action)
}

func TestDocumentUpload_FalloDeMetadato_LimpiaElContenido(t *testing.T) {
	h := newDocHarness(t)
	h.docs.failCreate = errors.New("restricción violada")

	err := h.upload(t)
	wantCode(t, err, domain.KindSystem, "ERR-SYS-001")

	assert.Empty(t, h.storage.saved, "el contenido huérfano se limpia")
	require.Len(t, h.storage.deleted, 1)
	assert.Empty(t, h.audit.entries)
}

func TestDocumentUpload_LimpiezaFallida_NoTapaElError(t *testing.T) {
	h := newDocHarness(t)
	h.docs.failCreate = errors.New("restricción violada")
	h.storage.failDelete = errors.New("storage inaccesible")

	// El fallo de la limpieza best-effort solo se registra en el log: el
	// error reportado sigue siendo el del metadato.
	err := h.upload(t)
	wantCode(t, err, domain.KindSystem, "ERR-SYS-001")
	require.Len(t, h.storage.deleted, 1, "la limpieza se intentó")
}

func TestDocumentUpload_RecursoInexistente_ERRDOC003(t *testing.T) {
	h := newDocHarness(t)

	_, err := h.uc.Upload(context.Background(), memberCtx(tsMemberID),
		"project", "fantasma", "acta.pdf", "application/pdf",
		4, strings.NewReader("hola"))
	wantCode(t, err, domain.KindValidation, "ERR-DOC-003")
}

func TestDocumentUpload_TipoNoPermitido_ERRDOC002(t *testing.T) {
	h := newDocHarness(t)

	_, err := h.uc.Upload(context.Background(), memberCtx(tsMemberID),
		"project", tsProjectID, "script.sh", "application/x-sh",
		4, strings.NewReader("hola"))
	wantCode(t, err, domain.KindValidation, "ERR-DOC-002")
}
