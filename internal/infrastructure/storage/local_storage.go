// Package storage implementa el almacenamiento de documentos en disco local.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tu-usuario/backoffice-pro/internal/application/usecase"
	"github.com/tu-usuario/backoffice-pro/internal/domain"
)

var _ usecase.FileStorage = (*LocalStorage)(nil)

// LocalStorage guarda el contenido binario bajo un directorio base. La clave
// se traduce a una ruta relativa; una clave que escape del directorio base
// se rechaza siempre.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage crea el adaptador y garantiza que el directorio base exista.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolver ruta base: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: crear directorio base: %w", err)
	}
	return &LocalStorage{basePath: abs}, nil
}

// Save escribe el contenido completo bajo la clave dada. Escribe primero a un
// archivo temporal y renombra al final para no dejar archivos a medias.
func (s *LocalStorage) Save(_ context.Context, key string, r io.Reader, size int64) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return domain.System("ERR-SYS-001", "no se pudo preparar el almacenamiento", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return domain.System("ERR-SYS-001", "no se pudo escribir el documento", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, io.LimitReader(r, size))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return domain.System("ERR-SYS-001", "no se pudo escribir el documento", err)
	}
	if written != size {
		return domain.System("ERR-SYS-001", "no se pudo escribir el documento",
			fmt.Errorf("storage: se esperaban %d bytes, se escribieron %d", size, written))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return domain.System("ERR-SYS-001", "no se pudo escribir el documento", err)
	}
	return nil
}

// Open devuelve un lector del contenido. El llamador debe cerrarlo.
func (s *LocalStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.System("ERR-SYS-001", "no se pudo leer el documento", err)
	}
	return f, nil
}

// Delete elimina el contenido. Borrar una clave inexistente no es un error.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return domain.System("ERR-SYS-001", "no se pudo eliminar el documento", err)
	}
	return nil
}

// resolve traduce la clave opaca a una ruta absoluta dentro del directorio
// base, rechazando traversal.
func (s *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", domain.System("ERR-SYS-001", "clave de almacenamiento inválida",
			fmt.Errorf("storage: clave %q fuera del directorio base", key))
	}
	return filepath.Join(s.basePath, clean), nil
}
