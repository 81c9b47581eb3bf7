// Package sink destinos de los archivos exportados: directorio local y bucket S3.
package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Dir guarda los archivos en un directorio local (equivalente al "guardar como" del navegador).
type Dir struct {
	path string
}

// NewDir crea el directorio si no existe.
func NewDir(path string) (*Dir, error) {
	if path == "" {
		return nil, fmt.Errorf("sink: directorio requerido")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("sink: crear %s: %w", path, err)
	}
	return &Dir{path: path}, nil
}

// Save escribe en un temporal y renombra, así un lector nunca ve un archivo a medias.
func (d *Dir) Save(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("sink: nombre inválido %q", name)
	}
	tmp, err := os.CreateTemp(d.path, "."+base+".*")
	if err != nil {
		return "", fmt.Errorf("sink: temporal: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sink: escribir: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("sink: cerrar: %w", err)
	}
	target := filepath.Join(d.path, base)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("sink: renombrar: %w", err)
	}
	return target, nil
}
