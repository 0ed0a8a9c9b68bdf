package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshveil/internal/geometry"
	"github.com/Faultbox/meshveil/pkg/formats"
)

// Mesh file extensions.
const (
	extOBJ  = ".obj"
	extMSHX = ".mshx"
)

var errUnsupportedFormat = errors.New("unsupported mesh format")

// loadMesh reads an OBJ or MSHX file. Unnamed meshes take the file's base name.
func loadMesh(path string, opts geometry.RecalcOptions) (*geometry.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m *geometry.Mesh
	switch strings.ToLower(filepath.Ext(path)) {
	case extOBJ:
		obj, err := formats.ParseOBJ(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if m, err = geometry.FromOBJ(obj, opts); err != nil {
			return nil, fmt.Errorf("building mesh from %s: %w", path, err)
		}
	case extMSHX:
		x, err := formats.ParseMSHX(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if m, err = geometry.FromMSHX(x); err != nil {
			return nil, fmt.Errorf("building mesh from %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedFormat, path)
	}

	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// writeMSHX writes m to path, creating parent directories.
func writeMSHX(path string, m *geometry.Mesh, compress bool) error {
	return writeFile(path, func(w io.Writer) error {
		return formats.WriteMSHX(w, m.ToMSHX(), compress)
	})
}

// writeOBJ writes m to path, creating parent directories.
func writeOBJ(path string, m *geometry.Mesh) error {
	return writeFile(path, m.WriteOBJ)
}

func writeFile(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
