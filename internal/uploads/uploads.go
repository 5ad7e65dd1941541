// Package uploads owns the upload directory: generated file names on the
// way in, read-only static serving on the way out.
package uploads

import (
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/aumanu2/chatdrop/internal/apperr"
)

// Dir is a filesystem directory holding user-submitted files under
// generated names.
type Dir struct {
	path string
}

// New ensures the directory exists and returns it. Creation is idempotent.
func New(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, apperr.IO(fmt.Errorf("uploads: create dir %s: %w", path, err))
	}
	return &Dir{path: path}, nil
}

// Save streams r into a freshly named file and returns the generated name.
// The name is a random 128-bit hex token plus the verbatim extension of the
// original filename (case included, empty if none). filepath.Ext never
// yields a path separator, so generated names stay inside the directory.
// Concurrent saves of the same original name get distinct tokens.
func (d *Dir) Save(originalName string, r io.Reader) (string, error) {
	id := uuid.New()
	name := hex.EncodeToString(id[:]) + filepath.Ext(originalName)

	f, err := os.Create(filepath.Join(d.path, name))
	if err != nil {
		return "", apperr.IO(fmt.Errorf("uploads: create %s: %w", name, err))
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", apperr.IO(fmt.Errorf("uploads: write %s: %w", name, err))
	}
	if err := f.Close(); err != nil {
		return "", apperr.IO(fmt.Errorf("uploads: close %s: %w", name, err))
	}
	return name, nil
}

// Open opens a stored file by its generated name.
func (d *Dir) Open(name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(d.path, filepath.Base(name)))
	if err != nil {
		return nil, apperr.IO(fmt.Errorf("uploads: open %s: %w", name, err))
	}
	return f, nil
}

// DetectMIME sniffs the real media type of a stored file from its content.
// Diagnostic only; the declared type on the message record stays verbatim.
func (d *Dir) DetectMIME(name string) (string, error) {
	mt, err := mimetype.DetectFile(filepath.Join(d.path, filepath.Base(name)))
	if err != nil {
		return "", apperr.IO(fmt.Errorf("uploads: detect %s: %w", name, err))
	}
	return mt.String(), nil
}

// Path returns the directory location on disk.
func (d *Dir) Path() string {
	return d.path
}

// FileServer serves the directory contents; mount it under the public
// uploads prefix.
func (d *Dir) FileServer() http.Handler {
	return http.FileServer(http.Dir(d.path))
}
