package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"blog-viewstats/models"
)

// FileBackend keeps the document in a local JSON file. Writes replace the
// file contents in place; a crash mid-write can leave a truncated file,
// which the next read repairs to an empty document.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) (*FileBackend, error) {
	f := &FileBackend{path: path}
	if err := f.ensure(); err != nil {
		return nil, err
	}
	return f, nil
}

// ensure creates the parent directory and an empty document when absent.
func (f *FileBackend) ensure() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}
	if _, err := os.Stat(f.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat stats file: %w", err)
	}
	return f.write(models.NewAggregateState())
}

func (f *FileBackend) Name() string { return "file" }

func (f *FileBackend) Path() string { return f.path }

// Read implements Backend.
func (f *FileBackend) Read(_ context.Context) (*models.AggregateState, error) {
	if err := f.ensure(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read stats file: %w", err)
	}
	return decodeAndReport(f.Name(), data), nil
}

// Write implements Backend.
func (f *FileBackend) Write(_ context.Context, state *models.AggregateState) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}
	return f.write(state)
}

func (f *FileBackend) write(state *models.AggregateState) error {
	data, err := encodeDocument(state)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write stats file: %w", err)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }
