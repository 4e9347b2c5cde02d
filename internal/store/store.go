package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tasklist/internal/config"
	"tasklist/internal/logging"
)

var (
	// ErrNotFound indicates no document has been stored yet.
	ErrNotFound = errors.New("task document not found")
	// ErrCorrupt indicates the stored document is not valid JSON.
	ErrCorrupt = errors.New("task document is not valid JSON")
)

// EmptyDocument is the collection written when seeding a fresh store.
var EmptyDocument = []byte("[]")

// Store reads and replaces the whole persisted document.
type Store interface {
	// ReadAll returns the stored document verbatim. It fails with ErrNotFound
	// when nothing has been stored and ErrCorrupt when the bytes are not JSON.
	ReadAll(ctx context.Context) ([]byte, error)
	// ReplaceAll overwrites the stored document with doc.
	ReplaceAll(ctx context.Context, doc []byte) error
	// Describe reports where and how the document is stored.
	Describe(ctx context.Context) (Info, error)
	Close() error
}

// Info describes the persisted document for diagnostics.
type Info struct {
	Backend    string    `json:"backend"`
	Path       string    `json:"path"`
	Exists     bool      `json:"exists"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at,omitzero"`
}

// Open constructs the backend selected by storage.backend.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	if cfg == nil {
		return nil, errors.New("store requires configuration")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return NewFileStore(cfg.DataFilePath(), cfg.Storage.AtomicWrites, logger), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.DataFilePath(), logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// Seed writes an empty collection when the store holds no document yet.
// It reports whether a document was written.
func Seed(ctx context.Context, s Store, logger *slog.Logger) (bool, error) {
	_, err := s.ReadAll(ctx)
	switch {
	case err == nil, errors.Is(err, ErrCorrupt):
		return false, nil
	case !errors.Is(err, ErrNotFound):
		return false, err
	}
	if err := s.ReplaceAll(ctx, EmptyDocument); err != nil {
		return false, fmt.Errorf("seed empty collection: %w", err)
	}
	logging.NewComponentLogger(logger, "store").Info("seeded empty task collection")
	return true, nil
}
