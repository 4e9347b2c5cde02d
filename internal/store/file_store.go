package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"tasklist/internal/logging"
)

const lockRetryDelay = 25 * time.Millisecond

// FileStore keeps the document in a single JSON file. A sibling .lock file
// serializes access across processes: shared for reads, exclusive for writes.
// The flock is held per file descriptor, so goroutines in this process take
// turns through mu.
type FileStore struct {
	mu     sync.Mutex
	path   string
	atomic bool
	lock   *flock.Flock
	logger *slog.Logger
}

// NewFileStore returns a store backed by path. When atomic is false the file
// is truncated and rewritten in place.
func NewFileStore(path string, atomic bool, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		atomic: atomic,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "store"),
	}
}

// Path returns the document location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) ReadAll(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire read lock: %w", err)
	}
	if locked {
		defer s.unlock()
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, s.path)
	}
	s.logger.Debug("read task document", logging.String("path", s.path), logging.Int("bytes", len(data)))
	return data, nil
}

func (s *FileStore) ReplaceAll(ctx context.Context, doc []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	if locked {
		defer s.unlock()
	}

	if s.atomic {
		err = writeAtomic(s.path, doc)
	} else {
		err = os.WriteFile(s.path, doc, 0o644)
	}
	if err != nil {
		return err
	}
	s.logger.Debug("replaced task document",
		logging.String("path", s.path),
		logging.Int("bytes", len(doc)),
		logging.Bool("atomic", s.atomic))
	return nil
}

func (s *FileStore) Describe(context.Context) (Info, error) {
	info := Info{Backend: "file", Path: s.path}
	stat, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return info, nil
		}
		return info, fmt.Errorf("stat task file: %w", err)
	}
	info.Exists = true
	info.SizeBytes = stat.Size()
	info.ModifiedAt = stat.ModTime().UTC()
	return info, nil
}

func (s *FileStore) Close() error {
	return s.lock.Close()
}

func (s *FileStore) unlock() {
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release task file lock",
			logging.String(logging.FieldEventType, "store_unlock_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the stale .lock file if writes block"))
	}
}

// writeAtomic writes data to a temp file in the target directory, syncs it,
// and renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
