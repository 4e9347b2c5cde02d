package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"tasklist/internal/logging"
)

const collectionName = "todos"

// SQLiteStore keeps the document in one row of the collections table.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	const schema = `CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create collections table: %w", err)
	}

	return &SQLiteStore{db: db, path: path, logger: logging.NewComponentLogger(logger, "store")}, nil
}

func (s *SQLiteStore) ReadAll(ctx context.Context) ([]byte, error) {
	var document string
	err := s.db.QueryRowContext(ctx, "SELECT document FROM collections WHERE name = ?", collectionName).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("query collection: %w", err)
	}
	data := []byte(document)
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, s.path)
	}
	return data, nil
}

func (s *SQLiteStore) ReplaceAll(ctx context.Context, doc []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO collections (name, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		collectionName,
		string(doc),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("replace collection: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	s.logger.Debug("replaced task document", logging.String("path", s.path), logging.Int("bytes", len(doc)))
	return nil
}

func (s *SQLiteStore) Describe(ctx context.Context) (Info, error) {
	info := Info{Backend: "sqlite", Path: s.path}
	var (
		size      int64
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT length(CAST(document AS BLOB)), updated_at FROM collections WHERE name = ?", collectionName,
	).Scan(&size, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return info, nil
		}
		return info, fmt.Errorf("describe collection: %w", err)
	}
	info.Exists = true
	info.SizeBytes = size
	if parsed, parseErr := time.Parse(time.RFC3339Nano, updatedAt); parseErr == nil {
		info.ModifiedAt = parsed
	} else if stat, statErr := os.Stat(s.path); statErr == nil {
		info.ModifiedAt = stat.ModTime().UTC()
	}
	return info, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
