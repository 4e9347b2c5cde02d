package taskaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tasklist/internal/client"
	"tasklist/internal/config"
	"tasklist/internal/logging"
	"tasklist/internal/store"
	"tasklist/internal/tasklist"
)

// Session represents a task backend and its cleanup function.
type Session struct {
	Backend tasklist.Backend
	Mode    Mode
	// Target is the server URL or the store path.
	Target string
	// Client is set for HTTP sessions.
	Client *client.Client
	close  func() error
}

// Close releases resources associated with the session.
func (s Session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenWithFallback probes the configured server and returns an HTTP session
// when it answers. When the server is unreachable and client.fallback_local
// is set, it opens the store directly instead. direct skips the probe.
func OpenWithFallback(ctx context.Context, cfg *config.Config, logger *slog.Logger, direct bool) (Session, error) {
	if cfg == nil {
		return Session{}, errors.New("task access requires configuration")
	}
	if direct {
		return OpenDirect(cfg, logger)
	}

	c, err := client.New(cfg.Client.ServerURL, cfg.ClientTimeout())
	if err == nil {
		if _, err = c.Health(ctx); err == nil {
			return Session{
				Backend: NewHTTPBackend(c),
				Mode:    ModeHTTP,
				Target:  c.BaseURL(),
				Client:  c,
			}, nil
		}
	}

	if !cfg.Client.FallbackLocal || !client.IsAPIUnavailable(err) {
		return Session{}, fmt.Errorf("connect to %s: %w", cfg.Client.ServerURL, err)
	}
	logging.WarnWithContext(logging.NewComponentLogger(logger, "taskaccess"),
		"task server unreachable; using local store", "task_server_fallback",
		logging.String("server_url", cfg.Client.ServerURL),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "start tasklistd or run tasklist serve"),
		logging.String(logging.FieldImpact, "changes bypass the server"))
	return OpenDirect(cfg, logger)
}

// OpenDirect opens the configured store in-process.
func OpenDirect(cfg *config.Config, logger *slog.Logger) (Session, error) {
	st, err := store.Open(cfg, logger)
	if err != nil {
		return Session{}, fmt.Errorf("open task store: %w", err)
	}
	return Session{
		Backend: NewStoreBackend(st),
		Mode:    ModeDirect,
		Target:  cfg.DataFilePath(),
		close:   st.Close,
	}, nil
}
