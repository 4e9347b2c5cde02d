package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"tasklist/internal/api"
	"tasklist/internal/config"
	"tasklist/internal/logging"
	"tasklist/internal/preflight"
	"tasklist/internal/store"
)

// Daemon serves the task collection and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  store.Store
	api    *apiServer

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
}

// New constructs a daemon around an opened store.
func New(cfg *config.Config, st store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, seeds the store when configured, and
// starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tasklist daemon instance is already running")
	}

	for _, result := range preflight.RunStorage(d.cfg) {
		if !result.Passed {
			logging.WarnWithContext(d.logger, "storage preflight failed", "preflight_failed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
				logging.String(logging.FieldErrorHint, "check permissions and free space on paths.data_dir"),
				logging.String(logging.FieldImpact, "task writes may fail"))
		}
	}

	if d.cfg.Storage.SeedEmpty {
		if _, err := store.Seed(ctx, d.store, d.logger); err != nil {
			_ = d.lock.Unlock()
			return fmt.Errorf("seed store: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("tasklist daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.Addr()),
		logging.String("backend", d.cfg.Storage.Backend))
	return nil
}

// Stop shuts the API server down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.String(logging.FieldEventType, "daemon_unlock_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" before restarting"))
	}
	d.running.Store(false)
	d.logger.Info("tasklist daemon stopped")
}

// Run starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.logger.Info("tasklist daemon shutting down")
	d.Stop()
	return nil
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the address the API server is listening on, or the
// configured bind address before Start.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status returns daemon and storage diagnostics.
func (d *Daemon) Status(ctx context.Context) api.StatusResponse {
	resp := api.StatusResponse{
		PID:          os.Getpid(),
		Bind:         d.Addr(),
		LockFilePath: d.lockPath,
		Checks:       preflight.RunStorage(d.cfg),
	}
	if !d.startedAt.IsZero() {
		resp.StartedAt = d.startedAt.Format(time.RFC3339)
	}
	info, err := d.store.Describe(ctx)
	resp.Storage = info
	if err != nil {
		resp.StorageError = err.Error()
	}
	if free, err := preflight.FreeBytes(d.cfg.Paths.DataDir); err == nil {
		resp.FreeBytes = free
	}
	return resp
}
