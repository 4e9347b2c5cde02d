package tasklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tasklist/internal/config"
	"tasklist/internal/logging"
	"tasklist/internal/task"
)

// Backend moves the whole collection to and from storage.
type Backend interface {
	Fetch(ctx context.Context) ([]task.Task, error)
	Save(ctx context.Context, tasks []task.Task) error
}

// FailurePolicy decides what happens to local state when a save fails.
type FailurePolicy string

const (
	// Rollback restores the collection as it was before the mutation.
	Rollback FailurePolicy = FailurePolicy(config.SaveFailureRollback)
	// Keep leaves the mutation applied locally.
	Keep FailurePolicy = FailurePolicy(config.SaveFailureKeep)
)

// Options tunes a List.
type Options struct {
	OnSaveFailure FailurePolicy
	SaveRetries   int
	Backoff       BackoffConfig
	Logger        *slog.Logger
	// Now is the clock used for ids and relative due dates.
	Now func() time.Time
	// Jitter overrides the backoff randomness.
	Jitter func(n int64) int64
}

// OptionsFromConfig maps the [client] config section onto Options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	opts := Options{Logger: logger, Backoff: DefaultBackoff(), OnSaveFailure: Rollback}
	if cfg == nil {
		return opts
	}
	opts.OnSaveFailure = FailurePolicy(cfg.Client.OnSaveFailure)
	opts.SaveRetries = cfg.Client.SaveRetries
	opts.Backoff = BackoffConfig{BaseDelay: cfg.RetryBaseDelay(), MaxDelay: cfg.RetryMaxDelay()}
	return opts
}

// Draft holds the fields of a task being composed.
type Draft struct {
	Description string
	DueDate     string
	Priority    task.Priority
}

// Reset clears the draft back to an empty normal-priority task.
func (d *Draft) Reset() {
	*d = Draft{Priority: task.PriorityNormal}
}

// List is the client's authoritative in-memory view of the collection.
type List struct {
	// mutate is held across apply + persist so mutations never interleave.
	mutate sync.Mutex

	state   sync.RWMutex
	tasks   []task.Task
	loading bool

	backend Backend
	ids     *task.IDGenerator
	opts    Options
	logger  *slog.Logger
}

// New returns an empty list persisting through backend.
func New(backend Backend, opts Options) *List {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OnSaveFailure == "" {
		opts.OnSaveFailure = Rollback
	}
	if opts.SaveRetries < 0 {
		opts.SaveRetries = 0
	}
	return &List{
		tasks:   []task.Task{},
		backend: backend,
		ids:     task.NewIDGenerator(opts.Now),
		opts:    opts,
		logger:  logging.NewComponentLogger(opts.Logger, "tasklist"),
	}
}

// Tasks returns a copy of the current collection.
func (l *List) Tasks() []task.Task {
	l.state.RLock()
	defer l.state.RUnlock()
	return task.Clone(l.tasks)
}

// Loading reports whether a Load is in flight.
func (l *List) Loading() bool {
	l.state.RLock()
	defer l.state.RUnlock()
	return l.loading
}

// Load replaces the local collection with the stored one. On failure the
// collection is left empty.
func (l *List) Load(ctx context.Context) error {
	l.mutate.Lock()
	defer l.mutate.Unlock()

	l.setLoading(true)
	defer l.setLoading(false)

	tasks, err := l.backend.Fetch(ctx)
	if err != nil {
		l.setTasks([]task.Task{})
		logging.WarnWithContext(l.logger, "failed to load tasks", "tasks_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that tasklistd is running or use --direct"),
			logging.String(logging.FieldImpact, "task list shown empty"))
		return fmt.Errorf("load tasks: %w", err)
	}
	l.ids.Observe(tasks)
	l.setTasks(tasks)
	l.logger.Debug("loaded tasks", logging.Int(logging.FieldTaskCount, len(tasks)))
	return nil
}

// Create validates draft, appends a new task, and persists the collection.
// The draft is reset once the task is kept locally.
func (l *List) Create(ctx context.Context, draft *Draft) (task.Task, error) {
	if draft == nil {
		return task.Task{}, task.ErrDescriptionRequired
	}
	if strings.TrimSpace(draft.DueDate) == "" {
		return task.Task{}, task.ErrDateRequired
	}
	description := strings.TrimSpace(draft.Description)
	if description == "" {
		return task.Task{}, task.ErrDescriptionRequired
	}
	dueDate, err := task.ParseDueDate(draft.DueDate, l.opts.Now())
	if err != nil {
		return task.Task{}, err
	}
	priority := task.PriorityNormal
	if strings.TrimSpace(string(draft.Priority)) != "" {
		if priority, err = task.ParsePriority(string(draft.Priority)); err != nil {
			return task.Task{}, err
		}
	}

	l.mutate.Lock()
	defer l.mutate.Unlock()

	created := task.Task{
		ID:          l.ids.Next(),
		Description: description,
		DueDate:     dueDate,
		Priority:    priority,
	}
	kept, err := l.apply(ctx, "create", created.ID, func(tasks []task.Task) []task.Task {
		return append(tasks, created)
	})
	if kept {
		draft.Reset()
	}
	return created, err
}

// ToggleComplete flips the completed flag of id and persists. An unknown id
// leaves the collection unchanged but is still persisted.
func (l *List) ToggleComplete(ctx context.Context, id int64) error {
	l.mutate.Lock()
	defer l.mutate.Unlock()

	_, err := l.apply(ctx, "toggle", id, func(tasks []task.Task) []task.Task {
		if i := task.Find(tasks, id); i >= 0 {
			tasks[i].Completed = !tasks[i].Completed
		}
		return tasks
	})
	return err
}

// ChangePriority sets the priority of id and persists. p must be one of the
// canonical priorities.
func (l *List) ChangePriority(ctx context.Context, id int64, p task.Priority) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", task.ErrInvalidPriority, p)
	}

	l.mutate.Lock()
	defer l.mutate.Unlock()

	_, err := l.apply(ctx, "priority", id, func(tasks []task.Task) []task.Task {
		if i := task.Find(tasks, id); i >= 0 {
			tasks[i].Priority = p
		}
		return tasks
	})
	return err
}

// Delete removes id and persists the remaining collection.
func (l *List) Delete(ctx context.Context, id int64) error {
	l.mutate.Lock()
	defer l.mutate.Unlock()

	_, err := l.apply(ctx, "delete", id, func(tasks []task.Task) []task.Task {
		out := tasks[:0]
		for _, t := range tasks {
			if t.ID != id {
				out = append(out, t)
			}
		}
		return out
	})
	return err
}

// apply installs fn's result locally and persists it. It reports whether the
// mutation remains applied. Callers hold l.mutate.
func (l *List) apply(ctx context.Context, op string, id int64, fn func([]task.Task) []task.Task) (bool, error) {
	previous := l.Tasks()
	next := fn(task.Clone(previous))
	l.setTasks(next)

	err := l.persist(ctx, next)
	if err == nil {
		l.logger.Debug("tasks saved",
			logging.String("op", op),
			logging.Int64(logging.FieldTaskID, id),
			logging.Int(logging.FieldTaskCount, len(next)))
		return true, nil
	}

	impact := "local change kept; server copy is stale"
	kept := true
	if l.opts.OnSaveFailure == Rollback {
		l.setTasks(previous)
		impact = "local change rolled back"
		kept = false
	}
	logging.WarnWithContext(l.logger, "failed to save tasks", "tasks_save_failed",
		logging.String("op", op),
		logging.Int64(logging.FieldTaskID, id),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check that tasklistd is running and the data directory is writable"),
		logging.String(logging.FieldImpact, impact))
	return kept, fmt.Errorf("save tasks: %w", err)
}

func (l *List) persist(ctx context.Context, tasks []task.Task) error {
	for attempt := 0; ; attempt++ {
		err := l.backend.Save(ctx, tasks)
		if err == nil {
			return nil
		}
		if attempt >= l.opts.SaveRetries || !retryable(err) || ctx.Err() != nil {
			return err
		}
		delay := l.opts.Backoff.Delay(attempt+1, l.opts.Jitter)
		l.logger.Debug("retrying task save",
			logging.Int("attempt", attempt+1),
			logging.Duration("delay", delay),
			logging.Error(err))
		if sleepErr := sleepContext(ctx, delay); sleepErr != nil {
			return err
		}
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var classified interface{ Retryable() bool }
	if errors.As(err, &classified) {
		return classified.Retryable()
	}
	return true
}

func (l *List) setTasks(tasks []task.Task) {
	l.state.Lock()
	defer l.state.Unlock()
	l.tasks = task.Clone(tasks)
}

func (l *List) setLoading(v bool) {
	l.state.Lock()
	defer l.state.Unlock()
	l.loading = v
}
