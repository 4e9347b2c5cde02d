package tasklist_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tasklist/internal/task"
	"tasklist/internal/tasklist"
)

type fakeBackend struct {
	mu       sync.Mutex
	stored   []task.Task
	fetchErr error
	// saveErrs is consumed one per Save call; nil entries succeed.
	saveErrs []error
	saves    int
}

func (f *fakeBackend) Fetch(context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return task.Clone(f.stored), nil
}

func (f *fakeBackend) Save(_ context.Context, tasks []task.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if len(f.saveErrs) > 0 {
		err := f.saveErrs[0]
		f.saveErrs = f.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	f.stored = task.Clone(tasks)
	return nil
}

func (f *fakeBackend) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

var fixedNow = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

func newList(t *testing.T, backend *fakeBackend, mutate ...func(*tasklist.Options)) *tasklist.List {
	t.Helper()
	opts := tasklist.Options{
		Now:    func() time.Time { return fixedNow },
		Jitter: func(int64) int64 { return 0 },
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	return tasklist.New(backend, opts)
}

func seeded() []task.Task {
	return []task.Task{
		{ID: 1, Description: "a", DueDate: "2024-01-01", Priority: task.PriorityLow},
		{ID: 2, Description: "b", DueDate: "2024-01-02", Priority: task.PriorityNormal, Completed: true},
	}
}

func TestLoadReplacesCollection(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend)

	if err := list.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := list.Tasks(); len(got) != 2 || got[1].ID != 2 {
		t.Fatalf("unexpected tasks %#v", got)
	}
	if list.Loading() {
		t.Fatal("expected loading flag cleared")
	}
}

func TestLoadFailureLeavesCollectionEmpty(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend)
	if err := list.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	backend.fetchErr = errors.New("connection refused")
	if err := list.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if got := list.Tasks(); len(got) != 0 {
		t.Fatalf("expected empty collection, got %#v", got)
	}
	if list.Loading() {
		t.Fatal("expected loading flag cleared after failure")
	}
}

func TestCreateWithoutDateIsRefused(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend)
	_ = list.Load(context.Background())

	draft := &tasklist.Draft{Description: "Buy milk"}
	_, err := list.Create(context.Background(), draft)
	if !errors.Is(err, task.ErrDateRequired) {
		t.Fatalf("expected ErrDateRequired, got %v", err)
	}
	if backend.saveCount() != 0 {
		t.Fatal("expected no persistence call")
	}
	if len(list.Tasks()) != 2 {
		t.Fatal("expected collection unchanged")
	}
	if draft.Description != "Buy milk" {
		t.Fatal("expected draft untouched")
	}
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name  string
		draft tasklist.Draft
		want  error
	}{
		{"blank description", tasklist.Draft{Description: "  ", DueDate: "2024-06-01"}, task.ErrDescriptionRequired},
		{"bad date", tasklist.Draft{Description: "x", DueDate: "June 1"}, task.ErrInvalidDate},
		{"bad priority", tasklist.Draft{Description: "x", DueDate: "2024-06-01", Priority: "urgent"}, task.ErrInvalidPriority},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := &fakeBackend{}
			list := newList(t, backend)
			draft := tc.draft
			if _, err := list.Create(context.Background(), &draft); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if backend.saveCount() != 0 {
				t.Fatal("expected no persistence call")
			}
		})
	}
}

func TestCreateAppendsPersistsAndResetsDraft(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend)
	_ = list.Load(context.Background())

	draft := &tasklist.Draft{Description: "Buy milk", DueDate: "2024-06-01"}
	created, err := list.Create(context.Background(), draft)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Priority != task.PriorityNormal || created.Completed {
		t.Fatalf("unexpected defaults %#v", created)
	}
	if created.ID != fixedNow.UnixMilli() {
		t.Fatalf("expected clock-derived id, got %d", created.ID)
	}

	got := list.Tasks()
	if len(got) != 3 || got[2].Description != "Buy milk" {
		t.Fatalf("expected appended task, got %#v", got)
	}
	if len(backend.stored) != 3 {
		t.Fatalf("expected full collection persisted, got %#v", backend.stored)
	}
	if *draft != (tasklist.Draft{Priority: task.PriorityNormal}) {
		t.Fatalf("expected draft reset, got %#v", draft)
	}
}

func TestCreateIDsAreUniqueUnderFrozenClock(t *testing.T) {
	backend := &fakeBackend{}
	list := newList(t, backend)

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		created, err := list.Create(context.Background(), &tasklist.Draft{Description: "t", DueDate: "today"})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if seen[created.ID] {
			t.Fatalf("duplicate id %d", created.ID)
		}
		seen[created.ID] = true
		if created.DueDate != "2024-06-01" {
			t.Fatalf("expected today resolved, got %q", created.DueDate)
		}
	}
}

func TestCreateIDExceedsLoadedIDs(t *testing.T) {
	future := fixedNow.Add(time.Hour).UnixMilli()
	backend := &fakeBackend{stored: []task.Task{{ID: future, Description: "later"}}}
	list := newList(t, backend)
	_ = list.Load(context.Background())

	created, err := list.Create(context.Background(), &tasklist.Draft{Description: "t", DueDate: "2024-06-01"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID <= future {
		t.Fatalf("expected id above %d, got %d", future, created.ID)
	}
}

func TestToggleChangePriorityDelete(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend)
	ctx := context.Background()
	_ = list.Load(ctx)

	if err := list.ToggleComplete(ctx, 1); err != nil {
		t.Fatalf("ToggleComplete returned error: %v", err)
	}
	if !list.Tasks()[0].Completed || !backend.stored[0].Completed {
		t.Fatal("expected task 1 completed locally and persisted")
	}

	if err := list.ChangePriority(ctx, 2, task.PriorityHigh); err != nil {
		t.Fatalf("ChangePriority returned error: %v", err)
	}
	if list.Tasks()[1].Priority != task.PriorityHigh {
		t.Fatal("expected priority changed")
	}

	if err := list.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	got := list.Tasks()
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected tasks after delete %#v", got)
	}
	if len(backend.stored) != 1 {
		t.Fatalf("expected deletion persisted, got %#v", backend.stored)
	}
}

func TestToggleTwiceRestoresCompletion(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend)
	ctx := context.Background()
	_ = list.Load(ctx)

	for _, id := range []int64{1, 2} {
		before := list.Tasks()[task.Find(list.Tasks(), id)].Completed
		for i := 0; i < 2; i++ {
			if err := list.ToggleComplete(ctx, id); err != nil {
				t.Fatalf("ToggleComplete(%d) returned error: %v", id, err)
			}
		}
		if got := list.Tasks()[task.Find(list.Tasks(), id)].Completed; got != before {
			t.Fatalf("task %d: expected completed=%v after two toggles, got %v", id, before, got)
		}
		if got := backend.stored[task.Find(backend.stored, id)].Completed; got != before {
			t.Fatalf("task %d: expected persisted completed=%v, got %v", id, before, got)
		}
	}
	if backend.saveCount() != 4 {
		t.Fatalf("expected 4 saves, got %d", backend.saveCount())
	}
}

func TestUnknownIDStillPersists(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend)
	ctx := context.Background()
	_ = list.Load(ctx)

	ops := []func() error{
		func() error { return list.ToggleComplete(ctx, 99) },
		func() error { return list.ChangePriority(ctx, 99, task.PriorityHigh) },
		func() error { return list.Delete(ctx, 99) },
	}
	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d returned error: %v", i, err)
		}
	}
	if backend.saveCount() != 3 {
		t.Fatalf("expected 3 saves, got %d", backend.saveCount())
	}
	if got := list.Tasks(); len(got) != 2 || got[0].Completed {
		t.Fatalf("expected collection unchanged, got %#v", got)
	}
}

func TestChangePriorityRejectsInvalid(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend)
	_ = list.Load(context.Background())

	if err := list.ChangePriority(context.Background(), 1, "urgent"); !errors.Is(err, task.ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
	if backend.saveCount() != 0 {
		t.Fatal("expected no persistence call")
	}
}

func TestRollbackRestoresPreviousCollection(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend)
	ctx := context.Background()
	_ = list.Load(ctx)

	backend.saveErrs = []error{errors.New("server down")}
	if err := list.Delete(ctx, 1); err == nil {
		t.Fatal("expected save error")
	}
	if got := list.Tasks(); len(got) != 2 {
		t.Fatalf("expected rollback to 2 tasks, got %#v", got)
	}

	backend.saveErrs = []error{errors.New("server down")}
	draft := &tasklist.Draft{Description: "keep me", DueDate: "2024-06-01"}
	if _, err := list.Create(ctx, draft); err == nil {
		t.Fatal("expected save error")
	}
	if draft.Description != "keep me" {
		t.Fatal("expected draft preserved after rollback")
	}
}

func TestKeepPolicyLeavesLocalChange(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend, func(o *tasklist.Options) { o.OnSaveFailure = tasklist.Keep })
	ctx := context.Background()
	_ = list.Load(ctx)

	backend.saveErrs = []error{errors.New("server down")}
	if err := list.ToggleComplete(ctx, 1); err == nil {
		t.Fatal("expected save error")
	}
	if !list.Tasks()[0].Completed {
		t.Fatal("expected local change kept")
	}
	if backend.stored[0].Completed {
		t.Fatal("expected server copy unchanged")
	}
}

type retryableErr struct{ retry bool }

func (e retryableErr) Error() string   { return "status error" }
func (e retryableErr) Retryable() bool { return e.retry }

func TestTransientFailureRetriedWithoutRollback(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend, func(o *tasklist.Options) { o.SaveRetries = 2 })
	ctx := context.Background()
	_ = list.Load(ctx)

	backend.saveErrs = []error{errors.New("reset by peer"), nil}
	if err := list.ToggleComplete(ctx, 2); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if backend.saveCount() != 2 {
		t.Fatalf("expected 2 save attempts, got %d", backend.saveCount())
	}
	if list.Tasks()[1].Completed {
		t.Fatal("expected toggle applied")
	}
}

func TestRetriesExhaustedThenRollback(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend, func(o *tasklist.Options) { o.SaveRetries = 2 })
	ctx := context.Background()
	_ = list.Load(ctx)

	backend.saveErrs = []error{errors.New("a"), errors.New("b"), errors.New("c"), nil}
	if err := list.Delete(ctx, 2); err == nil {
		t.Fatal("expected error after retries")
	}
	if backend.saveCount() != 3 {
		t.Fatalf("expected 3 attempts, got %d", backend.saveCount())
	}
	if len(list.Tasks()) != 2 {
		t.Fatal("expected rollback")
	}
}

func TestNonRetryableErrorNotRetried(t *testing.T) {
	backend := &fakeBackend{stored: seeded()}
	list := newList(t, backend, func(o *tasklist.Options) { o.SaveRetries = 3 })
	ctx := context.Background()
	_ = list.Load(ctx)

	backend.saveErrs = []error{retryableErr{retry: false}}
	if err := list.Delete(ctx, 2); err == nil {
		t.Fatal("expected error")
	}
	if backend.saveCount() != 1 {
		t.Fatalf("expected single attempt, got %d", backend.saveCount())
	}
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	backend := &fakeBackend{}
	list := newList(t, backend)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := list.Create(ctx, &tasklist.Draft{Description: "t", DueDate: "2024-06-01"}); err != nil {
				t.Errorf("Create returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := list.Tasks(); len(got) != 20 {
		t.Fatalf("expected 20 tasks locally, got %d", len(got))
	}
	if len(backend.stored) != 20 {
		t.Fatalf("expected 20 tasks persisted, got %d", len(backend.stored))
	}
}

var errTransient = errors.New("connection reset by peer")
