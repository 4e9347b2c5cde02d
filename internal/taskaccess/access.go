package taskaccess

import (
	"context"
	"errors"

	"tasklist/internal/client"
	"tasklist/internal/store"
	"tasklist/internal/task"
	"tasklist/internal/tasklist"
)

// Mode names the transport a session uses.
type Mode string

const (
	ModeHTTP   Mode = "http"
	ModeDirect Mode = "direct"
)

// NewHTTPBackend returns a Backend that talks to the task endpoint.
func NewHTTPBackend(c *client.Client) tasklist.Backend {
	return &httpBackend{client: c}
}

// NewStoreBackend returns a Backend that reads and writes s in-process.
func NewStoreBackend(s store.Store) tasklist.Backend {
	return &storeBackend{store: s}
}

type httpBackend struct {
	client *client.Client
}

func (b *httpBackend) Fetch(ctx context.Context) ([]task.Task, error) {
	return b.client.Fetch(ctx)
}

func (b *httpBackend) Save(ctx context.Context, tasks []task.Task) error {
	return b.client.Save(ctx, tasks)
}

type storeBackend struct {
	store store.Store
}

// Fetch treats a store with no document as an empty collection.
func (b *storeBackend) Fetch(ctx context.Context) ([]task.Task, error) {
	doc, err := b.store.ReadAll(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return []task.Task{}, nil
	}
	if err != nil {
		return nil, err
	}
	return task.Decode(doc)
}

func (b *storeBackend) Save(ctx context.Context, tasks []task.Task) error {
	doc, err := task.Encode(tasks)
	if err != nil {
		return err
	}
	return b.store.ReplaceAll(ctx, doc)
}
