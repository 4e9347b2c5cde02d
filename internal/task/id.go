package task

import (
	"sync"
	"time"
)

// IDGenerator issues wall-clock millisecond ids that are strictly greater
// than every id it has issued or observed.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewIDGenerator returns a generator reading the supplied clock. A nil clock
// uses time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Observe raises the floor so future ids exceed every id in tasks.
func (g *IDGenerator) Observe(tasks []Task) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range tasks {
		if t.ID > g.last {
			g.last = t.ID
		}
	}
}

// Next returns max(now in milliseconds, last+1).
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := max(g.now().UnixMilli(), g.last+1)
	g.last = id
	return id
}
