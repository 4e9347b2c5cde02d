package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDateRequired is returned when a task is created without a due date.
	ErrDateRequired = errors.New("due date is required")
	// ErrDescriptionRequired is returned when a task description is blank.
	ErrDescriptionRequired = errors.New("task description is required")
	// ErrInvalidDate is returned for due dates that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("due date must be YYYY-MM-DD")
	// ErrInvalidPriority is returned for priorities outside low, normal, high.
	ErrInvalidPriority = errors.New("priority must be low, normal, or high")
)

// Priority is a task's importance. Stored values are the canonical
// identifiers below; unknown values read from disk are kept verbatim.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Priorities lists the canonical priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh}

var legacyPriorities = map[string]Priority{
	"düşük":  PriorityLow,
	"yüksek": PriorityHigh,
}

// NormalizePriority maps canonical identifiers and the legacy localized
// identifiers to a Priority. Unknown values are returned unchanged.
func NormalizePriority(raw string) Priority {
	folded := strings.ToLower(strings.TrimSpace(raw))
	switch Priority(folded) {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return Priority(folded)
	}
	if p, ok := legacyPriorities[folded]; ok {
		return p
	}
	return Priority(raw)
}

// ParsePriority is NormalizePriority restricted to the canonical enum.
func ParsePriority(raw string) (Priority, error) {
	p := NormalizePriority(raw)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return p, nil
}

// Valid reports whether p is one of the canonical priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities for cycling and sorting. Unknown values rank as normal.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	default:
		return 1
	}
}

// Next returns the next higher priority, saturating at high.
func (p Priority) Next() Priority {
	return Priorities[min(p.Rank()+1, len(Priorities)-1)]
}

// Prev returns the next lower priority, saturating at low.
func (p Priority) Prev() Priority {
	return Priorities[max(p.Rank()-1, 0)]
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode priority: %w", err)
	}
	*p = NormalizePriority(raw)
	return nil
}

// Task is one to-do record as stored on the wire.
type Task struct {
	ID          int64    `json:"id"`
	Description string   `json:"task"`
	DueDate     string   `json:"date"`
	Priority    Priority `json:"importance"`
	Completed   bool     `json:"completed"`
}

// Clone returns a copy of tasks that shares no backing array with the input.
func Clone(tasks []Task) []Task {
	if tasks == nil {
		return []Task{}
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// Find returns the index of the task with id, or -1.
func Find(tasks []Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Decode parses a persisted collection.
func Decode(data []byte) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// Encode renders a collection the way it is persisted: a two-space indented
// JSON array, never null.
func Encode(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}
