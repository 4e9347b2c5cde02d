package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tasklist/internal/task"
)

// WriteTasks persists tasks to path in the on-disk format.
func WriteTasks(t testing.TB, path string, tasks []task.Task) {
	t.Helper()

	data, err := task.Encode(tasks)
	if err != nil {
		t.Fatalf("encode tasks: %v", err)
	}
	WriteFile(t, path, data)
}

// WriteFile writes raw bytes to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadTasks decodes the collection stored at path.
func ReadTasks(t testing.TB, path string) []task.Task {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	tasks, err := task.Decode(data)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return tasks
}
