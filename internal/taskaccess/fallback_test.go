package taskaccess_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tasklist/internal/api"
	"tasklist/internal/client"
	"tasklist/internal/config"
	"tasklist/internal/logging"
	"tasklist/internal/task"
	"tasklist/internal/taskaccess"
	"tasklist/internal/testsupport"
)

func closedServerURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestOpenWithFallbackUsesServerWhenHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case api.HealthPath:
			_ = json.NewEncoder(w).Encode(api.HealthResponse{Status: "ok"})
		case api.TodosPath:
			_, _ = w.Write([]byte(`[{"id":3,"task":"remote","date":"2024-01-01","importance":"high","completed":false}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(srv.URL), testsupport.WithFallbackLocal())
	session, err := taskaccess.OpenWithFallback(context.Background(), cfg, logging.NewNop(), false)
	if err != nil {
		t.Fatalf("OpenWithFallback returned error: %v", err)
	}
	defer session.Close()

	if session.Mode != taskaccess.ModeHTTP || session.Client == nil {
		t.Fatalf("expected http session, got %#v", session)
	}
	tasks, err := session.Backend.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Description != "remote" {
		t.Fatalf("unexpected tasks %#v", tasks)
	}
}

func TestOpenWithFallbackFallsBackToStore(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(closedServerURL(t)), testsupport.WithFallbackLocal())
	testsupport.WriteTasks(t, cfg.DataFilePath(), []task.Task{{ID: 1, Description: "local", Priority: task.PriorityLow}})

	session, err := taskaccess.OpenWithFallback(context.Background(), cfg, logging.NewNop(), false)
	if err != nil {
		t.Fatalf("OpenWithFallback returned error: %v", err)
	}
	defer session.Close()

	if session.Mode != taskaccess.ModeDirect || session.Target != cfg.DataFilePath() {
		t.Fatalf("expected direct session, got %#v", session)
	}
	tasks, err := session.Backend.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Description != "local" {
		t.Fatalf("unexpected tasks %#v", tasks)
	}
}

func TestOpenWithFallbackFallsBackWhenServerHangs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(srv.URL), testsupport.WithFallbackLocal())
	cfg.Client.TimeoutSeconds = 1

	session, err := taskaccess.OpenWithFallback(context.Background(), cfg, logging.NewNop(), false)
	if err != nil {
		t.Fatalf("OpenWithFallback returned error: %v", err)
	}
	defer session.Close()
	if session.Mode != taskaccess.ModeDirect {
		t.Fatalf("expected direct session, got %#v", session)
	}
}

func TestOpenWithFallbackDisabledReturnsError(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(closedServerURL(t)))

	_, err := taskaccess.OpenWithFallback(context.Background(), cfg, logging.NewNop(), false)
	if err == nil {
		t.Fatal("expected error when server is down and fallback disabled")
	}
	if !client.IsAPIUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestOpenWithFallbackDoesNotMaskServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(srv.URL), testsupport.WithFallbackLocal())
	_, err := taskaccess.OpenWithFallback(context.Background(), cfg, logging.NewNop(), false)
	var statusErr *client.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
}

func TestDirectBackendRoundTrip(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithBackend(backend))
			session, err := taskaccess.OpenWithFallback(context.Background(), cfg, logging.NewNop(), true)
			if err != nil {
				t.Fatalf("OpenWithFallback returned error: %v", err)
			}
			defer session.Close()
			ctx := context.Background()

			tasks, err := session.Backend.Fetch(ctx)
			if err != nil {
				t.Fatalf("Fetch on empty store returned error: %v", err)
			}
			if tasks == nil || len(tasks) != 0 {
				t.Fatalf("expected empty non-nil collection, got %#v", tasks)
			}

			want := []task.Task{
				{ID: 1, Description: "a", DueDate: "2024-01-01", Priority: task.PriorityHigh},
				{ID: 2, Description: "b", DueDate: "2024-01-02", Priority: task.PriorityNormal, Completed: true},
			}
			if err := session.Backend.Save(ctx, want); err != nil {
				t.Fatalf("Save returned error: %v", err)
			}
			got, err := session.Backend.Fetch(ctx)
			if err != nil {
				t.Fatalf("Fetch returned error: %v", err)
			}
			if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
				t.Fatalf("unexpected round trip %#v", got)
			}
		})
	}
}

func TestDirectBackendPersistsPrettyJSON(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	session, err := taskaccess.OpenDirect(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("OpenDirect returned error: %v", err)
	}
	defer session.Close()

	if err := session.Backend.Save(context.Background(), []task.Task{{ID: 5, Description: "x", DueDate: "2024-01-01", Priority: task.PriorityNormal}}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got := testsupport.ReadTasks(t, cfg.DataFilePath())
	if len(got) != 1 || got[0].ID != 5 {
		t.Fatalf("unexpected stored tasks %#v", got)
	}
}
