package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tasklist/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "tasklist")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Server.Bind != "127.0.0.1:7489" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
	if cfg.Server.MaxBodyBytes != 1<<20 {
		t.Fatalf("unexpected max body bytes: %d", cfg.Server.MaxBodyBytes)
	}
	if cfg.Storage.Backend != config.BackendFile {
		t.Fatalf("expected file backend by default, got %q", cfg.Storage.Backend)
	}
	if !cfg.Storage.AtomicWrites {
		t.Fatal("expected atomic writes enabled by default")
	}
	if cfg.Client.OnSaveFailure != config.SaveFailureRollback {
		t.Fatalf("expected rollback failure policy, got %q", cfg.Client.OnSaveFailure)
	}
	if cfg.Client.SaveRetries != 2 {
		t.Fatalf("expected 2 save retries, got %d", cfg.Client.SaveRetries)
	}
	if cfg.DataFilePath() != filepath.Join(wantData, "todos.json") {
		t.Fatalf("unexpected data file path: %q", cfg.DataFilePath())
	}
	if cfg.ClientTimeout() != 10*time.Second {
		t.Fatalf("unexpected client timeout: %s", cfg.ClientTimeout())
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Storage struct {
			Backend  string `toml:"backend"`
			FileName string `toml:"file_name"`
		} `toml:"storage"`
		Client struct {
			ServerURL     string `toml:"server_url"`
			OnSaveFailure string `toml:"on_save_failure"`
			Locale        string `toml:"locale"`
		} `toml:"client"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}{}
	payload.Paths.DataDir = "~/tasks"
	payload.Storage.Backend = "SQLite"
	payload.Storage.FileName = "list.json"
	payload.Client.ServerURL = "http://localhost:9000/"
	payload.Client.OnSaveFailure = "keep"
	payload.Client.Locale = "tr"
	payload.Logging.Format = "JSON"

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "tasks") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		t.Fatalf("expected sqlite backend, got %q", cfg.Storage.Backend)
	}
	if got := cfg.DataFilePath(); got != filepath.Join(tempHome, "tasks", "list.db") {
		t.Fatalf("unexpected sqlite path: %q", got)
	}
	if cfg.Client.ServerURL != "http://localhost:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Client.ServerURL)
	}
	if cfg.Client.OnSaveFailure != config.SaveFailureKeep {
		t.Fatalf("unexpected failure policy: %q", cfg.Client.OnSaveFailure)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	dataDir := t.TempDir()
	t.Setenv("TASKLIST_SERVER_URL", "http://10.0.0.2:7000")
	t.Setenv("TASKLIST_DATA_DIR", dataDir)
	t.Setenv("TASKLIST_BIND", "0.0.0.0:7000")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Client.ServerURL != "http://10.0.0.2:7000" {
		t.Fatalf("unexpected server url: %q", cfg.Client.ServerURL)
	}
	if cfg.Paths.DataDir != dataDir {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Server.Bind != "0.0.0.0:7000" {
		t.Fatalf("unexpected bind: %q", cfg.Server.Bind)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[storage]\nbackend = \"file\"\nflavour = \"vanilla\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"file name", func(c *config.Config) { c.Storage.FileName = "../escape.json" }, "storage.file_name"},
		{"bind", func(c *config.Config) { c.Server.Bind = "localhost" }, "server.bind"},
		{"server url", func(c *config.Config) { c.Client.ServerURL = "ftp://example.com" }, "client.server_url"},
		{"failure policy", func(c *config.Config) { c.Client.OnSaveFailure = "retry" }, "client.on_save_failure"},
		{"retries", func(c *config.Config) { c.Client.SaveRetries = -1 }, "client.save_retries"},
		{"retry delays", func(c *config.Config) { c.Client.RetryBaseDelayMS = 500; c.Client.RetryMaxDelayMS = 100 }, "retry_max_delay_ms"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Storage.FileName != "todos.json" {
		t.Fatalf("unexpected sample file name: %q", cfg.Storage.FileName)
	}
}

func TestEnsureDirectoriesCreatesPaths(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}
