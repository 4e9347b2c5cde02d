package testsupport

import (
	"path/filepath"
	"testing"

	"tasklist/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Retries are disabled and delays shortened so failure paths stay fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Client.SaveRetries = 0
	cfgVal.Client.RetryBaseDelayMS = 1
	cfgVal.Client.RetryMaxDelayMS = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackend selects the storage backend.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = backend
	}
}

// WithServerURL points the client at url.
func WithServerURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Client.ServerURL = url
	}
}

// WithSaveFailure sets the client save failure policy.
func WithSaveFailure(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Client.OnSaveFailure = policy
	}
}

// WithSaveRetries sets the number of save retries.
func WithSaveRetries(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Client.SaveRetries = n
	}
}

// WithFallbackLocal enables direct store access when the server is down.
func WithFallbackLocal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Client.FallbackLocal = true
	}
}
