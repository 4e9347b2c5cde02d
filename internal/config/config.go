package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Server contains configuration for the task store endpoint.
type Server struct {
	Bind         string `toml:"bind"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Storage selects and tunes the persistence backend.
type Storage struct {
	// Backend is "file" (single JSON document) or "sqlite".
	Backend  string `toml:"backend"`
	FileName string `toml:"file_name"`
	// AtomicWrites replaces the file via temp file + rename instead of
	// overwriting it in place.
	AtomicWrites bool `toml:"atomic_writes"`
	// SeedEmpty writes an empty collection on startup when none exists.
	SeedEmpty bool `toml:"seed_empty"`
}

// Client contains configuration for the CLI and interactive view.
type Client struct {
	ServerURL      string `toml:"server_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// OnSaveFailure is "rollback" or "keep".
	OnSaveFailure    string `toml:"on_save_failure"`
	SaveRetries      int    `toml:"save_retries"`
	RetryBaseDelayMS int    `toml:"retry_base_delay_ms"`
	RetryMaxDelayMS  int    `toml:"retry_max_delay_ms"`
	FallbackLocal    bool   `toml:"fallback_local"`
	Locale           string `toml:"locale"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for tasklist.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Server: endpoint bind address and request limits
//   - Storage: persistence backend selection
//   - Client: endpoint location, save failure policy, retries, locale
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Server  Server  `toml:"server"`
	Storage Storage `toml:"storage"`
	Client  Client  `toml:"client"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tasklist.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DataFilePath returns the location of the persisted collection for the
// file backend, or of the database for the sqlite backend.
func (c *Config) DataFilePath() string {
	name := c.Storage.FileName
	if c.Storage.Backend == BackendSQLite {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".db"
	}
	return filepath.Join(c.Paths.DataDir, name)
}

// LockPath returns the daemon single-instance lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "tasklistd.lock")
}

// LogFilePath returns the daemon log file path.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "tasklistd.log")
}

// ClientTimeout returns the HTTP timeout for client requests.
func (c *Config) ClientTimeout() time.Duration {
	return time.Duration(c.Client.TimeoutSeconds) * time.Second
}

// RetryBaseDelay returns the first backoff delay between save retries.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Client.RetryBaseDelayMS) * time.Millisecond
}

// RetryMaxDelay caps the backoff delay between save retries.
func (c *Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.Client.RetryMaxDelayMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
