package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnvironment()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeStorage()
	c.normalizeClient()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnvironment() {
	if value, ok := os.LookupEnv("TASKLIST_SERVER_URL"); ok && strings.TrimSpace(value) != "" {
		c.Client.ServerURL = value
	}
	if value, ok := os.LookupEnv("TASKLIST_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = value
	}
	if value, ok := os.LookupEnv("TASKLIST_BIND"); ok && strings.TrimSpace(value) != "" {
		c.Server.Bind = value
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = defaultMaxBodyBytes
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultBackend
	}
	c.Storage.FileName = strings.TrimSpace(c.Storage.FileName)
	if c.Storage.FileName == "" {
		c.Storage.FileName = defaultFileName
	}
}

func (c *Config) normalizeClient() {
	c.Client.ServerURL = strings.TrimRight(strings.TrimSpace(c.Client.ServerURL), "/")
	if c.Client.ServerURL == "" {
		c.Client.ServerURL = defaultServerURL
	}
	if c.Client.TimeoutSeconds == 0 {
		c.Client.TimeoutSeconds = defaultTimeoutSeconds
	}
	c.Client.OnSaveFailure = strings.ToLower(strings.TrimSpace(c.Client.OnSaveFailure))
	if c.Client.OnSaveFailure == "" {
		c.Client.OnSaveFailure = defaultOnSaveFailure
	}
	if c.Client.RetryBaseDelayMS == 0 {
		c.Client.RetryBaseDelayMS = defaultRetryBaseDelayMS
	}
	if c.Client.RetryMaxDelayMS == 0 {
		c.Client.RetryMaxDelayMS = defaultRetryMaxDelayMS
	}
	c.Client.Locale = strings.TrimSpace(c.Client.Locale)
	if c.Client.Locale == "" {
		c.Client.Locale = defaultLocale
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
		c.Logging.Format = "json"
	default:
		c.Logging.Format = format
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
