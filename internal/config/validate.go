package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateClient(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind %q: %w", c.Server.Bind, err)
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New("server.max_body_bytes must be positive")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.Storage.Backend)
	}
	if filepath.Base(c.Storage.FileName) != c.Storage.FileName || strings.ContainsAny(c.Storage.FileName, `/\`) {
		return fmt.Errorf("storage.file_name must be a bare file name, got %q", c.Storage.FileName)
	}
	return nil
}

func (c *Config) validateClient() error {
	parsed, err := url.Parse(c.Client.ServerURL)
	if err != nil {
		return fmt.Errorf("client.server_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("client.server_url must use http or https, got %q", c.Client.ServerURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("client.server_url is missing a host: %q", c.Client.ServerURL)
	}
	if c.Client.TimeoutSeconds < 0 {
		return errors.New("client.timeout_seconds must be positive")
	}
	switch c.Client.OnSaveFailure {
	case SaveFailureRollback, SaveFailureKeep:
	default:
		return fmt.Errorf("client.on_save_failure must be %q or %q, got %q", SaveFailureRollback, SaveFailureKeep, c.Client.OnSaveFailure)
	}
	if c.Client.SaveRetries < 0 {
		return errors.New("client.save_retries must be zero or greater")
	}
	if c.Client.RetryBaseDelayMS < 0 || c.Client.RetryMaxDelayMS < 0 {
		return errors.New("client retry delays must be zero or greater")
	}
	if c.Client.RetryMaxDelayMS < c.Client.RetryBaseDelayMS {
		return errors.New("client.retry_max_delay_ms must be >= client.retry_base_delay_ms")
	}
	if _, err := language.Parse(c.Client.Locale); err != nil {
		return fmt.Errorf("client.locale %q: %w", c.Client.Locale, err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
