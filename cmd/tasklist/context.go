package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tasklist/internal/config"
	"tasklist/internal/locale"
	"tasklist/internal/logging"
	"tasklist/internal/taskaccess"
	"tasklist/internal/tasklist"
)

type globalFlags struct {
	config  string
	server  string
	direct  bool
	verbose bool
}

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if server := strings.TrimSpace(c.flags.server); server != "" {
			cfg.Client.ServerURL = strings.TrimRight(server, "/")
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) loggerFor(cmd *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewCLI(c.config, c.flags.verbose)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "init logger: %v\n", err)
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) labels() locale.Labels {
	if c.config == nil {
		return locale.New("")
	}
	return locale.New(c.config.Client.Locale)
}

// withList opens a task session, loads the collection, and hands the list to
// fn. The session is closed when fn returns.
func (c *commandContext) withList(cmd *cobra.Command, fn func(context.Context, *tasklist.List, taskaccess.Session) error) error {
	return c.withSession(cmd, func(ctx context.Context, list *tasklist.List, session taskaccess.Session) error {
		if err := list.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, list, session)
	})
}

// withSession is withList without the initial load.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(context.Context, *tasklist.List, taskaccess.Session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := c.loggerFor(cmd)

	session, err := taskaccess.OpenWithFallback(ctx, cfg, logger, c.flags.direct)
	if err != nil {
		return fmt.Errorf("%w; start the server with `tasklist serve` or pass --direct", err)
	}
	defer session.Close()

	return fn(ctx, tasklist.New(session.Backend, tasklist.OptionsFromConfig(cfg, logger)), session)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
