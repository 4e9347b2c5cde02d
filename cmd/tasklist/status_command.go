package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tasklist/internal/api"
	"tasklist/internal/client"
	"tasklist/internal/preflight"
	"tasklist/internal/store"
)

type statusReport struct {
	ConfigPath   string              `json:"configPath"`
	ConfigExists bool                `json:"configExists"`
	ServerURL    string              `json:"serverUrl"`
	Running      bool                `json:"running"`
	ServerError  string              `json:"serverError,omitempty"`
	Daemon       *api.StatusResponse `json:"daemon,omitempty"`
	Storage      store.Info          `json:"storage"`
	StorageError string              `json:"storageError,omitempty"`
	Checks       []preflight.Result  `json:"checks"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server and storage status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx := cmd.Context()
			report := statusReport{
				ConfigPath:   ctx.configPath,
				ConfigExists: ctx.configExists,
				ServerURL:    cfg.Client.ServerURL,
			}

			if !ctx.flags.direct {
				c, err := client.New(cfg.Client.ServerURL, cfg.ClientTimeout())
				if err == nil {
					var resp api.StatusResponse
					if resp, err = c.Status(runCtx); err == nil {
						report.Running = true
						report.Daemon = &resp
						report.Storage = resp.Storage
						report.StorageError = resp.StorageError
					}
				}
				if err != nil && !client.IsAPIUnavailable(err) {
					report.ServerError = err.Error()
				}
			}

			if !report.Running {
				st, err := store.Open(cfg, ctx.loggerFor(cmd))
				if err != nil {
					report.StorageError = err.Error()
				} else {
					info, err := st.Describe(runCtx)
					report.Storage = info
					if err != nil {
						report.StorageError = err.Error()
					}
					st.Close()
				}
			}
			report.Checks = preflight.RunStorage(cfg)

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			out := cmd.OutOrStdout()
			for _, line := range statusLines(report, shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func statusLines(report statusReport, colorize bool) []string {
	var lines []string

	lines = append(lines, renderSectionHeader("Configuration", colorize)...)
	if report.ConfigExists {
		lines = append(lines, renderStatusLine("Config file", statusOK, report.ConfigPath, colorize))
	} else {
		lines = append(lines, renderStatusLine("Config file", statusInfo, report.ConfigPath+" (not found, using defaults)", colorize))
	}
	lines = append(lines, renderStatusLine("Server URL", statusInfo, report.ServerURL, colorize))

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Server", colorize)...)
	switch {
	case report.Running && report.Daemon != nil:
		detail := fmt.Sprintf("Running (pid %d, bind %s", report.Daemon.PID, report.Daemon.Bind)
		if report.Daemon.StartedAt != "" {
			detail += ", since " + report.Daemon.StartedAt
		}
		lines = append(lines, renderStatusLine("tasklistd", statusOK, detail+")", colorize))
	case report.ServerError != "":
		lines = append(lines, renderStatusLine("tasklistd", statusError, report.ServerError, colorize))
	default:
		lines = append(lines, renderStatusLine("tasklistd", statusWarn, "Not running", colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Storage", colorize)...)
	lines = append(lines, storageLine(report, colorize))
	lines = append(lines, checkLines(report.Checks, colorize)...)
	return lines
}

func storageLine(report statusReport, colorize bool) string {
	info := report.Storage
	label := "Storage"
	if info.Backend != "" {
		label = "Storage (" + info.Backend + ")"
	}
	switch {
	case report.StorageError != "":
		return renderStatusLine(label, statusError, report.StorageError, colorize)
	case !info.Exists:
		return renderStatusLine(label, statusWarn, strings.TrimSpace(info.Path+" (no tasks stored yet)"), colorize)
	}
	detail := fmt.Sprintf("%s (%d bytes", info.Path, info.SizeBytes)
	if !info.ModifiedAt.IsZero() {
		detail += ", modified " + info.ModifiedAt.Local().Format(time.DateTime)
	}
	return renderStatusLine(label, statusOK, detail+")", colorize)
}
