package main

import (
	"context"

	"github.com/spf13/cobra"

	"tasklist/internal/taskaccess"
	"tasklist/internal/tasklist"
	"tasklist/internal/ui"
)

var runTUI = ui.RunTUI

func newTUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit tasks interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The TUI runs the first load itself.
			return ctx.withSession(cmd, func(runCtx context.Context, list *tasklist.List, session taskaccess.Session) error {
				return runTUI(runCtx, list, ctx.labels(), session.Target)
			})
		},
	}
}
