package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tasklist/internal/task"
	"tasklist/internal/taskaccess"
	"tasklist/internal/tasklist"
)

func newTaskCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newListCommand(ctx),
		newAddCommand(ctx),
		newDoneCommand(ctx),
		newPriorityCommand(ctx),
		newRemoveCommand(ctx),
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut, pendingOnly, completedOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withList(cmd, func(_ context.Context, list *tasklist.List, _ taskaccess.Session) error {
				tasks := filterTasks(list.Tasks(), pendingOnly, completedOnly)
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), tasks)
				}
				out := cmd.OutOrStdout()
				if len(tasks) == 0 {
					fmt.Fprintln(out, "No tasks")
					return nil
				}
				fmt.Fprintln(out, renderTaskTable(tasks, ctx.labels(), shouldColorize(out)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only show tasks that are not completed")
	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Only show completed tasks")
	cmd.MarkFlagsMutuallyExclusive("pending", "completed")
	return cmd
}

func filterTasks(tasks []task.Task, pendingOnly, completedOnly bool) []task.Task {
	if !pendingOnly && !completedOnly {
		return tasks
	}
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed == completedOnly {
			out = append(out, t)
		}
	}
	return out
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var date, priority string

	cmd := &cobra.Command{
		Use:   "add DESCRIPTION...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := tasklist.Draft{
				Description: strings.Join(args, " "),
				DueDate:     date,
				Priority:    task.PriorityNormal,
			}
			if strings.TrimSpace(priority) != "" {
				p, err := ctx.labels().ParsePriority(priority)
				if err != nil {
					return err
				}
				draft.Priority = p
			}
			return ctx.withList(cmd, func(runCtx context.Context, list *tasklist.List, _ taskaccess.Session) error {
				created, err := list.Create(runCtx, &draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s (due %s, %s)\n",
					created.ID, created.Description, created.DueDate, ctx.labels().Priority(created.Priority))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Due date (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority (low, normal, high)")
	return cmd
}

func newDoneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle a task's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withList(cmd, func(runCtx context.Context, list *tasklist.List, _ taskaccess.Session) error {
				if _, err := requireTask(list, id); err != nil {
					return err
				}
				if err := list.ToggleComplete(runCtx, id); err != nil {
					return err
				}
				updated, _ := requireTask(list, id)
				state := "pending"
				if updated.Completed {
					state = "completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %d marked %s\n", id, state)
				return nil
			})
		},
	}
}

func newPriorityCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "priority ID LEVEL",
		Short: "Change a task's priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			p, err := ctx.labels().ParsePriority(args[1])
			if err != nil {
				return err
			}
			return ctx.withList(cmd, func(runCtx context.Context, list *tasklist.List, _ taskaccess.Session) error {
				if _, err := requireTask(list, id); err != nil {
					return err
				}
				if err := list.ChangePriority(runCtx, id, p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %d priority set to %s\n", id, ctx.labels().Priority(p))
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return ctx.withList(cmd, func(runCtx context.Context, list *tasklist.List, _ taskaccess.Session) error {
				if _, err := requireTask(list, id); err != nil {
					return err
				}
				if err := list.Delete(runCtx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
				return nil
			})
		},
	}
}

func requireTask(list *tasklist.List, id int64) (task.Task, error) {
	tasks := list.Tasks()
	if i := task.Find(tasks, id); i >= 0 {
		return tasks[i], nil
	}
	return task.Task{}, fmt.Errorf("task %d not found", id)
}
