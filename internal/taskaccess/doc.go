// Package taskaccess selects how the task list client reaches storage:
// through the tasklistd HTTP endpoint, or directly against the configured
// store when the daemon is not running.
package taskaccess
