// Package ui provides the interactive terminal view of the task list.
package ui
