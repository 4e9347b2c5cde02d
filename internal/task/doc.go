// Package task defines the task record persisted by the store and mutated by
// the client, together with its priority enum, due-date parsing, and id
// generation.
package task
