package api

import (
	"tasklist/internal/preflight"
	"tasklist/internal/store"
)

// Endpoint paths.
const (
	TodosPath  = "/api/todos"
	StatusPath = "/api/status"
	HealthPath = "/healthz"
)

// RequestIDHeader carries the request correlation identifier.
const RequestIDHeader = "X-Request-Id"

// Response messages.
const (
	MessageUpdated        = "Todos updated successfully"
	MessageInternalError  = "Internal Server Error"
	MessageBadRequest     = "Bad Request"
	MessageEntityTooLarge = "Payload Too Large"
)

// MessageResponse is the body of replace-all acknowledgements and of every
// JSON error.
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is returned by the health probe.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// StatusResponse reports daemon and storage diagnostics.
type StatusResponse struct {
	PID          int                `json:"pid"`
	Bind         string             `json:"bind"`
	LockFilePath string             `json:"lockFilePath"`
	StartedAt    string             `json:"startedAt"`
	Storage      store.Info         `json:"storage"`
	StorageError string             `json:"storageError,omitempty"`
	FreeBytes    uint64             `json:"freeBytes"`
	Checks       []preflight.Result `json:"checks"`
}
