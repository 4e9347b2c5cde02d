// Package daemon runs the long-lived task store endpoint.
//
// It wires configuration, the task store, and the HTTP API into a single
// lifecycle with flock-based locking to prevent multiple instances on the
// same data directory. Request handling lives in api_server.go; this file's
// siblings cover startup, shutdown, and diagnostics.
package daemon
