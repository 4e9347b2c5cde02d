// Package api defines the wire-format types shared by the task store
// endpoint and its HTTP client.
//
// The collection itself travels as the persisted JSON array and has no
// envelope. Everything else the endpoint returns (acknowledgements, errors,
// health and storage diagnostics) is described here.
package api
