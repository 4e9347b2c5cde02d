// Package client talks to the task store endpoint over HTTP.
//
// Fetch and Save move the whole collection; Health and Status expose the
// daemon's diagnostic endpoints. Transport failures can be recognised with
// IsAPIUnavailable so callers can fall back to direct store access.
package client
