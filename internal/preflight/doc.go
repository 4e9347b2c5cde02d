// Package preflight provides readiness checks for the data directory, the
// volume it lives on, and the task store endpoint.
//
// The daemon runs the filesystem checks at startup and reports them from
// /api/status; the CLI "tasklist status" command adds the endpoint check.
package preflight
