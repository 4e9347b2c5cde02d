// Package config loads, normalizes, and validates tasklist configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// TASKLIST_SERVER_URL. Both the daemon and the CLI obtain settings here so
// they agree on where the collection lives and how to reach the endpoint.
package config
