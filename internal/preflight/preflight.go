package preflight

import (
	"context"

	"tasklist/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// minFreeBytes is the free space below which the data volume check fails.
const minFreeBytes = 1 << 20

// RunStorage executes the filesystem checks for the configured data directory.
func RunStorage(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckFreeSpace("Data volume", cfg.Paths.DataDir, minFreeBytes),
	}
}

// RunAll executes the storage checks plus the endpoint reachability check.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := RunStorage(cfg)
	results = append(results, CheckServer(ctx, cfg.Client.ServerURL))
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
