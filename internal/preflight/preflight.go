package preflight

import (
	"context"
	"path/filepath"

	"takeoutscout/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every check that applies to cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Discoveries directory", cfg.Paths.DiscoveriesDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	// The hash database may live outside the state directory.
	dbDir := filepath.Dir(cfg.Paths.HashDBPath)
	if dbDir != cfg.Paths.StateDir {
		results = append(results, CheckDirectoryAccess("Hash database directory", dbDir))
	}
	results = append(results,
		CheckFreeSpace("State free space", cfg.Paths.StateDir, MinFreeBytes),
		CheckHashDatabase(ctx, cfg.Paths.HashDBPath),
	)
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
