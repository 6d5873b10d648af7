package preflight

import (
	"context"

	"abxsurvey/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunAll executes all applicable preflight checks for the given config.
// The marketplace check runs only when market is non-nil.
func RunAll(ctx context.Context, cfg *config.Config, market Balancer) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckTemplates(cfg.Paths.AssetsDir),
		CheckAudio(cfg),
		CheckCredentials(cfg),
	}
	if cfg.Storage.Backend == config.BackendLocal {
		results = append(results, CheckDirectoryAccess("Local object store", cfg.Storage.LocalDir))
	}
	if market != nil {
		results = append(results, CheckMarketplace(ctx, market))
	}
	return results
}
