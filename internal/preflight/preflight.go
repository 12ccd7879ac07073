// Package preflight verifies that the environment is usable before the
// daemon starts serving: working directories are writable and, outside
// dry-run mode, the configured providers are reachable.
package preflight

import (
	"context"
	"strings"

	"seoflow/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for the given config. Provider
// reachability is only checked in live mode; dry-run needs no accounts.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	if cfg.DryRun {
		return results
	}

	results = append(results, CheckEndpoint(ctx, "OpenAI API", cfg.OpenAI.BaseURL))
	results = append(results, CheckEndpoint(ctx, "DataForSEO API", cfg.DataForSEO.BaseURL))
	if cfg.WordPress.URL != "" {
		results = append(results, CheckEndpoint(ctx, "WordPress", cfg.WordPress.URL))
	}
	return results
}

// Failures filters results down to the checks that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Describe renders results as a single line for error messages and logs.
func Describe(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, result := range results {
		parts = append(parts, result.Name+": "+result.Detail)
	}
	return strings.Join(parts, "; ")
}
