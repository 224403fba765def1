package preflight

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"pptx-translator/internal/config"
	"pptx-translator/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Target names the files one run reads and writes.
type Target struct {
	Input  string
	Output string
}

// Options selects the optional, network-bound checks.
type Options struct {
	// Remote probes the selected backends (LLM health check, AWS credentials).
	Remote bool
}

// RunAll executes all applicable preflight checks for cfg and target.
func RunAll(ctx context.Context, cfg *config.Config, target Target, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckInputFile(target.Input))
	if target.Output != "" {
		results = append(results, CheckDirectoryAccess("Output directory", filepath.Dir(target.Output)))
		results = append(results, CheckDistinctOutput(target.Input, target.Output))
	}
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if cfg.UsesLLM() {
		if opts.Remote {
			results = append(results, CheckLLM(ctx, "LLM endpoint", cfg.LLM))
		} else {
			results = append(results, CheckLLMKey(cfg.LLM))
		}
	}
	if cfg.UsesAWS() {
		results = append(results, CheckAWS(ctx, cfg.AWS, opts.Remote))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Err folds failed results into one configuration error, or nil.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, len(failed))
	for i, r := range failed {
		parts[i] = fmt.Sprintf("%s: %s", r.Name, r.Detail)
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(parts, "; "), nil)
}
