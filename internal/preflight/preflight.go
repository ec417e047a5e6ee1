package preflight

import (
	"context"

	"fileorg/internal/config"
	"fileorg/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// The model endpoint is only checked in content mode.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryReadable("Input directory", cfg.Paths.InputDir))
	results = append(results, CheckOutputRoot("Output directory", cfg.Paths.OutputDir))

	if cfg.Organize.Journal && cfg.Paths.DataDir != "" {
		results = append(results, CheckOutputRoot("Journal directory", cfg.Paths.DataDir))
	}

	if cfg.Organize.Mode == config.ModeContent {
		results = append(results, CheckLLM(ctx, "LLM endpoint", cfg.GetLLM()))
	}

	return results
}

// Require runs the filesystem checks that must pass before planning and
// returns the first failure as a precondition error.
func Require(cfg *config.Config) error {
	if cfg == nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "require", "config missing", nil)
	}
	input := CheckDirectoryReadable("input directory", cfg.Paths.InputDir)
	if !input.Passed {
		return services.Wrap(services.ErrValidation, "preflight", "input", input.Detail, nil)
	}
	output := CheckOutputRoot("output directory", cfg.Paths.OutputDir)
	if !output.Passed {
		return services.Wrap(services.ErrConfiguration, "preflight", "output", output.Detail, nil)
	}
	return nil
}
