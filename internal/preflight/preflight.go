package preflight

import (
	"trimveo/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable preflight check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}

	if cfg.Paths.ContentDir != "" {
		results = append(results, CheckReadableDirectory("Content directory", cfg.Paths.ContentDir))
	}

	if len(cfg.Formats.Approved) > 0 {
		results = append(results, CheckInlineFormats(cfg.Formats.Approved))
	} else {
		results = append(results, CheckFormatList(cfg.LTSFListPath()))
	}

	if cfg.Paths.TemplateDir != "" {
		results = append(results, CheckTemplates(cfg.Paths.TemplateDir))
	}

	if cfg.Package.Sign {
		results = append(results, CheckCredentials(cfg.Signing.PFXFile, cfg.Signing.PFXPassword))
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
