package preflight

import (
	"context"
	"path/filepath"
	"slices"

	"dubline/internal/config"
	"dubline/internal/voice"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
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

// RunLocal executes the checks that need no network access.
func RunLocal(cfg *config.Config, catalog *voice.Catalog) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Job database directory", filepath.Dir(cfg.Paths.JobDB)),
		CheckVoices(catalog, cfg.Voices.Provider, cfg.Voices.DefaultVoice),
	}
}

// RunAll executes the local checks plus one check per configured provider.
// A provider used for both translation and synthesis is checked once.
func RunAll(ctx context.Context, cfg *config.Config, catalog *voice.Catalog) []Result {
	if cfg == nil {
		return nil
	}

	results := RunLocal(cfg, catalog)

	var providers []string
	for _, name := range append(append([]string(nil), cfg.Translation.Providers...), cfg.Synthesis.Providers...) {
		if !slices.Contains(providers, name) {
			providers = append(providers, name)
		}
	}
	for _, name := range providers {
		switch name {
		case "llm":
			results = append(results, CheckLLM(ctx, "Translation LLM", cfg.LLM))
		case "openai":
			results = append(results, CheckOpenAI(ctx, cfg.OpenAI))
		case "elevenlabs":
			results = append(results, CheckElevenLabs(cfg.ElevenLabs))
		}
	}
	return results
}
