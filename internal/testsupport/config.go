package testsupport

import (
	"path/filepath"
	"testing"

	"dubline/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Provider keys are set to placeholder values so provider construction
// succeeds; tests inject fake providers rather than reaching the network.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.JobDB = filepath.Join(base, "jobs.db")
	cfgVal.LLM.APIKey = "test"
	cfgVal.OpenAI.APIKey = "test"
	cfgVal.ElevenLabs.APIKey = "test"
	cfgVal.Translation.RequestsPerMinute = 0
	cfgVal.Synthesis.RequestsPerMinute = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLanguages overrides the source and target languages.
func WithLanguages(source, target string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Languages.Source = source
		b.cfg.Languages.Target = target
	}
}

// WithAudioFormat overrides the compositing format.
func WithAudioFormat(sampleRate, channels int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audio.SampleRate = sampleRate
		b.cfg.Audio.Channels = channels
	}
}

// WithOriginalGain overrides the original track level.
func WithOriginalGain(gain float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audio.OriginalGain = gain
	}
}

// WithWorkers sets the translation and synthesis worker counts.
func WithWorkers(translation, synthesis int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Translation.Workers = translation
		b.cfg.Synthesis.Workers = synthesis
	}
}

// WithVoiceProvider sets the provider voices are assigned from.
func WithVoiceProvider(provider string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Voices.Provider = provider
	}
}

// WithoutCredentials clears every provider key.
func WithoutCredentials() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.APIKey = ""
		b.cfg.OpenAI.APIKey = ""
		b.cfg.ElevenLabs.APIKey = ""
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
