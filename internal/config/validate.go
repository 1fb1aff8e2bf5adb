package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	knownTranslationProviders = []string{"llm", "openai"}
	knownSynthesisProviders   = []string{"openai", "elevenlabs"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLanguages(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLanguages() error {
	if c.Languages.Source == "" {
		return errors.New("languages.source must be set")
	}
	if c.Languages.Target == "" {
		return errors.New("languages.target must be set")
	}
	return nil
}

func (c *Config) validateMerge() error {
	m := c.Merge
	if m.MaxDurationSeconds <= 0 || m.MinDurationSeconds < 0 {
		return errors.New("merge durations must be positive")
	}
	if m.MinDurationSeconds > m.MaxDurationSeconds {
		return errors.New("merge.min_duration_seconds must not exceed merge.max_duration_seconds")
	}
	if m.MaxWords <= 0 || m.MinWords < 0 {
		return errors.New("merge word limits must be positive")
	}
	if m.MinWords > m.MaxWords {
		return errors.New("merge.min_words must not exceed merge.max_words")
	}
	if m.MaxGapSeconds < 0 {
		return errors.New("merge.max_gap_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	t := c.Translation
	if len(t.Providers) == 0 {
		return errors.New("translation.providers must list at least one provider")
	}
	for _, name := range t.Providers {
		if !slices.Contains(knownTranslationProviders, name) {
			return fmt.Errorf("translation.providers: unknown provider %q", name)
		}
	}
	if t.Workers < 1 {
		return errors.New("translation.workers must be at least 1")
	}
	if t.MaxAttempts < 1 {
		return errors.New("translation.max_attempts must be at least 1")
	}
	if t.BackoffSeconds < 0 {
		return errors.New("translation.backoff_seconds must not be negative")
	}
	if t.ContextWindow < 0 {
		return errors.New("translation.context_window must not be negative")
	}
	if t.RequestsPerMinute < 0 {
		return errors.New("translation.requests_per_minute must not be negative")
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	if len(c.Synthesis.Providers) == 0 {
		return errors.New("synthesis.providers must list at least one provider")
	}
	for _, name := range c.Synthesis.Providers {
		if !slices.Contains(knownSynthesisProviders, name) {
			return fmt.Errorf("synthesis.providers: unknown provider %q", name)
		}
	}
	if !slices.Contains(knownSynthesisProviders, c.Voices.Provider) {
		return fmt.Errorf("voices.provider: unknown provider %q", c.Voices.Provider)
	}
	if c.Synthesis.Workers < 1 {
		return errors.New("synthesis.workers must be at least 1")
	}
	if c.Synthesis.RequestsPerMinute < 0 {
		return errors.New("synthesis.requests_per_minute must not be negative")
	}
	return nil
}

func (c *Config) validateAudio() error {
	a := c.Audio
	if a.SampleRate <= 0 || a.SampleRate%1000 != 0 {
		return fmt.Errorf("audio.sample_rate must be a positive multiple of 1000, got %d", a.SampleRate)
	}
	if a.Channels < 1 || a.Channels > 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", a.Channels)
	}
	if a.OriginalGain < 0 || a.OriginalGain > 1 {
		return errors.New("audio.original_gain must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
