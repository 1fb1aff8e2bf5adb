package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"dubline/internal/config"
	"dubline/internal/logging"
	"dubline/internal/services"
	"dubline/internal/services/elevenlabs"
	"dubline/internal/services/llm"
	"dubline/internal/services/openai"
	"dubline/internal/synth"
	"dubline/internal/translate"
)

// configurable is implemented by clients that can report missing credentials.
type configurable interface {
	Configured() bool
}

// TranslationProviders builds the configured translation backends in
// fallback order. Backends without credentials are skipped with a warning.
func TranslationProviders(cfg *config.Config, logger *slog.Logger) ([]translate.Provider, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, StageTranslate, "providers", "config is nil", nil)
	}
	logger = nonNilLogger(logger)
	var providers []translate.Provider
	for _, name := range cfg.Translation.Providers {
		var p translate.Provider
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "llm":
			p = llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          cfg.LLM.Model,
				Referer:        cfg.LLM.Referer,
				Title:          cfg.LLM.Title,
				TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			})
		case "openai":
			p = newOpenAI(cfg)
		default:
			return nil, services.Wrap(services.ErrConfiguration, StageTranslate, "providers",
				fmt.Sprintf("unknown translation provider %q", name), nil)
		}
		if !usable(p) {
			logging.WarnWithContext(logger, "translation provider skipped", "provider_unconfigured",
				logging.String("provider", p.Name()),
				logging.String(logging.FieldErrorHint, "set the provider api_key or remove it from translation.providers"),
				logging.String(logging.FieldImpact, "provider not used for this run"),
			)
			continue
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, StageTranslate, "providers", "no translation provider has credentials", nil)
	}
	return providers, nil
}

// SpeechProviders builds the configured synthesis backends in fallback
// order. Backends without credentials are skipped with a warning.
func SpeechProviders(cfg *config.Config, logger *slog.Logger) ([]synth.Provider, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, StageSynthesize, "providers", "config is nil", nil)
	}
	logger = nonNilLogger(logger)
	var providers []synth.Provider
	for _, name := range cfg.Synthesis.Providers {
		var p synth.Provider
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "openai":
			p = newOpenAI(cfg)
		case "elevenlabs":
			p = elevenlabs.NewClient(elevenlabs.Config{
				APIKey:         cfg.ElevenLabs.APIKey,
				BaseURL:        cfg.ElevenLabs.BaseURL,
				ModelID:        cfg.ElevenLabs.ModelID,
				TimeoutSeconds: cfg.ElevenLabs.TimeoutSeconds,
			})
		default:
			return nil, services.Wrap(services.ErrConfiguration, StageSynthesize, "providers",
				fmt.Sprintf("unknown speech provider %q", name), nil)
		}
		if !usable(p) {
			logging.WarnWithContext(logger, "speech provider skipped", "provider_unconfigured",
				logging.String("provider", p.Name()),
				logging.String(logging.FieldErrorHint, "set the provider api_key or remove it from synthesis.providers"),
				logging.String(logging.FieldImpact, "provider not used for this run"),
			)
			continue
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, StageSynthesize, "providers", "no speech provider has credentials", nil)
	}
	return providers, nil
}

func newOpenAI(cfg *config.Config) *openai.Client {
	return openai.New(openai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		ChatModel:      cfg.OpenAI.ChatModel,
		SpeechModel:    cfg.OpenAI.SpeechModel,
		TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
	})
}

func usable(p any) bool {
	c, ok := p.(configurable)
	return !ok || c.Configured()
}

// newLimiter returns a limiter allowing rpm requests per minute, or nil when
// rpm is not positive.
func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
}

func nonNilLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return logging.NewNop()
	}
	return logger
}
