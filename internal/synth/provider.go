package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dubline/internal/audio"
	"dubline/internal/services"
	"dubline/internal/voice"
)

// Provider renders text with a provider-specific voice ID.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text, voiceID string) (*audio.Track, error)
}

// Chain tries providers in order until one succeeds.
type Chain struct {
	providers []Provider
	catalog   *voice.Catalog
}

// NewChain builds a chain; nil providers are skipped.
func NewChain(catalog *voice.Catalog, providers ...Provider) *Chain {
	if catalog == nil {
		catalog = voice.DefaultCatalog()
	}
	c := &Chain{catalog: catalog}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// Name joins the provider names.
func (c *Chain) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ",")
}

// Len returns the number of providers.
func (c *Chain) Len() int {
	return len(c.providers)
}

// Synthesize renders text with v, mapping v onto each provider in turn. It
// returns the track and the name of the provider that produced it. When every
// provider fails the result is permanent only if every failure was.
func (c *Chain) Synthesize(ctx context.Context, text string, v voice.Profile) (*audio.Track, string, error) {
	if len(c.providers) == 0 {
		return nil, "", services.Wrap(services.ErrConfiguration, "synthesize", "chain", "no speech providers configured", nil)
	}
	var errs []error
	permanent := true
	for _, p := range c.providers {
		mapped, ok := c.catalog.FallbackVoice(v.ID, p.Name())
		if !ok {
			errs = append(errs, fmt.Errorf("%s: no voice for %s", p.Name(), v.ID))
			continue
		}
		track, err := p.Synthesize(ctx, text, mapped.ID)
		if err == nil {
			return track, p.Name(), nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		if services.IsRetryable(err) {
			permanent = false
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	// Flattened to text: one permanent member must not make the chain permanent.
	detail := "all providers failed: " + errors.Join(errs...).Error()
	if permanent {
		return nil, "", services.Wrap(services.ErrPermanent, "synthesize", "chain", detail, nil)
	}
	return nil, "", services.Wrap(services.ErrTransient, "synthesize", "chain", detail, nil)
}
