package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dubline/internal/services"
)

// Provider returns a translation for a fully composed prompt.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Chain tries providers in order; the first success wins.
type Chain struct {
	providers []Provider
}

// NewChain builds a chain from the non-nil providers given.
func NewChain(providers ...Provider) *Chain {
	kept := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Chain{providers: kept}
}

// Name lists the chained provider names.
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, ",")
}

// Len returns the number of chained providers.
func (c *Chain) Len() int {
	return len(c.providers)
}

// Complete returns the first successful provider response. When every
// provider fails permanently the errors are joined so callers can still
// classify them with errors.Is; if any failure was retryable the result is
// a transient error.
func (c *Chain) Complete(ctx context.Context, system, user string) (string, error) {
	if len(c.providers) == 0 {
		return "", errors.New("translate: no providers configured")
	}
	var (
		errs      []error
		retryable bool
	)
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := p.Complete(ctx, system, user)
		if err == nil {
			return out, nil
		}
		if services.IsRetryable(err) {
			retryable = true
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	joined := errors.Join(errs...)
	if retryable {
		// Flattened to text: one permanent member must not make the chain permanent.
		return "", services.Wrap(services.ErrTransient, "translate", "chain", joined.Error(), nil)
	}
	return "", joined
}
