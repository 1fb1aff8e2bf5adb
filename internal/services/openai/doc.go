// Package openai adapts github.com/sashabaranov/go-openai to the dubbing
// pipeline. A single Client serves both roles: Complete implements the
// translation provider over chat completions and Synthesize implements the
// speech provider over the /audio/speech endpoint, requesting raw 24 kHz mono
// PCM so no decoder beyond audio.FromPCM16 is needed.
//
// Failures are tagged with services.ErrPermanent (4xx other than 408/429,
// missing credentials) or services.ErrTransient (everything else).
package openai
