// Package llm provides an OpenRouter-compatible chat client used as a
// translation provider.
//
// Complete sends the translator's system and user prompts and returns the
// model's text. The client retries HTTP 408/429/5xx responses, empty
// completions, and network timeouts with exponential backoff (base 1s, max
// 10s, 2 attempts by default; the translator adds its own attempts on top).
// Returned errors are tagged with services.ErrPermanent or
// services.ErrTransient so the translator knows whether to retry.
//
// HealthCheck sends a tiny JSON request and is used by `dubline doctor`.
package llm
