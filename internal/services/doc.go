// Package services defines shared utilities consumed by the dubbing stages and
// the external provider integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into retryable, permanent, alignment, and job-fatal categories.
//   - Retry classification shared by the translation and synthesis stages.
//
// Use these helpers when wiring new stage or provider code so retries and
// degradation stay uniform across the pipeline.
package services
