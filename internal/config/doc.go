// Package config loads, normalizes, and validates dubline configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY, OPENAI_API_KEY, and ELEVENLABS_API_KEY. The Config type
// centralizes the merge thresholds, translation and synthesis provider order,
// compositing format, and log settings a dubbing job needs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical provider names, and clear validation errors.
package config
