// Package config loads, normalizes, and validates pptx-translator
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AWS_REGION and OPENROUTER_API_KEY. The Config type centralizes every knob the
// CLI needs to pick translation and notes backends, so the pipeline itself
// never reads the environment.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical backend names, and clear validation errors.
package config
