// Package config loads, normalizes, and validates seoflow configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for
// credentials (loaded from a .env file when present). The Config type
// centralizes every knob the daemon and CLI need: provider credentials,
// workflow thresholds and quotas, notification settings, and the dry-run
// toggle.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors. A
// loaded Config is treated as immutable for the lifetime of the process.
package config
