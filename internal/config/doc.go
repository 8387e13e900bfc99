// Package config loads, normalizes, and validates demtile configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and applies the DEMTILE_SOURCE_DIR and DEMTILE_WORK_DIR
// environment overrides. Callers receive absolute, cleaned directories and a
// canonical log format.
package config
