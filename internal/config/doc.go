// Package config loads, normalizes, and validates matchdata configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and applies MATCHDATA_* environment overrides, optionally
// sourced from a .env file. Always obtain settings through this package so
// downstream code receives absolute paths and canonical log settings.
package config
