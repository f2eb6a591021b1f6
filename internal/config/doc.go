// Package config loads, normalizes, and validates cmtdata configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and validates the inversion parameter list
// against the closed set of known derivative parameters. Obtain settings
// through this package so downstream code receives sanitized paths and clear
// validation errors.
package config
