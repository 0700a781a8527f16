// Package config loads, normalizes, and validates converter configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TRIMVEO_PFX_PASSWORD. The Config type centralizes every knob the CLI and the
// conversion runner need: where packages and reports are written, where
// content, support and template files live, how packages are hashed and
// signed, and how input exports are decoded.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical hash algorithm names, and clear validation errors.
package config
