// Package config loads, normalizes, and validates the strollcast TOML
// configuration. Load applies repository defaults first, then the config
// file, then environment fallbacks for secrets.
package config
