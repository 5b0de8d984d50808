// Package config loads, validates, and normalizes storyvault configuration.
//
// Configuration is a TOML file (default ~/.config/storyvault/config.toml)
// covering the cache directories, the remote CMS connection, download
// behavior, and logging. Load applies defaults first, then file values,
// then normalization (path expansion, env fallbacks) and validation, so a
// returned Config is always directly usable.
package config
