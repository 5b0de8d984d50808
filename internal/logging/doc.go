// Package logging builds the slog loggers used across storyvault.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for machine consumption. Attr helpers and standardized field
// keys keep structured output consistent between the cache manager, the CMS
// client, and the CLI.
package logging
