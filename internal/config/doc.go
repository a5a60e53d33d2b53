// Package config provides configuration for the capture export server and CLI.
//
// # Configuration Sources
//
// Values are resolved in order of increasing precedence:
//
//	1. Default() values
//	2. A YAML file (config.yaml or configs/config.yaml)
//	3. Environment variables with the CAPTURE_ prefix
//
// # Environment Variables
//
// Nested sections map to underscore separated names:
//
//	CAPTURE_SERVER_PORT=8080
//	CAPTURE_LOGGING_LEVEL=debug
//	CAPTURE_EXPORT_LOCALE=de-DE
//	CAPTURE_EXPORT_TIMEZONE=Europe/Berlin
//	CAPTURE_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Validation
//
// Load rejects out of range ports and timeouts, unknown locales and time
// zones, and unsupported telemetry exporters.
package config
