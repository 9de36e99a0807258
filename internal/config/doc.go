// Package config provides centralized configuration management for the
// liftline analysis service. It handles loading configuration from multiple
// sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern LIFTLINE_* for namespacing,
// with nested sections joined by underscores:
//
//	LIFTLINE_SERVER_PORT=8080
//	LIFTLINE_LOGGING_LEVEL=info
//	LIFTLINE_ANALYSIS_RULES_FILE=configs/rules.yaml
//	LIFTLINE_ANALYSIS_MAX_UPLOAD_BYTES=20971520
//	LIFTLINE_OBSERVABILITY_METRICS_ENABLED=true
//
// # Configuration File
//
// When no explicit path is given, Load looks for config.yaml in the working
// directory and then under configs/. The file overlays the defaults section
// by section:
//
//	server:
//	  host: 0.0.0.0
//	  port: 8080
//	analysis:
//	  rules_file: configs/rules.yaml
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- The server port and timeouts are within acceptable ranges
//	- CORS has at least one allowed origin when enabled
//	- The upload size limit is positive
//
// Validation also normalizes the logging section: the format is always JSON
// and unknown output targets fall back to stdout.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Commands that accept a -config flag use LoadFrom with the explicit path
// instead.
package config
