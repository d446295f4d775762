// Package config provides configuration loading, validation, and management
// for sqlferry.
//
// # Overview
//
// Configuration is loaded from a YAML file and can be overridden by
// environment variables. The loading sequence is:
//
//  1. Parse YAML from the configuration file
//  2. Apply default values for unset fields
//  3. Apply environment variable overrides (SQLFERRY_* variables)
//  4. Validate the final configuration
//
// All validation errors are collected and reported together rather than
// failing on the first error, so a misconfigured deployment can be fixed
// in one pass.
//
// # Sections
//
// The configuration has three sections:
//
//   - source: the data source connection string and per-vendor settings
//   - export: defaults applied to export requests that omit them
//   - telemetry: logging and metrics
//
// # Example
//
//	source:
//	  connection: "postgresql://readonly@warehouse.internal:5432/analytics"
//	export:
//	  default_batch_size: 100000
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//	    listen_address: ":9090"
package config
