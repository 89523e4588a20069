// Package config provides configuration loading, merging, and validation
// facilities for the application.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Defaults
//  2. Environment variables (KEYCOLL_ prefix)
//  3. Command-line flags of the subcommand
//  4. JSON config file
//
// The main entry point is [GetStructuredConfig].
package config
