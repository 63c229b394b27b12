// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads Chaperone configuration.
//
// Configuration comes from a single YAML file specified by:
//   - the CHAPERONE_CONFIG environment variable, or
//   - the --config flag passed to a command
//
// There are no fallbacks or automatic discovery. Environment variables
// never override file values; the only expansion performed is ${HOME}
// and similar path variables for portability. The file may contain
// environment-specific sections (development, staging, production)
// that override base values when the environment matches.
package config
