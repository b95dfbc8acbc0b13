// Package cli provides shared utilities for the vocalis command-line
// tool.
//
// This package includes:
//   - Configuration management (named endpoint contexts)
//   - Output formatting (JSON, YAML, raw)
//   - Request file loading (YAML/JSON)
//   - Terminal styling for the live transcript view
//
// Configuration is stored under ~/.vocalis/, supporting multiple
// contexts similar to kubectl.
package cli
