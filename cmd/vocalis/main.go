// Package main provides the vocalis CLI tool.
//
// Usage:
//
//	vocalis [flags] <command> [args]
//
// Commands:
//
//	run       - Run a live voice session
//	sessions  - Inspect, export and delete archived sessions
//	config    - Configuration management
//	version   - Print version information
//
// Configuration:
//
//	The CLI stores configuration in ~/.vocalis/
//	Use 'vocalis config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/praxislabs/vocalis/cmd/vocalis/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
