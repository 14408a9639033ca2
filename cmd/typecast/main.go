// Package main is the entry point for the typecast CLI.
//
// typecast can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	typecast watch -c config.yaml     # Start the overlay
//	typecast watch --url URL          # Start with defaults
//	typecast validate -c config.yaml  # Validate configuration
//	typecast version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "typecast",
	Short: "A typewriter overlay for AI responses",
	Long: `typecast polls an HTTP endpoint for the latest AI response and plays each
new response as a typewriter reveal followed by a slow fade.

Quick start:
  1. Run a source that serves {"response": "..."} (see example/cmd/mocksource)
  2. Run: typecast watch --url http://localhost:5001/latest_response
  3. Add http://localhost:8080/overlay as a browser source

Example config:
  port: 8080
  poll_interval: 2s
  source:
    url: http://localhost:5001/latest_response
    field: response`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this typecast binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "typecast %s\n", version)
		_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
		_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
