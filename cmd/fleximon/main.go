// Package main is the entry point for the fleximon CLI.
//
// Fleximon can be run either as a library (SDK) or as a standalone binary
// configured by files. This CLI provides the standalone binary approach.
//
// Usage:
//
//	fleximon serve -c fleximon.yaml    # Start the dashboard
//	fleximon validate -c fleximon.yaml # Validate configuration
//	fleximon version                   # Show version info
//
// Without -c, environments.json and columns.json are read from the working
// directory and every other setting keeps its default.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fleximon/fleximon/config"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "fleximon",
	Short: "A live dashboard aggregating Sensu events across environments",
	Long: `Fleximon polls the /events API of one or more Sensu environments,
classifies every event by severity and publishes a status summary, the
warning and critical client lists and a configurable events table to a
live web dashboard.

Quick start:
  1. Create environments.json:
       {"config": {"prod": {"host": "sensu.prod", "port": "4567", "user": "", "password": ""}}}
  2. Create columns.json:
       {"config": {"default": ["hostname", "check", "output"]}}
  3. Run: fleximon serve
  4. Open http://localhost:8080 in your browser`,
}

// Execute runs the root command.
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
	Long:  `Print the version, commit hash, and build date of this fleximon binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fleximon %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the main configuration file, or the defaults plus the
// environments and columns files of the working directory when path is
// empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	cfg := config.Default()
	if err := cfg.LoadSources("."); err != nil {
		return nil, err
	}
	return cfg, nil
}
