package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fleximon/fleximon"
	"github.com/fleximon/fleximon/config"
)

// validateCmd validates the configuration without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the Fleximon configuration without starting the server.

This command parses the main config and the environments and columns files,
expands environment variables, and checks every field. Nothing is polled.
It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid (warnings may be printed)
  1 - Config is invalid (error details printed to stderr)

Example:
  fleximon validate
  fleximon validate -c /etc/fleximon/fleximon.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (default: environments.json and columns.json in the working directory)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	m, err := fleximon.New(opts...)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	printSummary(cmd.OutOrStdout(), cfg, m)
	return nil
}

// printSummary reports the effective configuration and any warnings.
func printSummary(out io.Writer, cfg *config.Config, m *fleximon.Monitor) {
	ok := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow)

	_, _ = ok.Fprintln(out, "Config is valid!")
	fmt.Fprintf(out, "  Port:          %d\n", m.Port())
	fmt.Fprintf(out, "  Schedule:      %s\n", m.Schedule())

	names := make([]string, 0, len(cfg.Environments))
	for _, env := range m.Environments() {
		names = append(names, env.Name())
	}
	fmt.Fprintf(out, "  Environments:  %d (%s)\n", len(names), strings.Join(names, ", "))
	fmt.Fprintf(out, "  Columns:       %d (%s)\n", len(m.Columns()), strings.Join(m.Columns(), ", "))

	if cfg.Kafka.Enabled() {
		fmt.Fprintf(out, "  Kafka:         topic %s on %d broker(s)\n", cfg.Kafka.Topic, len(cfg.Kafka.Brokers))
	} else {
		fmt.Fprintf(out, "  Kafka:         disabled\n")
	}

	if len(names) == 0 {
		_, _ = warn.Fprintln(out, "warning: no environments configured, the dashboard will stay empty")
	}
	for _, column := range m.Columns() {
		if !fleximon.IsKnownColumn(column) {
			_, _ = warn.Fprintf(out, "warning: column %q is not recognized and will render empty\n", column)
		}
	}
}
