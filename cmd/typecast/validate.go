package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/typecast/config"
)

// validateCmd validates a config file without starting the overlay.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a typecast configuration file without starting the overlay.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  typecast validate -c typecast.yaml
  typecast validate --config /etc/typecast/typecast.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// building the source also compiles the extractor
	if _, err := config.BuildSource(cfg.Source); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Config is valid!\n")
	_, _ = fmt.Fprintf(out, "  Source:        %s\n", cfg.Source.URL)
	_, _ = fmt.Fprintf(out, "  Format:        %s\n", describeFormat(cfg.Source))
	_, _ = fmt.Fprintf(out, "  Poll interval: %s\n", cfg.PollInterval.Duration())
	_, _ = fmt.Fprintf(out, "  Reveal:        %s per character\n", cfg.Animation.RevealInterval.Duration())
	_, _ = fmt.Fprintf(out, "  Fade:          %s\n", cfg.Animation.FadeDuration.Duration())
	if cfg.OverlayEnabled() {
		_, _ = fmt.Fprintf(out, "  Overlay:       http://localhost:%d/overlay\n", cfg.Port)
	} else {
		_, _ = fmt.Fprintf(out, "  Overlay:       disabled\n")
	}
	_, _ = fmt.Fprintf(out, "  Terminal:      %t\n", cfg.Terminal.Enabled)

	return nil
}

func describeFormat(sc config.SourceConfig) string {
	switch sc.Format {
	case config.FormatJSON:
		return "json (" + sc.Field + ")"
	case config.FormatRegex:
		return "regex (" + sc.Pattern + ")"
	default:
		return sc.Format
	}
}
