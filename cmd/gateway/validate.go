package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"alpharesearch/gateway/pkg/cli"
	"alpharesearch/gateway/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration file, including environment
variable overrides, without starting the server.

Examples:
  # Validate the default config
  gateway validate

  # Validate a specific file
  gateway validate --config /etc/gateway/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  Listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  Backend: %s\n", cfg.Backend.BaseURL())
	fmt.Printf("  Backend timeout: %s\n", cfg.Backend.Timeout)
	if cfg.Audit.Enabled {
		fmt.Printf("  Audit store: %s (%s)\n", cfg.Audit.Path, cfg.Audit.Driver)
	} else {
		fmt.Println("  Audit store: disabled")
	}
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("  Metrics: %s\n", cfg.Telemetry.Metrics.Path)
	}
	return nil
}
