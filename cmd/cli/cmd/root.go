// Package cmd provides the CLI commands for azure-bom-cost.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"azure-bom-cost/internal/config"
	"azure-bom-cost/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "azure-bom-cost",
	Short: "Estimate monthly Azure costs for a bill of materials",
	Long: `azure-bom-cost prices an Azure bill of materials against retail and
enterprise price sources and reports pay-as-you-go and optimized
(savings plan / reserved instance) monthly costs.

Examples:
  azure-bom-cost estimate --bom bom.json
  azure-bom-cost estimate --bom bom.yaml --format markdown
  azure-bom-cost estimate --bom bom.hcl --retail-csv prices.csv --no-retail-api
  azure-bom-cost pricing download --service "Virtual Machines" --region australiaeast -o vm.csv`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, .json, .yaml or .toml (default is $HOME/.azure-bom-cost.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(pricingCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".azure-bom-cost.yaml"
	}
	return filepath.Join(home, ".azure-bom-cost.yaml")
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "azure-bom-cost version %s\n", Version)
	},
}
