// Package cmd - estimate command
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	adapter "azure-bom-cost/adapters/cli"
	"azure-bom-cost/core/output"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/config"
	"azure-bom-cost/internal/logging"
)

var (
	bomPath           string
	outputFormat      string
	currencyFlag      string
	retailCSV         string
	enterpriseCSV     string
	priceSheetMode    string
	billingAccount    string
	enrollmentAccount string
	noRetailAPI       bool
	evaluationDate    string
	showDetails       bool
	noColor           bool
	estimateTimeout   time.Duration
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate monthly costs for a bill of materials",
	Long: `Price every component of a BOM and report PAYG and optimized totals
per workload, per tier and overall.

Price sources are consulted in priority order: enterprise price sheet
download, enterprise CSV export, offline retail CSV, live retail API.

Examples:
  azure-bom-cost estimate --bom bom.json
  azure-bom-cost estimate --bom bom.yaml --format json
  azure-bom-cost estimate --bom bom.hcl --enterprise-price-sheet-api mca --billing-account 1234`,
	Args: cobra.NoArgs,
	RunE: runEstimate,
}

func init() {
	f := estimateCmd.Flags()
	f.StringVarP(&bomPath, "bom", "b", "", "BOM file (.json, .yaml, .yml or .hcl) [REQUIRED]")
	f.StringVarP(&outputFormat, "format", "f", "", "output format (cli, markdown, json, csv)")
	f.StringVar(&currencyFlag, "currency", "", "currency code, overrides the BOM")
	f.StringVar(&retailCSV, "retail-csv", "", "offline retail price snapshot CSV")
	f.StringVar(&enterpriseCSV, "enterprise-csv", "", "enterprise price sheet CSV export")
	f.StringVar(&priceSheetMode, "enterprise-price-sheet-api", "", "download the enterprise price sheet (mca or ea)")
	f.StringVar(&billingAccount, "billing-account", "", "MCA billing account ID")
	f.StringVar(&enrollmentAccount, "enrollment-account", "", "EA enrollment account ID")
	f.BoolVar(&noRetailAPI, "no-retail-api", false, "do not query the live retail prices API")
	f.StringVar(&evaluationDate, "evaluation-date", "", "price effective date, YYYY-MM-DD (default today)")
	f.BoolVarP(&showDetails, "details", "d", false, "show one row per charge")
	f.BoolVar(&noColor, "no-color", false, "disable colored output")
	f.DurationVar(&estimateTimeout, "timeout", 10*time.Minute, "overall timeout")

	estimateCmd.MarkFlagRequired("bom")
}

// applyFlags lays the command line over the loaded configuration
func applyFlags(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	f := cmd.Flags()
	if f.Changed("format") {
		cfg.Output.Format = outputFormat
	}
	if f.Changed("retail-csv") {
		cfg.Sources.RetailCSV = retailCSV
	}
	if f.Changed("enterprise-csv") {
		cfg.Sources.EnterpriseCSV = enterpriseCSV
	}
	if f.Changed("enterprise-price-sheet-api") {
		cfg.Sources.Enterprise.Mode = priceSheetMode
	}
	if f.Changed("billing-account") {
		cfg.Sources.Enterprise.BillingAccount = billingAccount
	}
	if f.Changed("enrollment-account") {
		cfg.Sources.Enterprise.EnrollmentAccount = enrollmentAccount
	}
	if noRetailAPI {
		cfg.Sources.RetailLive = false
	}
	if f.Changed("evaluation-date") {
		cfg.Pricing.EvaluationDate = evaluationDate
	}
	if f.Changed("details") {
		cfg.Output.Details = showDetails
	}
	if noColor {
		cfg.Output.Color = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := applyFlags(cmd, config.Get())
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	eng, at, err := newEngine(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, estimateTimeout)
	defer cancelTimeout()

	sources, closeSources, err := newSources(cfg, at)
	if err != nil {
		return err
	}
	defer closeSources()

	req := &adapter.CLIRequest{
		BOMPath:  bomPath,
		Currency: types.Currency(strings.ToUpper(strings.TrimSpace(currencyFlag))),
		Sources:  sources,
	}

	formatters := output.NewRegistry(output.Options{Details: cfg.Output.Details, Color: cfg.Output.Color})
	a := adapter.NewCLIAdapter(eng, formatters, logging.Named("cli"))
	a.SetOutput(cmd.OutOrStdout())
	a.SetFormat(format)

	report, err := a.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("estimation failed: %w", err)
	}
	logging.Debug("run complete", zap.String("run_id", report.RunID))
	return nil
}
