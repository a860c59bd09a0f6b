// Package cmd - price source commands
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"azure-bom-cost/adapters/pricing"
	"azure-bom-cost/core/normalize"
	corepricing "azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/config"
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Price source commands",
	Long:  "Download offline retail snapshots and inspect price files.",
}

var pricingDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a retail price snapshot to CSV",
	Long: `Fetch retail prices for one or more services and write them under
the canonical snapshot headings, for use with estimate --retail-csv.

Examples:
  azure-bom-cost pricing download --service "Virtual Machines" --region australiaeast -o vm.csv
  azure-bom-cost pricing download --filter "serviceFamily eq 'Databases'" -o db.csv`,
	Args: cobra.NoArgs,
	RunE: runPricingDownload,
}

var pricingInspectCmd = &cobra.Command{
	Use:   "inspect <file.csv>",
	Short: "Normalize a price CSV and report what was kept",
	Long: `Read a retail snapshot or enterprise export, normalize it, and print
record counts, dropped rows per reason, and the content fingerprint.`,
	Args: cobra.ExactArgs(1),
	RunE: runPricingInspect,
}

var (
	downloadServices []string
	downloadRegion   string
	downloadFilter   string
	downloadCurrency string
	downloadOut      string
	downloadTimeout  time.Duration

	inspectSource string
	inspectDate   string
)

func init() {
	pricingCmd.AddCommand(pricingDownloadCmd)
	pricingCmd.AddCommand(pricingInspectCmd)

	f := pricingDownloadCmd.Flags()
	f.StringSliceVarP(&downloadServices, "service", "s", nil, "service name, repeatable")
	f.StringVarP(&downloadRegion, "region", "r", "", "ARM region name")
	f.StringVar(&downloadFilter, "filter", "", "raw OData filter, instead of --service")
	f.StringVar(&downloadCurrency, "currency", "", "currency code (default from config)")
	f.StringVarP(&downloadOut, "output", "o", "", "output CSV file (default stdout)")
	f.DurationVar(&downloadTimeout, "timeout", 30*time.Minute, "overall timeout")

	pricingInspectCmd.Flags().StringVar(&inspectSource, "source", "retail_offline", "source kind (retail_offline, enterprise_csv)")
	pricingInspectCmd.Flags().StringVar(&inspectDate, "evaluation-date", "", "YYYY-MM-DD used for effective dating (default today)")
}

func runPricingDownload(cmd *cobra.Command, args []string) error {
	if downloadFilter == "" && len(downloadServices) == 0 {
		return fmt.Errorf("either --service or --filter is required")
	}
	cfg := config.Get()
	currency := cfg.Currency()
	if downloadCurrency != "" {
		currency = types.Currency(strings.ToUpper(downloadCurrency))
	}

	client, err := newRetailClient(cfg, currency)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), downloadTimeout)
	defer cancel()

	var rows []normalize.Row
	if downloadFilter != "" {
		rows, err = client.Fetch(ctx, downloadFilter)
	} else {
		rows, err = client.Prefetch(ctx, downloadServices, normalize.Region(downloadRegion))
	}
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if downloadOut != "" {
		file, err := os.Create(downloadOut)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	n, err := pricing.WriteCSV(w, rows)
	if err != nil {
		return err
	}
	if downloadOut != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", n, downloadOut)
	}
	return nil
}

func runPricingInspect(cmd *cobra.Command, args []string) error {
	kind, ok := types.ParseSourceKind(inspectSource)
	if !ok || kind == types.SourceEnterpriseAPI || kind == types.SourceRetailLive {
		return fmt.Errorf("--source must be retail_offline or enterprise_csv, got %q", inspectSource)
	}
	at := time.Now().UTC()
	if inspectDate != "" {
		t, err := time.Parse(config.DateLayout, inspectDate)
		if err != nil {
			return fmt.Errorf("invalid --evaluation-date: %w", err)
		}
		at = t
	}

	rows, err := pricing.LoadCSV(args[0])
	if err != nil {
		return err
	}
	res := normalize.Normalize(rows, kind, config.Get().Currency())
	idx := corepricing.NewIndex(kind, res.Records, at)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:         %s\n", args[0])
	fmt.Fprintf(out, "Source:       %s\n", kind)
	fmt.Fprintf(out, "Rows:         %d\n", len(rows))
	fmt.Fprintf(out, "Records:      %d\n", len(res.Records))
	fmt.Fprintf(out, "Indexed:      %d (%d excluded: not effective, dev/test or reservation)\n", idx.Len(), idx.Excluded())
	fmt.Fprintf(out, "Fingerprint:  %s\n", idx.Fingerprint())

	if res.DroppedTotal() == 0 {
		return nil
	}
	reasons := make([]string, 0, len(res.Dropped))
	for r := range res.Dropped {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Dropped because", "Rows"})
	for _, r := range reasons {
		t.AppendRow(table.Row{r, res.Dropped[r]})
	}
	t.AppendFooter(table.Row{"Total", res.DroppedTotal()})
	fmt.Fprintln(out)
	fmt.Fprintln(out, t.Render())
	return nil
}
