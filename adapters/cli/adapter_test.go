package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"azure-bom-cost/adapters/pricing"
	"azure-bom-cost/clouds/azure"
	"azure-bom-cost/core/engine"
	"azure-bom-cost/core/output"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

const bomJSON = `{
  "region": "Australia East",
  "assumptions": {"hours_per_month": 730, "savings_plan": {"coverage_pct": 0.5, "term_years": 3}},
  "workloads": [
    {"name": "web", "tier": "prod", "components": [
      {"type": "vm", "sku": "Standard_D4s_v5", "instances": 3}
    ]},
    {"name": "cache", "tier": "prod", "components": [
      {"type": "redis", "sku": "C1"}
    ]}
  ]
}`

const retailCSV = `serviceName,productName,skuName,armSkuName,meterName,unitOfMeasure,retailPrice,currencyCode,armRegionName,type
Virtual Machines,Virtual Machines Dsv5 Series,D4s v5,Standard_D4s_v5,D4s v5,1 Hour,0.648,AUD,australiaeast,Consumption
Virtual Machines,Virtual Machines Dsv5 Series,D4s v5,Standard_D4s_v5,D4s v5,1 Hour,,AUD,australiaeast,Consumption
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newAdapter(buf *bytes.Buffer, format output.Format) *CLIAdapter {
	a := NewCLIAdapter(engine.New(azure.NewRegistry(), engine.DefaultConfig()), output.NewRegistry(output.Options{}), nil)
	a.SetOutput(buf)
	a.SetFormat(format)
	return a
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	req := &CLIRequest{
		BOMPath: writeFile(t, dir, "bom.json", bomJSON),
		Sources: pricing.Options{RetailCSV: writeFile(t, dir, "retail.csv", retailCSV)},
	}

	var buf bytes.Buffer
	report, err := newAdapter(&buf, output.FormatJSON).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := report.Workloads[0].Totals.Payg.StringFixed(2); got != "1419.12" {
		t.Errorf("web PAYG = %s, want 1419.12", got)
	}
	// 0.5 × 0.33 savings plan discount on 1419.12
	if got := report.Grand.Optimized.StringFixed(4); got != "1184.9652" {
		t.Errorf("grand optimized = %s, want 1184.9652", got)
	}
	if report.Unresolved != 1 {
		t.Errorf("Unresolved = %d, want 1 (redis has no price)", report.Unresolved)
	}
	if report.Dropped[types.SourceRetailOffline]["missing unit price"] != 1 {
		t.Errorf("Dropped = %v", report.Dropped)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("rendered output is not JSON: %v", err)
	}
	if decoded["region"] != "australiaeast" || decoded["currency"] != "AUD" {
		t.Errorf("region, currency = %v, %v", decoded["region"], decoded["currency"])
	}
}

func TestRunCurrencyOverride(t *testing.T) {
	dir := t.TempDir()
	req := &CLIRequest{
		BOMPath:  writeFile(t, dir, "bom.json", bomJSON),
		Currency: types.CurrencyUSD,
		Sources:  pricing.Options{RetailCSV: writeFile(t, dir, "retail.csv", retailCSV)},
	}
	var buf bytes.Buffer
	report, err := newAdapter(&buf, output.FormatCSV).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Currency != types.CurrencyUSD {
		t.Errorf("Currency = %s, want USD", report.Currency)
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "priced in AUD") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a currency mismatch warning", report.Warnings)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		req  *CLIRequest
		want errors.Type
	}{
		{"missing bom", &CLIRequest{BOMPath: filepath.Join(dir, "none.json")}, errors.TypeInput},
		{"no sources", &CLIRequest{BOMPath: writeFile(t, dir, "bom.json", bomJSON)}, errors.TypeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := newAdapter(&buf, output.FormatCLI).Run(context.Background(), tt.req)
			if !errors.IsType(err, tt.want) {
				t.Errorf("Run() error = %v, want %s", err, tt.want)
			}
			if buf.Len() != 0 {
				t.Error("nothing should be rendered on error")
			}
		})
	}
}
