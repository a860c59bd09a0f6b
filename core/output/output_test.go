package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"azure-bom-cost/core/cost"
	"azure-bom-cost/core/engine"
	"azure-bom-cost/core/optimize"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleReport() *Report {
	vm := types.CostLine{
		Workload: "web", Tier: "prod", Type: "vm", Component: 0,
		Description:    "VM Standard_D4s_v5 × 3 × 730h",
		QuantityBilled: dec("2190"),
		PaygCost:       dec("1419.12"),
		OptimizedCost:  dec("1164.0"),
		Resolved:       true,
		Charges: []types.Charge{{
			Name: "compute", Quantity: dec("2190"), QuantityBilled: dec("2190"),
			UnitOfMeasure: "1 Hour", UnitPrice: dec("0.648"), Cost: dec("1419.12"),
			Resolved: true, Match: types.MatchExact, Source: types.SourceRetailLive,
		}},
	}
	redis := types.CostLine{
		Workload: "cache", Tier: "prod", Type: "redis", Component: 0,
		Description:    "Redis C1 × 1 × 730h",
		QuantityBilled: dec("730"),
		Charges: []types.Charge{{
			Name: "cache", Quantity: dec("730"), QuantityBilled: dec("730"),
			Match: types.MatchNone, Attempts: []string{"retail_api:exact:azure cache for redis|c1"},
		}},
	}
	summary := cost.Aggregate([]types.WorkloadTotal{
		{Name: "web", Tier: "prod", Lines: []types.CostLine{vm}},
		{Name: "cache", Tier: "prod", Lines: []types.CostLine{redis}},
	})
	model, _ := optimize.New(types.Assumptions{
		SavingsPlan: types.Commitment{CoveragePct: dec("0.5"), TermYears: 3},
	}, optimize.DefaultDiscounts())

	return &Report{
		Estimate: &engine.Estimate{
			RunID:    "run-1",
			Region:   "australiaeast",
			Currency: types.CurrencyAUD,
			Model:    model,
			Sources: []engine.SourceInfo{
				{Kind: types.SourceRetailLive, Records: 10, Fingerprint: "abcdef0123456789"},
			},
			Summary:   summary,
			Unhandled: []engine.Unhandled{{Workload: "web", Component: 1, Type: "mainframe"}},
		},
		Dropped:        map[types.SourceKind]map[string]int{types.SourceRetailLive: {"missing unit price": 2}},
		SourceWarnings: []string{"enterprise_api unavailable, falling back: status 403"},
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0", "0.00"},
		{"1.005", "1.01"},
		{"2.344", "2.34"},
		{"2.345", "2.35"},
		{"1419.12", "1419.12"},
		{"1248.8256", "1248.83"},
	}
	for _, tt := range tests {
		if got := Amount(dec(tt.in)); got != tt.want {
			t.Errorf("Amount(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if got := Money(dec("3.5"), types.CurrencyUSD); got != "USD 3.50" {
		t.Errorf("Money() = %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatCLI},
		{"table", FormatCLI},
		{"JSON", FormatJSON},
		{"md", FormatMarkdown},
		{"csv", FormatCSV},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("ParseFormat(pdf) error = %v, want input error", err)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Options{})
	if got := len(r.Formats()); got != 4 {
		t.Fatalf("Formats() = %v, want 4 formats", r.Formats())
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, "html", sampleReport()); !errors.IsType(err, errors.TypeNotSupported) {
		t.Errorf("Render(html) error = %v, want not supported", err)
	}
	if err := r.Render(&buf, FormatJSON, &Report{}); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("Render(empty) error = %v, want input error", err)
	}
}

func TestRenderCLI(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRegistry(Options{Details: true}).Render(&buf, FormatCLI, sampleReport()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"AZURE BOM COST ESTIMATE",
		"web (prod)",
		"AUD 1419.12",
		"AUD 0.00 unresolved",
		"exact retail_api",
		"AUD 0.648 / 1 Hour",
		"Grand total",
		"abcdef012345",
		"no handler for type \"mainframe\"",
		"enterprise_api unavailable",
		"1 line(s) have unresolved prices",
		"Savings plan 50%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("cli output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("cli output colored without Color option")
	}
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRegistry(Options{Color: true}).Render(&buf, FormatMarkdown, sampleReport()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"# Azure BOM cost estimate", "## web (prod)", "| # | Type |", "AUD 1419.12"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("markdown output must not be colored")
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRegistry(Options{}).Render(&buf, FormatJSON, sampleReport()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	var got struct {
		RunID string `json:"run_id"`
		Grand struct {
			Payg      string `json:"payg"`
			Optimized string `json:"optimized"`
		} `json:"grand"`
		Unresolved int                       `json:"unresolved"`
		Dropped    map[string]map[string]int `json:"dropped"`
		Sources    []struct {
			Fingerprint string `json:"fingerprint"`
		} `json:"sources"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.RunID != "run-1" || got.Unresolved != 1 {
		t.Errorf("run_id = %q, unresolved = %d", got.RunID, got.Unresolved)
	}
	if got.Grand.Payg != "1419.12" || got.Grand.Optimized != "1164" {
		t.Errorf("grand = %+v, want exact decimal strings", got.Grand)
	}
	if got.Dropped["retail_api"]["missing unit price"] != 2 {
		t.Errorf("dropped = %v", got.Dropped)
	}
	if len(got.Sources) != 1 || got.Sources[0].Fingerprint != "abcdef0123456789" {
		t.Errorf("sources = %+v", got.Sources)
	}
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRegistry(Options{}).Render(&buf, FormatCSV, sampleReport()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header and 2 lines", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(CSVHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}
	vm, redis := rows[1], rows[2]
	if vm[0] != "web" || vm[5] != "exact" || vm[6] != "retail_api" || vm[8] != "1419.12" || vm[9] != "1164.00" {
		t.Errorf("vm row = %v", vm)
	}
	if redis[5] != "unresolved" || redis[8] != "0.00" || redis[11] != "false" {
		t.Errorf("redis row = %v", redis)
	}
}
