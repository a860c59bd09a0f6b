package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"azure-bom-cost/internal/errors"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"json", "cfg.json", `{
  "pricing": {"currency": "usd", "parallelism": 2, "evaluation_date": "2025-07-01",
              "discounts": {"savings_plan": {"3y": "0.30"}}},
  "sources": {"retail_live": false, "retail_csv": "retail.csv"},
  "output": {"format": "json"}
}`},
		{"yaml", "cfg.yaml", `
pricing:
  currency: usd
  parallelism: 2
  evaluation_date: "2025-07-01"
  discounts:
    savings_plan:
      3y: "0.30"
sources:
  retail_live: false
  retail_csv: retail.csv
output:
  format: json
`},
		{"toml", "cfg.toml", `
[pricing]
currency = "usd"
parallelism = 2
evaluation_date = "2025-07-01"

[pricing.discounts.savings_plan]
"3y" = "0.30"

[sources]
retail_live = false
retail_csv = "retail.csv"

[output]
format = "json"
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(write(t, tt.file, tt.body))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Currency() != "USD" {
				t.Errorf("Currency() = %s, want USD", cfg.Currency())
			}
			if cfg.Pricing.Parallelism != 2 {
				t.Errorf("Parallelism = %d, want 2", cfg.Pricing.Parallelism)
			}
			if cfg.Sources.RetailLive || cfg.Sources.RetailCSV != "retail.csv" {
				t.Errorf("Sources = %+v", cfg.Sources)
			}
			if cfg.Output.Format != "json" {
				t.Errorf("Output.Format = %q", cfg.Output.Format)
			}
			at, err := cfg.EvaluationDate()
			if err != nil || !at.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("EvaluationDate() = %v, %v", at, err)
			}
			table, err := cfg.DiscountTable()
			if err != nil {
				t.Fatalf("DiscountTable() error = %v", err)
			}
			if got := table.SavingsPlan[3]; !got.Equal(decimal.RequireFromString("0.3")) {
				t.Errorf("savings plan 3y discount = %s, want 0.3", got)
			}
		})
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Currency() != "AUD" || !cfg.Sources.RetailLive {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	table, err := cfg.DiscountTable()
	if err != nil {
		t.Fatalf("DiscountTable() error = %v", err)
	}
	if got := table.ReservedInstance[3]; !got.Equal(decimal.RequireFromString("0.55")) {
		t.Errorf("default ri 3y discount = %s", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		body  string
		field string
	}{
		{"unknown extension", "cfg.ini", "x=1", ""},
		{"bad json", "cfg.json", "{", ""},
		{"bad currency", "cfg.json", `{"pricing": {"currency": "dollars"}}`, "pricing.currency"},
		{"bad date", "cfg.yaml", "pricing:\n  evaluation_date: 01/07/2025\n", "pricing.evaluation_date"},
		{"bad term", "cfg.yaml", "pricing:\n  discounts:\n    ri:\n      five: \"0.5\"\n", "pricing.discounts.ri"},
		{"discount above one", "cfg.yaml", "pricing:\n  discounts:\n    ri:\n      \"1\": \"1.5\"\n", "pricing.discounts.ri.1"},
		{"ea without enrollment", "cfg.json", `{"sources": {"enterprise": {"mode": "ea"}}}`, "sources.enterprise.enrollment_account"},
		{"unknown mode", "cfg.json", `{"sources": {"enterprise": {"mode": "csp"}}}`, "sources.enterprise.mode"},
		{"bad log level", "cfg.yaml", "logging:\n  level: loud\n", "logging.level"},
		{"negative body limit", "cfg.json", `{"server": {"max_body_kb": -1}}`, "server"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, tt.file, tt.body))
			e, ok := errors.As(err)
			if !ok || e.Type != errors.TypeConfig {
				t.Fatalf("Load() error = %v, want config error", err)
			}
			if tt.field != "" && e.Field() != tt.field {
				t.Errorf("field = %q, want %q", e.Field(), tt.field)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"cfg.json", "cfg.yaml", "cfg.toml"} {
		t.Run(name, func(t *testing.T) {
			want := Default()
			want.Pricing.Currency = "EUR"
			want.Sources.Enterprise = EnterpriseConfig{Mode: "mca", BillingAccount: "acct-1"}
			want.Output.Details = true

			path := filepath.Join(t.TempDir(), "nested", name)
			if err := want.Save(path); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Pricing.Currency != "EUR" || got.Sources.Enterprise.BillingAccount != "acct-1" || !got.Output.Details {
				t.Errorf("round trip lost fields: %+v", got)
			}
			if got.Pricing.Discounts.SavingsPlan["3"] != "0.33" {
				t.Errorf("discounts = %+v", got.Pricing.Discounts)
			}
		})
	}

	if err := Default().Save(filepath.Join(t.TempDir(), "cfg.ini")); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("Save(.ini) error = %v, want config error", err)
	}
}
