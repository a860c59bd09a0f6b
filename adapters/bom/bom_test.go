package bom

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

const jsonDoc = `{
  "region": "Australia East",
  "currency": "aud",
  "assumptions": {
    "hours_per_month": 730,
    "savings_plan": {"coverage_pct": 0.5, "term_years": 3},
    "ri": {"coverage_pct": 0.25},
    "discounts": {"savings_plan": {"3": 0.3}}
  },
  "workloads": [
    {
      "name": "web",
      "tier": "prod",
      "components": [
        {"type": "vm", "sku": "Standard_D4s_v5", "instances": 3, "os": "linux"},
        {"type": "ai_openai", "input_tokens_1k_per_month": 12000, "unit_price_overrides": {"input_per_1k": 0.00015}}
      ]
    },
    {"name": "ops", "tier": "shared", "components": [{"type": "aks_cluster", "uptime_sla": false}]}
  ]
}`

const yamlDoc = `
region: Australia East
currency: aud
assumptions:
  hours_per_month: 730
  savings_plan: {coverage_pct: 0.5, term_years: 3}
  ri:
    coverage_pct: 0.25
  discounts:
    savings_plan:
      3: 0.3
workloads:
  - name: web
    tier: prod
    components:
      - type: vm
        sku: Standard_D4s_v5
        instances: 3
        os: linux
      - type: ai_openai
        input_tokens_1k_per_month: 12000
        unit_price_overrides:
          input_per_1k: 0.00015
  - name: ops
    tier: shared
    components:
      - {type: aks_cluster, uptime_sla: false}
`

const hclDoc = `
region   = "Australia East"
currency = "aud"

assumptions = {
  hours_per_month = 730
  savings_plan    = { coverage_pct = 0.5, term_years = 3 }
  ri              = { coverage_pct = 0.25 }
  discounts       = { savings_plan = { "3" = 0.3 } }
}

workload "web" {
  tier = "prod"

  component "vm" {
    sku       = "Standard_D4s_v5"
    instances = 3
    os        = "linux"
  }

  component "ai_openai" {
    input_tokens_1k_per_month = 12000
    unit_price_overrides = {
      input_per_1k = 0.00015
    }
  }
}

workload "ops" {
  tier = "shared"
  component "aks_cluster" {
    uptime_sla = false
  }
}
`

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expected() *types.BOM {
	return &types.BOM{
		Region:   "Australia East",
		Currency: types.CurrencyAUD,
		Assumptions: types.Assumptions{
			HoursPerMonth:    dec("730"),
			SavingsPlan:      types.Commitment{CoveragePct: dec("0.5"), TermYears: 3},
			ReservedInstance: types.Commitment{CoveragePct: dec("0.25")},
			Discounts: types.DiscountTable{
				SavingsPlan: map[int]decimal.Decimal{3: dec("0.3")},
			},
		},
		Workloads: []types.Workload{
			{Name: "web", Tier: "prod", Components: []types.Component{
				{Type: "vm", Fields: map[string]any{
					"sku": "Standard_D4s_v5", "instances": json.Number("3"), "os": "linux",
				}},
				{Type: "ai_openai", Fields: map[string]any{
					"input_tokens_1k_per_month": json.Number("12000"),
					"unit_price_overrides":      map[string]any{"input_per_1k": json.Number("0.00015")},
				}},
			}},
			{Name: "ops", Tier: "shared", Components: []types.Component{
				{Type: "aks_cluster", Fields: map[string]any{"uptime_sla": false}},
			}},
		},
	}
}

func TestFormatsAgree(t *testing.T) {
	tests := []struct {
		format Format
		doc    string
	}{
		{FormatJSON, jsonDoc},
		{FormatYAML, yamlDoc},
		{FormatHCL, hclDoc},
	}

	want := expected()
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got, err := Parse([]byte(tt.doc), tt.format, "bom."+string(tt.format))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Region != want.Region || got.Currency != want.Currency {
				t.Errorf("region=%q currency=%q", got.Region, got.Currency)
			}
			if !got.Assumptions.HoursPerMonth.Equal(want.Assumptions.HoursPerMonth) ||
				!got.Assumptions.SavingsPlan.CoveragePct.Equal(dec("0.5")) ||
				got.Assumptions.SavingsPlan.TermYears != 3 ||
				!got.Assumptions.ReservedInstance.CoveragePct.Equal(dec("0.25")) {
				t.Errorf("assumptions = %+v", got.Assumptions)
			}
			if d, ok := got.Assumptions.Discounts.SavingsPlan[3]; !ok || !d.Equal(dec("0.3")) {
				t.Errorf("discounts = %+v", got.Assumptions.Discounts)
			}
			if !reflect.DeepEqual(got.Workloads, want.Workloads) {
				t.Errorf("workloads =\n%#v\nwant\n%#v", got.Workloads, want.Workloads)
			}
		})
	}
}

func TestNumbersKeepText(t *testing.T) {
	got, err := Parse([]byte(hclDoc), FormatHCL, "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	c := got.Workloads[0].Components[1]
	price := c.Reader().Map("unit_price_overrides")["input_per_1k"]
	if price != json.Number("0.00015") {
		t.Errorf("price = %#v, want exact literal", price)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		doc     string
		errType errors.Type
		field   string
	}{
		{"bad json", FormatJSON, `{"region":`, errors.TypeParsing, ""},
		{"bad yaml", FormatYAML, "region: [unclosed", errors.TypeParsing, ""},
		{"bad hcl", FormatHCL, `region = `, errors.TypeParsing, ""},
		{"hcl without region", FormatHCL, `currency = "AUD"`, errors.TypeParsing, ""},
		{"component without type", FormatJSON, `{"region":"x","workloads":[{"name":"w","components":[{"sku":"a"}]}]}`, errors.TypeInput, "workloads[0].components[0].type"},
		{"workloads not a list", FormatYAML, "region: x\nworkloads: 3\n", errors.TypeInput, "workloads"},
		{"bad coverage", FormatJSON, `{"region":"x","assumptions":{"ri":{"coverage_pct":"lots"}}}`, errors.TypeInput, "assumptions.ri.coverage_pct"},
		{"fractional term", FormatJSON, `{"region":"x","assumptions":{"ri":{"term_years":1.5}}}`, errors.TypeInput, "assumptions.ri.term_years"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), tt.format, "")
			if !errors.IsType(err, tt.errType) {
				t.Fatalf("expected %s, got %v", tt.errType, err)
			}
			if tt.field != "" {
				if e, _ := errors.As(err); e.Field() != tt.field {
					t.Errorf("Field() = %q, want %q", e.Field(), tt.field)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.yml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0644); err != nil {
		t.Fatal(err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if b.ComponentCount() != 3 {
		t.Errorf("ComponentCount() = %d, want 3", b.ComponentCount())
	}

	if _, err := Load(filepath.Join(dir, "bom.xml")); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error for unknown extension, got %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected input error for missing file, got %v", err)
	}
}
