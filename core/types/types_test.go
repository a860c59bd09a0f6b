package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEffectiveAt(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		at    time.Time
		want  bool
	}{
		{"no bounds", nil, nil, jan, true},
		{"before start", &jun, nil, jan, false},
		{"at start", &jan, nil, jan, true},
		{"end is exclusive", &jan, &jun, jun, false},
		{"inside window", &jan, &jun, jan.AddDate(0, 2, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := PriceRecord{EffectiveStart: tt.start, EffectiveEnd: tt.end}
			if got := r.EffectiveAt(tt.at); got != tt.want {
				t.Errorf("EffectiveAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourcePriority(t *testing.T) {
	kinds := AllSourceKinds()
	for i := 1; i < len(kinds); i++ {
		if kinds[i-1].Priority() >= kinds[i].Priority() {
			t.Errorf("%s should rank before %s", kinds[i-1], kinds[i])
		}
	}
	if k, ok := ParseSourceKind("Retail-CSV"); !ok || k != SourceRetailOffline {
		t.Errorf("ParseSourceKind(Retail-CSV) = %v, %v", k, ok)
	}
}

func TestParsePriceType(t *testing.T) {
	tests := map[string]PriceType{
		"":                   PriceConsumption,
		"Consumption":        PriceConsumption,
		"reservation":        PriceReservation,
		"DevTestConsumption": PriceDevTest,
	}
	for in, want := range tests {
		got, ok := ParsePriceType(in)
		if !ok || got != want {
			t.Errorf("ParsePriceType(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParsePriceType("Spot"); ok {
		t.Error("unknown price type must not parse")
	}
}

func TestFieldReader(t *testing.T) {
	c := Component{Type: "vm", Fields: map[string]any{
		"sku":        " D4s_v5 ",
		"instances":  json.Number("3"),
		"hours":      "730",
		"uptime_sla": false,
		"gb":         12.5,
		"bad":        []int{1},
	}}

	r := c.Reader()
	if got := r.String("sku", ""); got != "D4s_v5" {
		t.Errorf("String(sku) = %q", got)
	}
	if got := r.Decimal("instances", decimal.Zero); !got.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Decimal(instances) = %s", got)
	}
	if got := r.Decimal("hours", decimal.Zero); !got.Equal(decimal.NewFromInt(730)) {
		t.Errorf("Decimal(hours) = %s", got)
	}
	if got := r.Decimal("gb", decimal.Zero); !got.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Decimal(gb) = %s", got)
	}
	if r.Bool("uptime_sla", true) {
		t.Error("Bool(uptime_sla) should be false")
	}
	if got := r.Decimal("missing", decimal.NewFromInt(7)); !got.Equal(decimal.NewFromInt(7)) {
		t.Errorf("default not applied: %s", got)
	}
	if r.Err() != nil {
		t.Fatalf("unexpected error: %v", r.Err())
	}

	r.Decimal("bad", decimal.Zero)
	if r.Err() == nil {
		t.Error("expected conversion error for slice field")
	}
}

func TestTotalsAddLine(t *testing.T) {
	var tot Totals
	tot = tot.AddLine(CostLine{PaygCost: decimal.RequireFromString("10.10"), OptimizedCost: decimal.RequireFromString("9")})
	tot = tot.AddLine(CostLine{PaygCost: decimal.RequireFromString("0.20"), OptimizedCost: decimal.RequireFromString("0.2")})

	if !tot.Payg.Equal(decimal.RequireFromString("10.3")) {
		t.Errorf("Payg = %s", tot.Payg)
	}
	if !tot.Savings().Equal(decimal.RequireFromString("1.1")) {
		t.Errorf("Savings = %s", tot.Savings())
	}
}

func TestCostLineMatch(t *testing.T) {
	one := decimal.NewFromInt(1)
	l := CostLine{Charges: []Charge{
		{Quantity: one, Match: MatchExact},
		{Quantity: one, Match: MatchRelaxed},
		{Quantity: decimal.Zero, Match: MatchNone},
	}}
	if got := l.Match(); got != MatchRelaxed {
		t.Errorf("Match() = %s, want relaxed", got)
	}
}
