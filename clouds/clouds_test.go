package clouds

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func resolvedAt(price, uom string) pricing.ResolvedPrice {
	return pricing.ResolvedPrice{
		Record: &types.PriceRecord{
			ServiceName:   "svc",
			SkuName:       "sku",
			UnitOfMeasure: uom,
			UnitPrice:     dec(price),
			PriceType:     types.PriceConsumption,
		},
		Source: types.SourceRetailLive,
		Match:  types.MatchExact,
	}
}

func TestBill(t *testing.T) {
	tests := []struct {
		name       string
		quantity   string
		price      string
		uom        string
		wantBilled string
		wantCost   string
	}{
		{"hourly", "2190", "0.648", "1 Hour", "2190", "1419.12"},
		{"per 10k", "250000", "0.004", "10,000", "25", "0.1"},
		{"per million GB-s", "250000000", "16", "1,000,000 GB Seconds", "250", "4000"},
		{"100 hours", "730", "10", "100 Hours", "7.3", "73"},
		{"1K", "12000000", "0.00015", "1K", "12000", "1.8"},
		{"GB month", "1024", "0.02", "1 GB/Month", "1024", "20.48"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMeter("m", pricing.Query{Unit: tt.uom}, dec(tt.quantity))
			ch := Bill(m, resolvedAt(tt.price, tt.uom))
			if !ch.QuantityBilled.Equal(dec(tt.wantBilled)) {
				t.Errorf("QuantityBilled = %s, want %s", ch.QuantityBilled, tt.wantBilled)
			}
			if !ch.Cost.Equal(dec(tt.wantCost)) {
				t.Errorf("Cost = %s, want %s", ch.Cost, tt.wantCost)
			}
			if !ch.Resolved || ch.Source != types.SourceRetailLive {
				t.Errorf("Resolved=%v Source=%s", ch.Resolved, ch.Source)
			}
		})
	}
}

func TestBillBatchFromMeterText(t *testing.T) {
	p := resolvedAt("0.05", "")
	p.Record.MeterName = "Write Operations per 10K"
	ch := Bill(NewMeter("ops", pricing.Query{}, dec("50000")), p)
	if !ch.QuantityBilled.Equal(dec("5")) {
		t.Errorf("QuantityBilled = %s, want 5", ch.QuantityBilled)
	}
}

func TestBillTierMinimumFloor(t *testing.T) {
	p := resolvedAt("1", "1/Month")
	floor := dec("5")
	p.Record.TierMinimumUnits = &floor

	ch := Bill(NewMeter("keys", pricing.Query{}, dec("2")), p)
	if !ch.QuantityBilled.Equal(floor) || !ch.Cost.Equal(dec("5")) {
		t.Errorf("floor not applied: billed=%s cost=%s", ch.QuantityBilled, ch.Cost)
	}

	ch = Bill(NewMeter("keys", pricing.Query{}, decimal.Zero), p)
	if !ch.Cost.IsZero() {
		t.Errorf("zero quantity must not be floored, cost=%s", ch.Cost)
	}
}

func TestBillUnresolved(t *testing.T) {
	attempts := []pricing.Attempt{{Source: types.SourceRetailLive, Level: types.MatchExact, Key: "search|s1|australiaeast|1 hour"}}
	m := NewMeter("search units", pricing.Query{Unit: "1 Hour"}, dec("730"))

	ch := Bill(m, pricing.Unresolved(attempts))
	if ch.Resolved {
		t.Error("expected unresolved charge")
	}
	if !ch.Cost.IsZero() {
		t.Errorf("Cost = %s, want 0", ch.Cost)
	}
	if !ch.QuantityBilled.Equal(dec("730")) {
		t.Errorf("quantity should still be reported, got %s", ch.QuantityBilled)
	}
	if !reflect.DeepEqual(ch.Attempts, []string{attempts[0].String()}) {
		t.Errorf("Attempts = %v", ch.Attempts)
	}
}

func TestBillOverrideAndMultiplier(t *testing.T) {
	price := dec("0.00015")
	m := NewMeter("input tokens", pricing.Query{Unit: "1K"}, dec("12000000")).WithOverride(&price)
	ch := Bill(m, pricing.ResolvedPrice{})
	if ch.Match != types.MatchOverride || !ch.Resolved {
		t.Errorf("Match=%s Resolved=%v", ch.Match, ch.Resolved)
	}
	if !ch.Cost.Equal(dec("1.8")) {
		t.Errorf("Cost = %s, want 1.8", ch.Cost)
	}

	m = NewMeter("vcore", pricing.Query{Unit: "1 Hour"}, dec("100")).Times(dec("1.5"))
	ch = Bill(m, resolvedAt("2", "1 Hour"))
	if !ch.Cost.Equal(dec("300")) {
		t.Errorf("Cost = %s, want 300", ch.Cost)
	}
}

func TestLine(t *testing.T) {
	meters := []Meter{
		NewMeter("compute", pricing.Query{Unit: "1 Hour"}, dec("730")),
		NewMeter("storage", pricing.Query{Unit: "1 GB/Month"}, dec("100")),
	}
	prices := []pricing.ResolvedPrice{resolvedAt("0.5", "1 Hour"), pricing.Unresolved(nil)}

	line := Line("desc", meters, prices)
	if line.Resolved {
		t.Error("line with an unresolved meter must be unresolved")
	}
	if !line.PaygCost.Equal(dec("365")) {
		t.Errorf("PaygCost = %s, want 365", line.PaygCost)
	}
	if !line.QuantityBilled.Equal(dec("730")) {
		t.Errorf("QuantityBilled = %s", line.QuantityBilled)
	}
	if len(line.Charges) != 2 {
		t.Errorf("Charges = %d", len(line.Charges))
	}

	empty := Line("free", nil, nil)
	if !empty.Resolved || !empty.PaygCost.IsZero() {
		t.Errorf("empty line = %+v", empty)
	}
}

func TestValidate(t *testing.T) {
	ok := []Meter{NewMeter("a", pricing.Query{}, dec("1"))}
	if err := Validate("vm", ok); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	bad := []Meter{NewMeter("compute", pricing.Query{}, dec("-1"))}
	err := Validate("vm", bad)
	if !errors.IsType(err, errors.TypeInvalidAssumptions) {
		t.Fatalf("expected InvalidAssumptions, got %v", err)
	}
	if e, _ := errors.As(err); e.Field() != "vm.compute" {
		t.Errorf("Field() = %q", e.Field())
	}
}

func TestPositive(t *testing.T) {
	got := Positive(
		NewMeter("a", pricing.Query{}, dec("0")),
		NewMeter("b", pricing.Query{}, dec("2")),
		NewMeter("c", pricing.Query{}, dec("-1")),
	)
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Errorf("Positive() = %+v", got)
	}
}

func TestSkuVariants(t *testing.T) {
	got := SkuVariants("Standard_D4s_v5")
	want := []string{"Standard_D4s_v5", "Standard D4s v5", "D4s_v5", "D4s v5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SkuVariants() = %v, want %v", got, want)
	}

	got = SkuVariants("D2s v5")
	want = []string{"D2s v5", "Standard_D2s_v5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SkuVariants() = %v, want %v", got, want)
	}

	if SkuVariants("  ") != nil {
		t.Error("blank sku should have no variants")
	}
}

type stubHandler struct{ t string }

func (h stubHandler) Type() string { return h.t }
func (h stubHandler) Meters(types.Component, types.Assumptions) ([]Meter, error) {
	return nil, nil
}
func (h stubHandler) Price(types.Component, []Meter, []pricing.ResolvedPrice, types.Assumptions) types.CostLine {
	return types.CostLine{}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stubHandler{"vm"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(stubHandler{"vm"}); err == nil {
		t.Error("duplicate registration should fail")
	}
	if err := r.Register(stubHandler{""}); err == nil {
		t.Error("empty type should fail")
	}
	r.MustRegister(stubHandler{"redis"})

	if _, ok := r.Get("vm"); !ok {
		t.Error("vm handler missing")
	}
	if _, ok := r.Get("mainframe"); ok {
		t.Error("unknown type should not resolve")
	}
	if got := r.Types(); !reflect.DeepEqual(got, []string{"redis", "vm"}) {
		t.Errorf("Types() = %v", got)
	}
}
