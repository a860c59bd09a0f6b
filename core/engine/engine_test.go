package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds/azure"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func vmRecord(price string, kind types.SourceKind) types.PriceRecord {
	return types.PriceRecord{
		ServiceName:   "Virtual Machines",
		ProductName:   "Virtual Machines Dsv5 Series",
		SkuName:       "D4s v5",
		ArmSkuName:    "Standard_D4s_v5",
		MeterName:     "D4s v5",
		UnitOfMeasure: "1 Hour",
		UnitPrice:     dec(price),
		CurrencyCode:  types.CurrencyAUD,
		RegionKey:     "australiaeast",
		PriceType:     types.PriceConsumption,
		Source:        kind,
	}
}

func index(kind types.SourceKind, records ...types.PriceRecord) *pricing.Index {
	return pricing.NewIndex(kind, records, time.Now())
}

func vm(instances int) types.Component {
	return types.Component{Type: "vm", Fields: map[string]any{"sku": "Standard_D4s_v5", "instances": instances}}
}

func newEngine(parallelism int) *Engine {
	cfg := DefaultConfig()
	cfg.Parallelism = parallelism
	return New(azure.NewRegistry(), cfg)
}

func TestEstimate(t *testing.T) {
	bom := &types.BOM{
		Region: "Australia East",
		Workloads: []types.Workload{
			{Name: "web", Tier: "prod", Components: []types.Component{
				vm(3),
				{Type: "mainframe"},
			}},
			{Name: "cache", Tier: "prod", Components: []types.Component{
				{Type: "redis", Fields: map[string]any{"sku": "C1"}},
			}},
		},
	}
	sources := []*pricing.Index{index(types.SourceRetailLive, vmRecord("0.648", types.SourceRetailLive))}

	est, err := newEngine(4).Estimate(context.Background(), bom, sources)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}

	if est.RunID == "" {
		t.Error("expected run ID")
	}
	if est.Region != "australiaeast" || est.Currency != types.CurrencyAUD {
		t.Errorf("region=%q currency=%q", est.Region, est.Currency)
	}
	if !est.Grand.Payg.Equal(dec("1419.12")) {
		t.Errorf("grand payg = %s, want 1419.12", est.Grand.Payg)
	}
	if !est.Grand.Optimized.Equal(est.Grand.Payg) {
		t.Errorf("no coverage should leave optimized = payg, got %s", est.Grand.Optimized)
	}

	if len(est.Unhandled) != 1 || est.Unhandled[0].Type != "mainframe" || est.Unhandled[0].Component != 1 {
		t.Errorf("Unhandled = %+v", est.Unhandled)
	}
	if est.Unresolved != 1 {
		t.Errorf("Unresolved = %d, want 1", est.Unresolved)
	}

	web := est.Workloads[0]
	if len(web.Lines) != 1 || web.Lines[0].Workload != "web" || web.Lines[0].Tier != "prod" || web.Lines[0].Type != "vm" {
		t.Errorf("web lines = %+v", web.Lines)
	}
	redis := est.Workloads[1].Lines[0]
	if redis.Resolved || !redis.PaygCost.IsZero() || len(redis.Charges[0].Attempts) == 0 {
		t.Errorf("redis line = %+v", redis)
	}

	if len(est.Sources) != 1 || est.Sources[0].Records != 1 || est.Sources[0].Fingerprint == "" {
		t.Errorf("Sources = %+v", est.Sources)
	}
	if len(est.Tiers) != 1 || len(est.Tiers[0].Workloads) != 2 {
		t.Errorf("Tiers = %+v", est.Tiers)
	}
}

func TestEstimateSavingsPlan(t *testing.T) {
	bom := &types.BOM{
		Region: "australiaeast",
		Assumptions: types.Assumptions{
			SavingsPlan: types.Commitment{CoveragePct: dec("0.6")},
			Discounts:   types.DiscountTable{SavingsPlan: map[int]decimal.Decimal{1: dec("0.2")}},
		},
		Workloads: []types.Workload{{Name: "web", Components: []types.Component{vm(3)}}},
	}
	sources := []*pricing.Index{index(types.SourceRetailLive, vmRecord("0.648", types.SourceRetailLive))}

	est, err := newEngine(1).Estimate(context.Background(), bom, sources)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	// 1419.12 × 0.88
	if !est.Grand.Optimized.Equal(dec("1248.8256")) {
		t.Errorf("optimized = %s, want 1248.8256", est.Grand.Optimized)
	}
	if !est.Grand.Savings().Equal(dec("170.2944")) {
		t.Errorf("savings = %s", est.Grand.Savings())
	}
}

func TestEstimateSourcePriority(t *testing.T) {
	bom := &types.BOM{
		Region:    "australiaeast",
		Workloads: []types.Workload{{Name: "web", Components: []types.Component{vm(1)}}},
	}
	sources := pricing.OrderByPriority([]*pricing.Index{
		index(types.SourceRetailLive, vmRecord("0.5", types.SourceRetailLive)),
		index(types.SourceEnterpriseAPI, vmRecord("0.6", types.SourceEnterpriseAPI)),
	})

	est, err := newEngine(2).Estimate(context.Background(), bom, sources)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	ch := est.Workloads[0].Lines[0].Charges[0]
	if ch.Source != types.SourceEnterpriseAPI || !ch.UnitPrice.Equal(dec("0.6")) {
		t.Errorf("charge source=%s price=%s", ch.Source, ch.UnitPrice)
	}
}

func TestEstimateKeepsDeclaredOrder(t *testing.T) {
	var comps []types.Component
	for i := 1; i <= 40; i++ {
		comps = append(comps, vm(i))
	}
	bom := &types.BOM{Region: "australiaeast", Workloads: []types.Workload{{Name: "fleet", Components: comps}}}
	sources := []*pricing.Index{index(types.SourceRetailLive, vmRecord("1", types.SourceRetailLive))}

	est, err := newEngine(8).Estimate(context.Background(), bom, sources)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	for i, l := range est.Workloads[0].Lines {
		if l.Component != i {
			t.Fatalf("line %d has component %d", i, l.Component)
		}
		want := decimal.NewFromInt(int64((i + 1) * 730))
		if !l.PaygCost.Equal(want) {
			t.Errorf("line %d payg = %s, want %s", i, l.PaygCost, want)
		}
	}
}

func TestEstimateErrors(t *testing.T) {
	sources := []*pricing.Index{index(types.SourceRetailLive)}
	workloads := []types.Workload{{Name: "web", Components: []types.Component{vm(1)}}}

	tests := []struct {
		name    string
		bom     *types.BOM
		errType errors.Type
	}{
		{"nil bom", nil, errors.TypeInput},
		{"missing region", &types.BOM{Workloads: workloads}, errors.TypeInput},
		{
			"coverage above one",
			&types.BOM{Region: "australiaeast", Workloads: workloads, Assumptions: types.Assumptions{
				ReservedInstance: types.Commitment{CoveragePct: dec("1.5")},
			}},
			errors.TypeInvalidAssumptions,
		},
		{
			"negative hours per month",
			&types.BOM{Region: "australiaeast", Workloads: workloads, Assumptions: types.Assumptions{
				HoursPerMonth: dec("-730"),
			}},
			errors.TypeInvalidAssumptions,
		},
		{
			"negative instances",
			&types.BOM{Region: "australiaeast", Workloads: []types.Workload{{Name: "web", Components: []types.Component{vm(-2)}}}},
			errors.TypeInvalidAssumptions,
		},
		{
			"vm without sku",
			&types.BOM{Region: "australiaeast", Workloads: []types.Workload{{Name: "web", Components: []types.Component{{Type: "vm"}}}}},
			errors.TypeInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEngine(2).Estimate(context.Background(), tt.bom, sources)
			if !errors.IsType(err, tt.errType) {
				t.Errorf("expected %s, got %v", tt.errType, err)
			}
		})
	}
}

func TestEstimateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bom := &types.BOM{Region: "australiaeast", Workloads: []types.Workload{{Name: "web", Components: []types.Component{vm(1)}}}}
	if _, err := newEngine(1).Estimate(ctx, bom, nil); err == nil {
		t.Error("expected error from canceled context")
	}
}

func TestServices(t *testing.T) {
	bom := &types.BOM{
		Region: "australiaeast",
		Workloads: []types.Workload{
			{Name: "web", Components: []types.Component{vm(2), vm(1), {Type: "mainframe"}}},
			{Name: "cache", Components: []types.Component{
				{Type: "redis", Fields: map[string]any{"sku": "C1"}},
				{Type: "vm"},
			}},
		},
	}
	got := newEngine(1).Services(bom)
	want := []string{"Virtual Machines", "Azure Cache for Redis", "Redis Cache"}
	if len(got) != len(want) {
		t.Fatalf("Services() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Services()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if newEngine(1).Services(nil) != nil {
		t.Error("Services(nil) should be nil")
	}
}
