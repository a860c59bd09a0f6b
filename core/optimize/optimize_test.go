package optimize

import (
	"testing"

	"github.com/shopspring/decimal"

	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assumptions(sp, ri string, spTerm, riTerm int) types.Assumptions {
	return types.Assumptions{
		SavingsPlan:      types.Commitment{CoveragePct: dec(sp), TermYears: spTerm},
		ReservedInstance: types.Commitment{CoveragePct: dec(ri), TermYears: riTerm},
	}
}

func TestApply(t *testing.T) {
	custom := types.DiscountTable{SavingsPlan: map[int]decimal.Decimal{1: dec("0.2")}}

	tests := []struct {
		name  string
		a     types.Assumptions
		table types.DiscountTable
		want  string
	}{
		{"no coverage", assumptions("0", "0", 0, 0), DefaultDiscounts(), "1000"},
		{"savings plan only", assumptions("0.6", "0", 1, 1), DefaultDiscounts().Merge(custom), "880"},
		{"default one year sp", assumptions("0.5", "0", 0, 0), DefaultDiscounts(), "910"},
		{"three year ri", assumptions("0", "1", 1, 3), DefaultDiscounts(), "450"},
		// 0.3 on demand + 0.4 × 0.82 + 0.3 × 0.65
		{"blended", assumptions("0.4", "0.3", 1, 1), DefaultDiscounts(), "823"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.a, tt.table)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := m.Apply(dec("1000")); !got.Equal(dec(tt.want)) {
				t.Errorf("Apply() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClampKeepsRI(t *testing.T) {
	m, err := New(assumptions("0.8", "0.5", 1, 1), DefaultDiscounts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !m.Clamped {
		t.Error("expected clamp")
	}
	if !m.SPCoverage.Equal(dec("0.5")) || !m.RICoverage.Equal(dec("0.5")) {
		t.Errorf("coverage sp=%s ri=%s", m.SPCoverage, m.RICoverage)
	}
	// 0.5 × 0.82 + 0.5 × 0.65
	if got := m.Apply(dec("100")); !got.Equal(dec("73.5")) {
		t.Errorf("Apply() = %s, want 73.5", got)
	}
}

func TestInvalidAssumptions(t *testing.T) {
	tests := []struct {
		name  string
		a     types.Assumptions
		field string
	}{
		{"sp above one", assumptions("1.2", "0", 1, 1), "savings_plan.coverage_pct"},
		{"negative ri", assumptions("0", "-0.1", 1, 1), "ri.coverage_pct"},
		{"unknown sp term", assumptions("0.5", "0", 2, 1), "savings_plan.term_years"},
		{"unknown ri term", assumptions("0", "0.5", 1, 5), "ri.term_years"},
		{"negative hours", types.Assumptions{HoursPerMonth: dec("-1")}, "hours_per_month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.a, DefaultDiscounts())
			if !errors.IsType(err, errors.TypeInvalidAssumptions) {
				t.Fatalf("expected InvalidAssumptions, got %v", err)
			}
			if e, _ := errors.As(err); e.Field() != tt.field {
				t.Errorf("Field() = %q, want %q", e.Field(), tt.field)
			}
		})
	}
}

func TestApplyLine(t *testing.T) {
	m, _ := New(assumptions("0", "0", 0, 0), DefaultDiscounts())
	line := types.CostLine{PaygCost: dec("12.5")}
	m.ApplyLine(&line)
	if !line.OptimizedCost.Equal(line.PaygCost) {
		t.Errorf("OptimizedCost = %s", line.OptimizedCost)
	}
}
