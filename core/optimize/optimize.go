// Package optimize applies Savings Plan and Reserved Instance coverage
// to PAYG cost.
//
// The model is a linear blend: each covered share of spend is billed at
// its commitment discount and the remainder stays on demand.
//
//	optimized = payg × [(1 − sp − ri) + sp × (1 − d_sp) + ri × (1 − d_ri)]
//
// RI coverage is taken first; when sp + ri exceeds 1 the SP share is cut
// to 1 − ri.
package optimize

import (
	"github.com/shopspring/decimal"

	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

var one = decimal.NewFromInt(1)

// DefaultDiscounts returns the built-in discount table
func DefaultDiscounts() types.DiscountTable {
	return types.DiscountTable{
		SavingsPlan: map[int]decimal.Decimal{
			1: decimal.RequireFromString("0.18"),
			3: decimal.RequireFromString("0.33"),
		},
		ReservedInstance: map[int]decimal.Decimal{
			1: decimal.RequireFromString("0.35"),
			3: decimal.RequireFromString("0.55"),
		},
	}
}

// Model is a validated set of coverages and discounts
type Model struct {
	SPCoverage decimal.Decimal
	SPDiscount decimal.Decimal
	RICoverage decimal.Decimal
	RIDiscount decimal.Decimal

	// Clamped is set when SP coverage was reduced to fit under RI
	Clamped bool
}

// New validates assumptions against a discount table. The table from the
// assumptions, if any, is laid over base.
func New(a types.Assumptions, base types.DiscountTable) (*Model, error) {
	table := base.Merge(a.Discounts)

	if a.HoursPerMonth.IsNegative() {
		return nil, errors.InvalidAssumptions("hours_per_month", "hours_per_month must not be negative, got %s", a.HoursPerMonth)
	}

	sp := a.SavingsPlan.CoveragePct
	ri := a.ReservedInstance.CoveragePct
	if err := checkFraction("savings_plan.coverage_pct", sp); err != nil {
		return nil, err
	}
	if err := checkFraction("ri.coverage_pct", ri); err != nil {
		return nil, err
	}

	spDiscount, err := discount("savings_plan", table.SavingsPlan, a.SavingsPlan.Term())
	if err != nil {
		return nil, err
	}
	riDiscount, err := discount("ri", table.ReservedInstance, a.ReservedInstance.Term())
	if err != nil {
		return nil, err
	}

	m := &Model{
		SPCoverage: sp,
		SPDiscount: spDiscount,
		RICoverage: ri,
		RIDiscount: riDiscount,
	}
	if sp.Add(ri).GreaterThan(one) {
		m.SPCoverage = one.Sub(ri)
		m.Clamped = true
	}
	return m, nil
}

// Validate checks assumptions without keeping the model
func Validate(a types.Assumptions, base types.DiscountTable) error {
	_, err := New(a, base)
	return err
}

func checkFraction(field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(one) {
		return errors.InvalidAssumptions(field, "%s must be between 0 and 1, got %s", field, v)
	}
	return nil
}

func discount(kind string, table map[int]decimal.Decimal, term int) (decimal.Decimal, error) {
	field := kind + ".term_years"
	d, ok := table[term]
	if !ok {
		return decimal.Zero, errors.InvalidAssumptions(field, "no %s discount for a %d year term", kind, term)
	}
	if d.IsNegative() || d.GreaterThan(one) {
		return decimal.Zero, errors.InvalidAssumptions(field, "%s discount for %d years must be between 0 and 1, got %s", kind, term, d)
	}
	return d, nil
}

// Factor returns the multiplier applied to PAYG cost
func (m *Model) Factor() decimal.Decimal {
	onDemand := one.Sub(m.SPCoverage).Sub(m.RICoverage)
	return onDemand.
		Add(m.SPCoverage.Mul(one.Sub(m.SPDiscount))).
		Add(m.RICoverage.Mul(one.Sub(m.RIDiscount)))
}

// Apply returns the optimized cost for a PAYG amount
func (m *Model) Apply(payg decimal.Decimal) decimal.Decimal {
	return payg.Mul(m.Factor())
}

// ApplyLine sets OptimizedCost on a cost line
func (m *Model) ApplyLine(l *types.CostLine) {
	l.OptimizedCost = m.Apply(l.PaygCost)
}
