// Package types - Bill of Materials input
package types

import (
	"github.com/shopspring/decimal"
)

// DefaultHoursPerMonth is the hours-in-a-month convention for hourly meters
var DefaultHoursPerMonth = decimal.NewFromInt(730)

// BOM is a declarative inventory of workloads to cost
type BOM struct {
	// Region is the deployment region in display ("Australia East") or ARM ("australiaeast") form
	Region string `json:"region"`

	// Currency is the label prices are requested in
	Currency Currency `json:"currency,omitempty"`

	Assumptions Assumptions `json:"assumptions"`

	Workloads []Workload `json:"workloads"`
}

// ComponentCount returns the number of components across all workloads
func (b *BOM) ComponentCount() int {
	n := 0
	for _, w := range b.Workloads {
		n += len(w.Components)
	}
	return n
}

// ComponentTypes returns the distinct component types in declared order
func (b *BOM) ComponentTypes() []string {
	var out []string
	seen := make(map[string]bool)
	for _, w := range b.Workloads {
		for _, c := range w.Components {
			if !seen[c.Type] {
				seen[c.Type] = true
				out = append(out, c.Type)
			}
		}
	}
	return out
}

// Workload groups components under a name and tier label
type Workload struct {
	Name       string      `json:"name"`
	Tier       string      `json:"tier,omitempty"`
	Components []Component `json:"components"`
}

// Assumptions are run-wide inputs to quantity and discount formulas
type Assumptions struct {
	// HoursPerMonth is the default for hourly meters (730 when zero)
	HoursPerMonth decimal.Decimal `json:"hours_per_month"`

	SavingsPlan      Commitment `json:"savings_plan"`
	ReservedInstance Commitment `json:"ri"`

	// Discounts overrides the configured discount table for this run
	Discounts DiscountTable `json:"discounts,omitempty"`
}

// DiscountTable maps a commitment term in years to a discount fraction
type DiscountTable struct {
	SavingsPlan      map[int]decimal.Decimal `json:"savings_plan,omitempty"`
	ReservedInstance map[int]decimal.Decimal `json:"ri,omitempty"`
}

// Merge returns t with every entry of o laid over it
func (t DiscountTable) Merge(o DiscountTable) DiscountTable {
	out := DiscountTable{
		SavingsPlan:      make(map[int]decimal.Decimal, len(t.SavingsPlan)+len(o.SavingsPlan)),
		ReservedInstance: make(map[int]decimal.Decimal, len(t.ReservedInstance)+len(o.ReservedInstance)),
	}
	for k, v := range t.SavingsPlan {
		out.SavingsPlan[k] = v
	}
	for k, v := range o.SavingsPlan {
		out.SavingsPlan[k] = v
	}
	for k, v := range t.ReservedInstance {
		out.ReservedInstance[k] = v
	}
	for k, v := range o.ReservedInstance {
		out.ReservedInstance[k] = v
	}
	return out
}

// Hours returns HoursPerMonth, defaulting to 730
func (a Assumptions) Hours() decimal.Decimal {
	if a.HoursPerMonth.IsPositive() {
		return a.HoursPerMonth
	}
	return DefaultHoursPerMonth
}

// Commitment is a capacity commitment expressed as a coverage fraction
type Commitment struct {
	// CoveragePct is the covered fraction of spend in [0,1]
	CoveragePct decimal.Decimal `json:"coverage_pct"`

	// TermYears selects the discount; 0 means the default one-year term
	TermYears int `json:"term_years,omitempty"`
}

// Term returns TermYears, defaulting to one year
func (c Commitment) Term() int {
	if c.TermYears == 0 {
		return 1
	}
	return c.TermYears
}
