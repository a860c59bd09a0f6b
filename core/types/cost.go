// Package types - Cost lines and totals
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code. It is a label only; no conversion happens.
type Currency string

const (
	CurrencyAUD Currency = "AUD"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"

	// DefaultCurrency is used when neither the BOM nor the caller names one
	DefaultCurrency = CurrencyAUD
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Equal compares two currency codes case-insensitively
func (c Currency) Equal(o Currency) bool {
	return strings.EqualFold(string(c), string(o))
}

// MatchLevel records how a price was found
type MatchLevel string

const (
	MatchExact   MatchLevel = "exact"
	MatchRelaxed MatchLevel = "relaxed"
	MatchFamily  MatchLevel = "family"
	MatchNone    MatchLevel = "none"
	// MatchOverride marks a unit price supplied on the component itself
	MatchOverride MatchLevel = "override"
)

// Charge is one billed meter of a cost line
type Charge struct {
	// Name is the meter label, e.g. "Execution Time"
	Name string `json:"name"`

	// Quantity is the declared quantity in the meter's base unit
	Quantity decimal.Decimal `json:"quantity"`

	// QuantityBilled is Quantity divided by the unit-of-measure batch size
	QuantityBilled decimal.Decimal `json:"quantity_billed"`

	// UnitOfMeasure is the resolved record's unit, empty when unresolved
	UnitOfMeasure string `json:"unit_of_measure,omitempty"`

	UnitPrice decimal.Decimal `json:"unit_price"`
	Cost      decimal.Decimal `json:"cost"`

	Resolved bool       `json:"resolved"`
	Match    MatchLevel `json:"match"`
	Source   SourceKind `json:"source,omitempty"`

	// RegionMismatch is set when the record's region differs from the requested one
	RegionMismatch bool `json:"region_mismatch,omitempty"`

	// Attempts lists lookup keys tried when unresolved
	Attempts []string `json:"attempts,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// CostLine is the priced result for one BOM component
type CostLine struct {
	Workload  string `json:"workload"`
	Tier      string `json:"tier"`
	Type      string `json:"type"`
	Component int    `json:"component"`

	Description string `json:"description"`

	// QuantityBilled is the unit-adjusted quantity of the primary meter
	QuantityBilled decimal.Decimal `json:"quantity_billed"`

	PaygCost      decimal.Decimal `json:"payg_cost"`
	OptimizedCost decimal.Decimal `json:"optimized_cost"`

	// Resolved is false when any meter with a positive quantity had no price
	Resolved bool `json:"resolved"`

	Charges []Charge `json:"charges,omitempty"`
}

// Match returns the weakest match level across the line's charges
func (l *CostLine) Match() MatchLevel {
	rank := map[MatchLevel]int{MatchOverride: 0, MatchExact: 1, MatchRelaxed: 2, MatchFamily: 3, MatchNone: 4}
	worst := MatchOverride
	for _, c := range l.Charges {
		if c.Quantity.IsZero() {
			continue
		}
		if rank[c.Match] > rank[worst] {
			worst = c.Match
		}
	}
	if len(l.Charges) == 0 {
		return MatchNone
	}
	return worst
}

// Sources returns the distinct sources used by the line, in charge order
func (l *CostLine) Sources() []SourceKind {
	var out []SourceKind
	seen := make(map[SourceKind]bool)
	for _, c := range l.Charges {
		if c.Source == "" || seen[c.Source] {
			continue
		}
		seen[c.Source] = true
		out = append(out, c.Source)
	}
	return out
}

// Totals is a PAYG and optimized pair
type Totals struct {
	Payg      decimal.Decimal `json:"payg"`
	Optimized decimal.Decimal `json:"optimized"`
}

// Add returns the sum of two totals
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Payg:      t.Payg.Add(o.Payg),
		Optimized: t.Optimized.Add(o.Optimized),
	}
}

// AddLine returns the totals with a cost line added
func (t Totals) AddLine(l CostLine) Totals {
	return Totals{
		Payg:      t.Payg.Add(l.PaygCost),
		Optimized: t.Optimized.Add(l.OptimizedCost),
	}
}

// Savings returns PAYG minus optimized
func (t Totals) Savings() decimal.Decimal {
	return t.Payg.Sub(t.Optimized)
}

// WorkloadTotal is the derived total for one workload
type WorkloadTotal struct {
	Name   string     `json:"name"`
	Tier   string     `json:"tier"`
	Lines  []CostLine `json:"lines"`
	Totals Totals     `json:"totals"`
}

// TierTotal is the derived total for one tier label
type TierTotal struct {
	Tier      string   `json:"tier"`
	Workloads []string `json:"workloads"`
	Totals    Totals   `json:"totals"`
}
