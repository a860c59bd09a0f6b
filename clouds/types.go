// Package clouds - Component handler contract
// This package defines the contract that all component handlers must implement.
// Handlers declare Meters and turn resolved prices into cost lines - they NEVER
// resolve prices or perform I/O.
package clouds

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

// Handler prices one component type
type Handler interface {
	// Type returns the BOM component type tag (e.g., "vm")
	Type() string

	// Meters declares the billed meters of a component with quantities
	// already converted to each meter's base unit
	Meters(c types.Component, a types.Assumptions) ([]Meter, error)

	// Price combines meters and their resolved prices into a cost line.
	// prices[i] belongs to meters[i].
	Price(c types.Component, meters []Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine
}

// Meter is one billed quantity of a component
type Meter struct {
	// Name labels the charge in reports
	Name string

	// Query locates the price record
	Query pricing.Query

	// Quantity is the declared quantity in the base unit of Query.Unit
	Quantity decimal.Decimal

	// Override is a price per Query.Unit supplied on the component.
	// When set the meter is not resolved.
	Override *decimal.Decimal

	// Multiplier scales the cost (e.g. 1.5 for zone redundancy); zero means 1
	Multiplier decimal.Decimal
}

// NewMeter creates a meter
func NewMeter(name string, q pricing.Query, quantity decimal.Decimal) Meter {
	return Meter{Name: name, Query: q, Quantity: quantity}
}

// WithOverride returns the meter with a fixed unit price
func (m Meter) WithOverride(price *decimal.Decimal) Meter {
	m.Override = price
	return m
}

// Times returns the meter with a cost multiplier
func (m Meter) Times(f decimal.Decimal) Meter {
	m.Multiplier = f
	return m
}

func (m Meter) multiplier() decimal.Decimal {
	if m.Multiplier.IsZero() {
		return decimal.NewFromInt(1)
	}
	return m.Multiplier
}

// Validate rejects negative quantities, prices and multipliers
func Validate(componentType string, meters []Meter) error {
	for _, m := range meters {
		field := fmt.Sprintf("%s.%s", componentType, m.Name)
		if m.Quantity.IsNegative() {
			return errors.InvalidAssumptions(field, "quantity %s is negative", m.Quantity)
		}
		if m.Override != nil && m.Override.IsNegative() {
			return errors.InvalidAssumptions(field, "unit price override %s is negative", m.Override)
		}
		if m.Multiplier.IsNegative() {
			return errors.InvalidAssumptions(field, "multiplier %s is negative", m.Multiplier)
		}
	}
	return nil
}

// Hours reads hours_per_month from a component, falling back to the run assumption
func Hours(r *types.FieldReader, a types.Assumptions) decimal.Decimal {
	return r.Decimal("hours_per_month", a.Hours())
}

// Positive drops meters with a zero quantity. Negative quantities are
// kept so Validate can reject them.
func Positive(meters ...Meter) []Meter {
	out := make([]Meter, 0, len(meters))
	for _, m := range meters {
		if !m.Quantity.IsZero() {
			out = append(out, m)
		}
	}
	return out
}

// Million is the batch size of per-million meters
var Million = decimal.NewFromInt(1000000)
