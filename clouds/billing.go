package clouds

import (
	"github.com/shopspring/decimal"

	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/core/units"
)

// Bill prices one meter. The declared quantity is divided by the batch
// size of the record's unit of measure and floored at the record's tier
// minimum. An unresolved meter keeps its quantity but costs nothing.
func Bill(m Meter, p pricing.ResolvedPrice) types.Charge {
	ch := types.Charge{
		Name:     m.Name,
		Quantity: m.Quantity,
		Match:    p.Match,
		Warnings: p.Warnings,
	}

	if m.Override != nil {
		ch.QuantityBilled = m.Quantity.Div(units.BatchSize(m.Query.Unit))
		ch.UnitOfMeasure = m.Query.Unit
		ch.UnitPrice = *m.Override
		ch.Cost = m.Override.Mul(ch.QuantityBilled).Mul(m.multiplier())
		ch.Resolved = true
		ch.Match = types.MatchOverride
		return ch
	}

	if !p.Resolved() {
		ch.QuantityBilled = m.Quantity.Div(units.BatchSize(m.Query.Unit))
		ch.UnitOfMeasure = m.Query.Unit
		ch.Cost = decimal.Zero
		ch.Match = types.MatchNone
		// a zero quantity needs no price
		ch.Resolved = m.Quantity.IsZero()
		ch.Attempts = p.AttemptKeys()
		return ch
	}

	r := p.Record
	billed := m.Quantity.Div(units.BatchSize(r.UnitOfMeasure, r.MeterName, r.ProductName, r.SkuName))
	if floor := r.TierMinimum(); floor.IsPositive() && m.Quantity.IsPositive() && billed.LessThan(floor) {
		billed = floor
	}

	ch.QuantityBilled = billed
	ch.UnitOfMeasure = r.UnitOfMeasure
	ch.UnitPrice = r.UnitPrice
	ch.Cost = r.UnitPrice.Mul(billed).Mul(m.multiplier())
	ch.Resolved = true
	ch.Source = p.Source
	ch.RegionMismatch = p.RegionMismatch
	return ch
}

// Line builds a cost line from meters and their prices. The first meter
// is the primary one whose billed quantity the line reports.
func Line(description string, meters []Meter, prices []pricing.ResolvedPrice) types.CostLine {
	line := types.CostLine{
		Description: description,
		PaygCost:    decimal.Zero,
		Resolved:    true,
	}
	for i, m := range meters {
		var p pricing.ResolvedPrice
		if i < len(prices) {
			p = prices[i]
		} else {
			p = pricing.Unresolved(nil)
		}
		ch := Bill(m, p)
		if i == 0 {
			line.QuantityBilled = ch.QuantityBilled
		}
		if !ch.Resolved {
			line.Resolved = false
		}
		line.PaygCost = line.PaygCost.Add(ch.Cost)
		line.Charges = append(line.Charges, ch)
	}
	return line
}

// ResolveFunc looks up the price for one meter query
type ResolveFunc func(q pricing.Query) pricing.ResolvedPrice

// ComputeCostLine runs a component through its handler: declare meters,
// reject negative quantities, resolve every meter without an override,
// then price.
func ComputeCostLine(h Handler, c types.Component, a types.Assumptions, resolve ResolveFunc) (types.CostLine, error) {
	meters, err := h.Meters(c, a)
	if err != nil {
		return types.CostLine{}, err
	}
	if err := Validate(h.Type(), meters); err != nil {
		return types.CostLine{}, err
	}

	prices := make([]pricing.ResolvedPrice, len(meters))
	for i, m := range meters {
		if m.Override == nil {
			prices[i] = resolve(m.Query)
		}
	}

	line := h.Price(c, meters, prices, a)
	line.Type = c.Type
	return line, nil
}
