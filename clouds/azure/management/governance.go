// Package management - Governance cost handler
// Policy, Advisor, Blueprints, Resource Graph and management groups are
// control-plane features without consumption meters, so a bare
// component costs nothing. Naming a sku prices it as quantity × hours
// against the given service (default "Governance").
package management

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// GovernanceHandler prices "governance" components
type GovernanceHandler struct{}

// NewGovernanceHandler creates a governance handler
func NewGovernanceHandler() *GovernanceHandler {
	return &GovernanceHandler{}
}

// Type returns the component type
func (h *GovernanceHandler) Type() string {
	return "governance"
}

// Meters declares the named sku, or nothing
func (h *GovernanceHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	sku := r.String("sku", "")
	service := r.String("service", "Governance")
	product := r.String("product", "")
	unit := r.String("uom", "1 Unit")
	qty := r.Decimal("quantity", decimal.NewFromInt(1))
	// billed per month unless hours are given
	hours := r.Decimal("hours_per_month", decimal.NewFromInt(1))
	override := r.OptionalDecimal("unit_price_override")
	if err := r.Err(); err != nil {
		return nil, err
	}
	if sku == "" {
		return nil, nil
	}

	q := pricing.Query{
		Service:       service,
		Skus:          []string{sku},
		Unit:          unit,
		Product:       product,
		MeterContains: sku,
	}
	return clouds.Positive(clouds.NewMeter(sku, q, qty.Mul(hours)).WithOverride(override)), nil
}

// Price computes rate × quantity × hours
func (h *GovernanceHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	if len(meters) == 0 {
		return clouds.Line("Governance (Policy/Advisor/Blueprints, no consumption meters)", nil, nil)
	}
	r := c.Reader()
	desc := fmt.Sprintf("%s %s × %s", r.String("service", "Governance"), meters[0].Name, meters[0].Quantity)
	return clouds.Line(desc, meters, prices)
}
