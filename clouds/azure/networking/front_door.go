// Package networking - Azure Front Door and WAF cost handler
// Pricing model:
// - Base capacity hours by tier (Standard, Premium)
// - Requests per million
// - Data transfer out per GB
// - WAF policies and custom rules per month
package networking

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// FrontDoorHandler prices "front_door" components
type FrontDoorHandler struct{}

// NewFrontDoorHandler creates a Front Door handler
func NewFrontDoorHandler() *FrontDoorHandler {
	return &FrontDoorHandler{}
}

// Type returns the component type
func (h *FrontDoorHandler) Type() string {
	return "front_door"
}

func frontDoorQuery(skus []string, unit, meter string) pricing.Query {
	return pricing.Query{
		Service:       "Azure Front Door",
		Aliases:       []string{"Azure Front Door Service", "Front Door"},
		Skus:          skus,
		Unit:          unit,
		MeterContains: meter,
	}
}

// Meters declares base hours, requests, egress and WAF usage
func (h *FrontDoorHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	tier := clouds.Title(r.String("tier", "Standard"))
	hours := clouds.Hours(r, a)
	requests := r.Decimal("requests_millions", decimal.Zero)
	egress := r.Decimal("egress_gb", decimal.Zero)
	policies := r.Decimal("waf_policies", decimal.Zero)
	rules := r.Decimal("waf_rules", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	return clouds.Positive(
		clouds.NewMeter("base", frontDoorQuery([]string{tier, tier + " Base Fees", tier + " Capacity"}, "1 Hour", tier+" Base"), hours),
		clouds.NewMeter("requests", frontDoorQuery([]string{tier + " Requests", "Requests"}, "1,000,000", "Requests"), requests.Mul(clouds.Million)),
		clouds.NewMeter("data transfer out", frontDoorQuery([]string{tier + " Data Transfer Out", "Data Transfer Out"}, "1 GB", "Data Transfer Out"), egress),
		clouds.NewMeter("waf policies", frontDoorQuery([]string{"WAF Policy", tier + " WAF Policy"}, "1/Month", "Policy"), policies),
		clouds.NewMeter("waf rules", frontDoorQuery([]string{"WAF Rules", "WAF Rule", tier + " WAF Rules"}, "1/Month", "Rule"), rules),
	), nil
}

// Price sums all Front Door meters
func (h *FrontDoorHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	desc := fmt.Sprintf("Front Door %s (base+req+egress+WAF)", clouds.Title(c.Reader().String("tier", "Standard")))
	return clouds.Line(desc, meters, prices)
}
