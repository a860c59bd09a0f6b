// Package networking - Azure API Management cost handler
// Pricing model:
// - Dedicated tiers: gateway unit hours, plus optional calls per million
// - Consumption tier: calls per million only
package networking

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// APIManagementHandler prices "api_management" components
type APIManagementHandler struct{}

// NewAPIManagementHandler creates an API Management handler
func NewAPIManagementHandler() *APIManagementHandler {
	return &APIManagementHandler{}
}

// Type returns the component type
func (h *APIManagementHandler) Type() string {
	return "api_management"
}

// Meters declares gateway unit hours and calls
func (h *APIManagementHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	tier := clouds.Title(r.String("tier", "Developer"))
	units := r.Decimal("gateway_units", decimal.NewFromInt(1))
	hours := clouds.Hours(r, a)
	calls := r.Decimal("calls_per_million", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	requests := clouds.NewMeter("calls", pricing.Query{
		Service:       "API Management",
		Skus:          []string{"Requests", "Consumption Calls", tier + " Calls"},
		Unit:          "1,000,000",
		MeterContains: "Calls",
	}, calls.Mul(clouds.Million))

	if tier == "Consumption" {
		requests.Query.Skus = []string{"Consumption Calls", "Requests"}
		return []clouds.Meter{requests}, nil
	}

	gateway := clouds.NewMeter("gateway units", pricing.Query{
		Service:       "API Management",
		Skus:          []string{tier + " Gateway Unit", tier + " Unit", tier},
		Unit:          "1 Hour",
		MeterContains: tier + " Unit",
	}, units.Mul(hours))
	return clouds.Positive(gateway, requests), nil
}

// Price computes unit rate × units × hours plus calls
func (h *APIManagementHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	tier := clouds.Title(r.String("tier", "Developer"))
	var desc string
	if tier == "Consumption" {
		desc = fmt.Sprintf("APIM %s %sM calls", tier, r.Decimal("calls_per_million", decimal.Zero))
	} else {
		desc = fmt.Sprintf("APIM %s %s units × %sh", tier, r.Decimal("gateway_units", decimal.NewFromInt(1)), clouds.Hours(r, a))
	}
	return clouds.Line(desc, meters, prices)
}
