// Package networking - Private Endpoint and NAT Gateway cost handler
// Pricing model:
// - Private endpoint hours
// - NAT gateway hours and data processed per GB
package networking

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// PrivateNetworkingHandler prices "private_networking" components
type PrivateNetworkingHandler struct{}

// NewPrivateNetworkingHandler creates a private networking handler
func NewPrivateNetworkingHandler() *PrivateNetworkingHandler {
	return &PrivateNetworkingHandler{}
}

// Type returns the component type
func (h *PrivateNetworkingHandler) Type() string {
	return "private_networking"
}

// Meters declares endpoint hours, gateway hours and NAT data
func (h *PrivateNetworkingHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	endpoints := r.Decimal("private_endpoints", decimal.Zero)
	peHours := r.Decimal("pe_hours", a.Hours())
	gateways := r.Decimal("nat_gateways", decimal.Zero)
	natHours := r.Decimal("nat_hours", a.Hours())
	natData := r.Decimal("nat_data_gb", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	meters := []clouds.Meter{
		clouds.NewMeter("private endpoints", pricing.Query{
			Service:       "Private Link",
			Aliases:       []string{"Virtual Network"},
			Skus:          []string{"Private Endpoint", "Standard Private Endpoint", "Standard"},
			Unit:          "1 Hour",
			MeterContains: "Private Endpoint",
		}, endpoints.Mul(peHours)),
		clouds.NewMeter("nat gateway hours", pricing.Query{
			Service:       "NAT Gateway",
			Aliases:       []string{"Virtual Network"},
			Skus:          []string{"Gateway Hours", "Standard Gateway", "Standard"},
			Unit:          "1 Hour",
			MeterContains: "Gateway",
		}, gateways.Mul(natHours)),
	}
	// NAT data is only billed through a gateway
	if gateways.IsPositive() {
		meters = append(meters, clouds.NewMeter("nat data processed", pricing.Query{
			Service:       "NAT Gateway",
			Aliases:       []string{"Virtual Network"},
			Skus:          []string{"Data Processed", "Standard Data Processed"},
			Unit:          "1 GB",
			MeterContains: "Data Processed",
		}, natData))
	}
	return clouds.Positive(meters...), nil
}

// Price sums endpoint and NAT meters
func (h *PrivateNetworkingHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Private networking (%s PE, %s NAT)",
		r.Decimal("private_endpoints", decimal.Zero), r.Decimal("nat_gateways", decimal.Zero))
	return clouds.Line(desc, meters, prices)
}
