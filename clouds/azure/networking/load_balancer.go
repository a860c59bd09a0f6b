// Package networking - Azure Load Balancer and Application Gateway v2 cost handlers
// Pricing model:
// - Load Balancer: data processed per GB, rule hours
// - Application Gateway v2: capacity unit hours, data processed per GB
package networking

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// LoadBalancerHandler prices "load_balancer" components
type LoadBalancerHandler struct{}

// NewLoadBalancerHandler creates a Load Balancer handler
func NewLoadBalancerHandler() *LoadBalancerHandler {
	return &LoadBalancerHandler{}
}

// Type returns the component type
func (h *LoadBalancerHandler) Type() string {
	return "load_balancer"
}

// Meters declares data processed and rule hours
func (h *LoadBalancerHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	sku := clouds.Title(r.String("sku", "Standard"))
	data := r.Decimal("data_processed_gb", decimal.Zero)
	rules := r.Decimal("rules", decimal.Zero)
	hours := clouds.Hours(r, a)
	if err := r.Err(); err != nil {
		return nil, err
	}

	return clouds.Positive(
		clouds.NewMeter("data processed", pricing.Query{
			Service:       "Load Balancer",
			Skus:          []string{sku + " Data Processed", "Data Processed", "Outbound Data Processed", "Processed Data", sku},
			Unit:          "1 GB",
			MeterContains: "Data Processed",
		}, data),
		clouds.NewMeter("rule hours", pricing.Query{
			Service:       "Load Balancer",
			Skus:          []string{sku + " Rule Hours", "Rule Hours", "LB Rule Hours", "Rule", sku},
			Unit:          "1 Hour",
			MeterContains: "Rule",
		}, rules.Mul(hours)),
	), nil
}

// Price sums data and rule hours
func (h *LoadBalancerHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Load Balancer %s (data:%sGB, rules:%s × %sh)",
		clouds.Title(r.String("sku", "Standard")),
		r.Decimal("data_processed_gb", decimal.Zero),
		r.Decimal("rules", decimal.Zero),
		clouds.Hours(r, a))
	return clouds.Line(desc, meters, prices)
}

// AppGatewayHandler prices "app_gateway" components
type AppGatewayHandler struct{}

// NewAppGatewayHandler creates an Application Gateway handler
func NewAppGatewayHandler() *AppGatewayHandler {
	return &AppGatewayHandler{}
}

// Type returns the component type
func (h *AppGatewayHandler) Type() string {
	return "app_gateway"
}

// Meters declares capacity unit hours and data processed
func (h *AppGatewayHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	capacity := r.Decimal("capacity_units", decimal.Zero)
	data := r.Decimal("data_processed_gb", decimal.Zero)
	hours := clouds.Hours(r, a)
	if err := r.Err(); err != nil {
		return nil, err
	}

	return clouds.Positive(
		clouds.NewMeter("capacity units", pricing.Query{
			Service:       "Application Gateway",
			Skus:          []string{"v2 Capacity Unit", "Standard v2 Capacity Unit", "Capacity Unit", "Capacity Units"},
			Unit:          "1 Hour",
			MeterContains: "Capacity Unit",
		}, capacity.Mul(hours)),
		clouds.NewMeter("data processed", pricing.Query{
			Service:       "Application Gateway",
			Skus:          []string{"Data Processed", "Outbound Data Processed", "Processed Data"},
			Unit:          "1 GB",
			MeterContains: "Data Processed",
		}, data),
	), nil
}

// Price sums capacity and data processed
func (h *AppGatewayHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("App Gateway v2 (CU:%s × %sh, data:%sGB)",
		r.Decimal("capacity_units", decimal.Zero), clouds.Hours(r, a), r.Decimal("data_processed_gb", decimal.Zero))
	return clouds.Line(desc, meters, prices)
}
