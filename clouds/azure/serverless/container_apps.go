// Package serverless - Azure Container Apps (Consumption) cost handler
// Pricing model:
// - vCPU duration in seconds
// - Memory duration in GB-seconds
// - Requests, declared in millions
package serverless

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// ContainerAppsHandler prices "container_apps" components
type ContainerAppsHandler struct{}

// NewContainerAppsHandler creates a Container Apps handler
func NewContainerAppsHandler() *ContainerAppsHandler {
	return &ContainerAppsHandler{}
}

// Type returns the component type
func (h *ContainerAppsHandler) Type() string {
	return "container_apps"
}

func containerAppsQuery(sku, unit string) pricing.Query {
	return pricing.Query{
		Service:       "Container Apps",
		Aliases:       []string{"Azure Container Apps"},
		Skus:          []string{sku, "Standard " + sku},
		Unit:          unit,
		MeterContains: sku,
	}
}

// Meters declares vCPU seconds, memory GB-seconds and requests
func (h *ContainerAppsHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	vcpu := r.Decimal("vcpu_seconds", decimal.Zero)
	mem := r.Decimal("memory_gb_seconds", decimal.Zero)
	requests := r.Decimal("requests_1m", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	return clouds.Positive(
		clouds.NewMeter("vcpu duration", containerAppsQuery("vCPU Duration", "1,000,000 Seconds"), vcpu),
		clouds.NewMeter("memory duration", containerAppsQuery("Memory Duration", "1,000,000 GB Seconds"), mem),
		clouds.NewMeter("requests", containerAppsQuery("Requests", "1,000,000"), requests.Mul(clouds.Million)),
	), nil
}

// Price sums the three consumption meters
func (h *ContainerAppsHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Container Apps %s vCPU-s, %s GB-s, %sM req",
		r.Decimal("vcpu_seconds", decimal.Zero), r.Decimal("memory_gb_seconds", decimal.Zero), r.Decimal("requests_1m", decimal.Zero))
	return clouds.Line(desc, meters, prices)
}
