// Package compute - Azure Kubernetes Service cost handler
// Pricing model:
// - Control plane Uptime SLA hours (free tier has no charge)
// - Node pools are priced as "vm" components
package compute

import (
	"fmt"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// AKSHandler prices "aks_cluster" components
type AKSHandler struct{}

// NewAKSHandler creates an AKS handler
func NewAKSHandler() *AKSHandler {
	return &AKSHandler{}
}

// Type returns the component type
func (h *AKSHandler) Type() string {
	return "aks_cluster"
}

// Meters declares Uptime SLA hours, or nothing when the SLA is off
func (h *AKSHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	sla := r.Bool("uptime_sla", true)
	hours := clouds.Hours(r, a)
	if err := r.Err(); err != nil {
		return nil, err
	}
	if !sla {
		return nil, nil
	}

	q := pricing.Query{
		Service:       "Azure Kubernetes Service",
		Aliases:       []string{"Kubernetes Service (AKS)"},
		Skus:          []string{"Uptime SLA", "Standard"},
		Unit:          "1 Hour",
		MeterContains: "Uptime SLA",
	}
	return []clouds.Meter{
		clouds.NewMeter("uptime sla", q, hours),
	}, nil
}

// Price computes rate × hours
func (h *AKSHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	if len(meters) == 0 {
		return clouds.Line("AKS control plane (free tier)", nil, nil)
	}
	return clouds.Line(fmt.Sprintf("AKS Uptime SLA × %sh", meters[0].Quantity), meters, prices)
}
