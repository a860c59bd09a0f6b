// Package analytics - Azure Databricks cost handler
// Pricing model:
// - DBU hours by plan tier and compute workload
// Cluster VMs are priced separately as "vm" components.
package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// DatabricksHandler prices "databricks" components
type DatabricksHandler struct{}

// NewDatabricksHandler creates a Databricks handler
func NewDatabricksHandler() *DatabricksHandler {
	return &DatabricksHandler{}
}

// Type returns the component type
func (h *DatabricksHandler) Type() string {
	return "databricks"
}

// Meters declares DBU hours
func (h *DatabricksHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	tier := clouds.Title(r.String("tier", "Premium"))
	workload := clouds.Title(r.String("workload", "All-purpose"))
	dbuHours := r.Decimal("dbu_hours", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	q := pricing.Query{
		Service: "Azure Databricks",
		Skus: clouds.Distinct(
			tier+" "+workload+" Compute DBU",
			tier+" "+workload+" Compute",
			tier+" DBU",
		),
		Unit:          "1 Hour",
		MeterContains: "DBU",
		RequireAny:    []string{tier},
	}
	return clouds.Positive(clouds.NewMeter("dbu hours", q, dbuHours)), nil
}

// Price computes rate × DBU hours
func (h *DatabricksHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	tier := clouds.Title(r.String("tier", "Premium"))
	if len(meters) == 0 {
		return clouds.Line(fmt.Sprintf("Databricks %s (0 DBU hours)", tier), nil, nil)
	}
	return clouds.Line(fmt.Sprintf("Databricks %s × %s DBU-h", tier, meters[0].Quantity), meters, prices)
}
