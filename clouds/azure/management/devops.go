// Package management - Azure DevOps and governance cost handlers
// Azure DevOps is billed through organisation or Marketplace billing and
// has no retail catalogue meters. A usage item is only priced when its
// unit price is supplied in unit_price_overrides; otherwise the line
// carries no charges.
package management

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

var devopsItems = []struct {
	meter    string
	field    string
	override string
}{
	{"parallel jobs", "parallel_jobs", "parallel_job"},
	{"basic users", "extra_users", "user"},
	{"test plans users", "test_plans_users", "test_plans_user"},
	{"artifacts storage", "artifacts_gb", "artifacts_gb"},
}

// DevOpsHandler prices "devops" components
type DevOpsHandler struct{}

// NewDevOpsHandler creates an Azure DevOps handler
func NewDevOpsHandler() *DevOpsHandler {
	return &DevOpsHandler{}
}

// Type returns the component type
func (h *DevOpsHandler) Type() string {
	return "devops"
}

// Meters declares each usage item that has a supplied unit price
func (h *DevOpsHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	overrides := types.Component{Type: c.Type, Fields: r.Map("unit_price_overrides")}.Reader()

	var meters []clouds.Meter
	for _, item := range devopsItems {
		qty := r.Decimal(item.field, decimal.Zero)
		price := overrides.OptionalDecimal(item.override)
		if price == nil {
			continue
		}
		q := pricing.Query{Service: "Azure DevOps", Skus: []string{clouds.Title(item.meter)}, Unit: "1/Month"}
		meters = append(meters, clouds.NewMeter(item.meter, q, qty).WithOverride(price))
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := overrides.Err(); err != nil {
		return nil, err
	}
	return clouds.Positive(meters...), nil
}

// Price sums the supplied items
func (h *DevOpsHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	if len(meters) == 0 {
		return clouds.Line("Azure DevOps (not in the retail catalogue; set unit_price_overrides to price it)", nil, nil)
	}
	parts := make([]string, 0, len(meters))
	for _, m := range meters {
		parts = append(parts, fmt.Sprintf("%s %s", m.Quantity, m.Name))
	}
	return clouds.Line("Azure DevOps "+strings.Join(parts, ", "), meters, prices)
}
