// Package security - Microsoft Defender for Cloud cost handler
// Pricing model:
// - Protected resource hours per plan (Servers, App Service, SQL, ...)
package security

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// DefenderHandler prices "defender" components
type DefenderHandler struct{}

// NewDefenderHandler creates a Defender handler
func NewDefenderHandler() *DefenderHandler {
	return &DefenderHandler{}
}

// Type returns the component type
func (h *DefenderHandler) Type() string {
	return "defender"
}

// Meters declares protected resource hours
func (h *DefenderHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	plan := clouds.Title(r.String("plan", "Servers"))
	count := r.Decimal("resource_count", decimal.Zero)
	hours := clouds.Hours(r, a)
	if err := r.Err(); err != nil {
		return nil, err
	}

	q := pricing.Query{
		Service:       "Microsoft Defender for Cloud",
		Aliases:       []string{"Azure Defender", "Advanced Threat Protection"},
		Skus:          clouds.Distinct(plan, "Standard "+plan, plan+" Plan 2", plan+" Plan 1"),
		Unit:          "1 Hour",
		MeterContains: plan,
	}
	return clouds.Positive(clouds.NewMeter("protected resources", q, count.Mul(hours))), nil
}

// Price computes rate × resources × hours
func (h *DefenderHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Defender %s × %s resources × %sh",
		clouds.Title(r.String("plan", "Servers")), r.Decimal("resource_count", decimal.Zero), clouds.Hours(r, a))
	return clouds.Line(desc, meters, prices)
}
