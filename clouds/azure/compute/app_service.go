// Package compute - Azure App Service plan cost handler
// Pricing model:
// - Plan instance hours (by tier sku, e.g. P1v3)
// - Service name differs across sources: "Azure App Service", "App Service"
package compute

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// AppServiceHandler prices "app_service" components
type AppServiceHandler struct{}

// NewAppServiceHandler creates an App Service handler
func NewAppServiceHandler() *AppServiceHandler {
	return &AppServiceHandler{}
}

// Type returns the component type
func (h *AppServiceHandler) Type() string {
	return "app_service"
}

// Meters declares plan instance hours
func (h *AppServiceHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()

	sku := r.String("sku", "P1v3")
	q := pricing.Query{
		Service:       "Azure App Service",
		Aliases:       []string{"App Service", "App Service - Linux", "App Service - Windows"},
		Skus:          clouds.Distinct(sku, strings.ToUpper(sku), sku+" App"),
		Unit:          "1 Hour",
		MeterContains: sku,
	}
	switch strings.ToLower(r.String("os", "")) {
	case "windows":
		q.Exclude = []string{"linux"}
	case "linux":
		q.Exclude = []string{"windows"}
	}

	instances := r.Decimal("instances", decimal.NewFromInt(1))
	hours := clouds.Hours(r, a)
	if err := r.Err(); err != nil {
		return nil, err
	}

	return []clouds.Meter{
		clouds.NewMeter("plan", q, instances.Mul(hours)),
	}, nil
}

// Price computes rate × instances × hours
func (h *AppServiceHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("App Service %s × %s × %sh",
		r.String("sku", "P1v3"), r.Decimal("instances", decimal.NewFromInt(1)), clouds.Hours(r, a))
	return clouds.Line(desc, meters, prices)
}
