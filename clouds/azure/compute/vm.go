// Package compute - Azure VM cost handler
// Pricing model:
// - Instance hours (by VM size and region)
// - Linux rates unless os is windows
// - Spot and low priority meters are never used for on-demand estimates
package compute

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

// VMHandler prices "vm" components
type VMHandler struct{}

// NewVMHandler creates a VM handler
func NewVMHandler() *VMHandler {
	return &VMHandler{}
}

// Type returns the component type
func (h *VMHandler) Type() string {
	return "vm"
}

// Meters declares instance hours
func (h *VMHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()

	sku := r.String("sku", "")
	if sku == "" {
		return nil, errors.Input("vm: sku is required").WithContext("field", "sku")
	}

	q := pricing.Query{
		Service: r.String("service", "Virtual Machines"),
		Skus:    clouds.SkuVariants(sku),
		Unit:    r.String("uom", "1 Hour"),
		Product: r.String("product", ""),
		Exclude: []string{"spot", "low priority"},
	}
	if strings.EqualFold(r.String("os", "linux"), "windows") {
		if q.Product == "" {
			q.Product = "Windows"
		}
	} else {
		q.Exclude = append(q.Exclude, "windows")
	}

	instances := r.FirstDecimal(decimal.NewFromInt(1), "quantity", "instances")
	hours := clouds.Hours(r, a)
	if err := r.Err(); err != nil {
		return nil, err
	}

	return []clouds.Meter{
		clouds.NewMeter("compute", q, instances.Mul(hours)),
	}, nil
}

// Price computes rate × instances × hours
func (h *VMHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("VM %s × %s × %sh",
		r.String("sku", ""),
		r.FirstDecimal(decimal.NewFromInt(1), "quantity", "instances"),
		clouds.Hours(r, a))
	return clouds.Line(desc, meters, prices)
}
