// Package networking - Azure bandwidth (egress) cost handler
// Pricing model:
// - Data transfer out per GB, by zone/route sku
package networking

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// BandwidthHandler prices "bandwidth_egress" components
type BandwidthHandler struct{}

// NewBandwidthHandler creates a bandwidth handler
func NewBandwidthHandler() *BandwidthHandler {
	return &BandwidthHandler{}
}

// Type returns the component type
func (h *BandwidthHandler) Type() string {
	return "bandwidth_egress"
}

// Meters declares GB transferred
func (h *BandwidthHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	sku := r.String("sku", "Standard")
	gb := r.FirstDecimal(decimal.Zero, "quantity", "gb")
	if err := r.Err(); err != nil {
		return nil, err
	}

	q := pricing.Query{
		Service:       r.String("service", "Bandwidth"),
		Skus:          clouds.Distinct(sku, "Standard "+sku),
		Unit:          r.String("uom", "1 GB"),
		Product:       r.String("product", ""),
		MeterContains: "Data Transfer Out",
	}
	return []clouds.Meter{
		clouds.NewMeter("data transfer out", q, gb),
	}, nil
}

// Price computes rate × GB
func (h *BandwidthHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Egress %s %sGB", r.String("sku", "Standard"), r.FirstDecimal(decimal.Zero, "quantity", "gb"))
	return clouds.Line(desc, meters, prices)
}
