// Package analytics - Azure Synapse dedicated SQL pool cost handler
// Pricing model:
// - Compute hours in blocks of 100 DWU (DW1000c = 10 blocks)
// Storage, backup, serverless and Spark meters are excluded.
package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

var (
	dwuBlock     = decimal.NewFromInt(100)
	synapseNoise = []string{"backup", "storage", "snapshot", "serverless", "spark", "data processed", "data movement", "reserved"}
)

// ParseDWU reads the DWU count from skus like DW1000c. Unreadable skus
// count as DW100c.
func ParseDWU(sku string) int {
	s := strings.ToLower(strings.TrimSpace(sku))
	s = strings.TrimSuffix(strings.TrimPrefix(s, "dw"), "c")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 100
	}
	return n
}

// SynapseHandler prices "synapse_sqlpool" components
type SynapseHandler struct{}

// NewSynapseHandler creates a Synapse SQL pool handler
func NewSynapseHandler() *SynapseHandler {
	return &SynapseHandler{}
}

// Type returns the component type
func (h *SynapseHandler) Type() string {
	return "synapse_sqlpool"
}

// Meters declares 100-DWU block hours
func (h *SynapseHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	sku := r.String("sku", "DW100c")
	hours := clouds.Hours(r, a)
	override := r.OptionalDecimal("unit_price_override")
	if err := r.Err(); err != nil {
		return nil, err
	}

	blocks := decimal.NewFromInt(int64(ParseDWU(sku))).Div(dwuBlock)
	q := pricing.Query{
		Service:       "Azure Synapse Analytics",
		Aliases:       []string{"SQL Data Warehouse"},
		Skus:          []string{"100 DWUs", "100 cDWUs", "Dedicated SQL Pool", "DWU"},
		Unit:          "1 Hour",
		MeterContains: "DWU",
		Exclude:       synapseNoise,
	}
	return []clouds.Meter{
		clouds.NewMeter("compute", q, blocks.Mul(hours)).WithOverride(override),
	}, nil
}

// Price computes rate per 100 DWU × blocks × hours
func (h *SynapseHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	sku := r.String("sku", "DW100c")
	desc := fmt.Sprintf("Synapse SQL pool %s (%d DWU) × %sh", sku, ParseDWU(sku), clouds.Hours(r, a))
	return clouds.Line(desc, meters, prices)
}
