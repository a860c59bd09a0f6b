// Package ai - Azure AI Search cost handler
// Pricing model:
// - Search unit hours; search units = replicas × partitions
package ai

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// SearchHandler prices "cognitive_search" components
type SearchHandler struct{}

// NewSearchHandler creates a search handler
func NewSearchHandler() *SearchHandler {
	return &SearchHandler{}
}

// Type returns the component type
func (h *SearchHandler) Type() string {
	return "cognitive_search"
}

// Meters declares search unit hours
func (h *SearchHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	sku := strings.ToUpper(r.String("sku", "S1"))
	replicas := r.Decimal("replicas", decimal.NewFromInt(1))
	partitions := r.Decimal("partitions", decimal.NewFromInt(1))
	hours := clouds.Hours(r, a)
	if err := r.Err(); err != nil {
		return nil, err
	}

	q := pricing.Query{
		Service:       "Azure Cognitive Search",
		Aliases:       []string{"Search", "Azure AI Search"},
		Skus:          []string{sku + " Search Unit", sku, "Standard " + sku},
		Unit:          "1 Hour",
		MeterContains: sku + " Search Unit",
	}
	return []clouds.Meter{
		clouds.NewMeter("search units", q, replicas.Mul(partitions).Mul(hours)),
	}, nil
}

// Price computes rate × replicas × partitions × hours
func (h *SearchHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Search %s %sR × %sP × %sh",
		strings.ToUpper(r.String("sku", "S1")),
		r.Decimal("replicas", decimal.NewFromInt(1)),
		r.Decimal("partitions", decimal.NewFromInt(1)),
		clouds.Hours(r, a))
	return clouds.Line(desc, meters, prices)
}
