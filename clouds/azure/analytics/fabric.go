// Package analytics - Microsoft Fabric capacity and OneLake cost handlers
// Pricing model:
// - Capacity hours per F sku (hours_per_day × days_per_month)
// - OneLake storage at block blob LRS hot and cool rates
package analytics

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/clouds/azure/storage"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/core/units"
	"azure-bom-cost/internal/errors"
)

// fabricSkus returns catalogue spellings of an F sku
func fabricSkus(sku string) []string {
	out := []string{sku}
	s := strings.ToUpper(sku)
	if n := strings.TrimPrefix(s, "F"); n != s && n != "" && strings.Trim(n, "0123456789") == "" {
		out = append(out, "F"+n, "F "+n, "F"+n+" Capacity", "Capacity F"+n, "F"+n+" CU")
	}
	return clouds.Distinct(out...)
}

// FabricCapacityHandler prices "fabric_capacity" components
type FabricCapacityHandler struct{}

// NewFabricCapacityHandler creates a Fabric capacity handler
func NewFabricCapacityHandler() *FabricCapacityHandler {
	return &FabricCapacityHandler{}
}

// Type returns the component type
func (h *FabricCapacityHandler) Type() string {
	return "fabric_capacity"
}

// Meters declares capacity hours
func (h *FabricCapacityHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	sku := r.String("sku", "")
	if sku == "" {
		return nil, errors.Input("fabric_capacity: sku is required").WithContext("field", "sku")
	}
	count := r.FirstDecimal(decimal.NewFromInt(1), "quantity", "capacity_units")
	hoursPerDay := r.Decimal("hours_per_day", decimal.NewFromInt(24))
	days := r.Decimal("days_per_month", units.DaysPerMonth)
	if err := r.Err(); err != nil {
		return nil, err
	}

	q := pricing.Query{
		Service:       "Microsoft Fabric",
		Aliases:       []string{"Microsoft Fabric Capacity"},
		Skus:          fabricSkus(sku),
		Unit:          "1 Hour",
		MeterContains: strings.ToUpper(sku),
	}
	return []clouds.Meter{
		clouds.NewMeter("capacity", q, count.Mul(hoursPerDay).Mul(days)),
	}, nil
}

// Price computes rate × capacities × hours per day × days
func (h *FabricCapacityHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Fabric %s × %sh/day × %sd",
		strings.ToUpper(r.String("sku", "")), r.Decimal("hours_per_day", decimal.NewFromInt(24)), r.Decimal("days_per_month", units.DaysPerMonth))
	return clouds.Line(desc, meters, prices)
}

// OneLakeHandler prices "onelake_storage" components
type OneLakeHandler struct{}

// NewOneLakeHandler creates a OneLake storage handler
func NewOneLakeHandler() *OneLakeHandler {
	return &OneLakeHandler{}
}

// Type returns the component type
func (h *OneLakeHandler) Type() string {
	return "onelake_storage"
}

// Meters declares hot and cool data stored
func (h *OneLakeHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	hot := r.Decimal("tb_hot", decimal.Zero)
	cool := r.Decimal("tb_cool", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	return clouds.Positive(
		clouds.NewMeter("hot data stored", storage.CapacityQuery(storage.BlobSku{Redundancy: "LRS", Tier: "Hot"}), units.TBToGB(hot)),
		clouds.NewMeter("cool data stored", storage.CapacityQuery(storage.BlobSku{Redundancy: "LRS", Tier: "Cool"}), units.TBToGB(cool)),
	), nil
}

// Price sums hot and cool capacity
func (h *OneLakeHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("OneLake hot:%sTB cool:%sTB", r.Decimal("tb_hot", decimal.Zero), r.Decimal("tb_cool", decimal.Zero))
	return clouds.Line(desc, meters, prices)
}
