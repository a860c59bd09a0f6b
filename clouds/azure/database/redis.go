// Package database - Azure Cache for Redis cost handler
// Pricing model:
// - Cache instance hours (by sku, e.g. C1, P2)
package database

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// RedisHandler prices "redis" components
type RedisHandler struct{}

// NewRedisHandler creates a Redis handler
func NewRedisHandler() *RedisHandler {
	return &RedisHandler{}
}

// Type returns the component type
func (h *RedisHandler) Type() string {
	return "redis"
}

// Meters declares cache instance hours
func (h *RedisHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	sku := strings.ToUpper(r.String("sku", "C1"))
	instances := r.Decimal("instances", decimal.NewFromInt(1))
	hours := clouds.Hours(r, a)
	if err := r.Err(); err != nil {
		return nil, err
	}

	q := pricing.Query{
		Service: "Azure Cache for Redis",
		Aliases: []string{"Redis Cache"},
		Skus:    clouds.Distinct(sku, sku+" Cache", "Basic "+sku, "Standard "+sku, "Premium "+sku),
		Unit:    "1 Hour",
	}
	return []clouds.Meter{
		clouds.NewMeter("cache", q, instances.Mul(hours)),
	}, nil
}

// Price computes rate × instances × hours
func (h *RedisHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Redis %s × %s × %sh",
		strings.ToUpper(r.String("sku", "C1")), r.Decimal("instances", decimal.NewFromInt(1)), clouds.Hours(r, a))
	return clouds.Line(desc, meters, prices)
}
