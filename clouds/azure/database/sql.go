// Package database - Azure SQL Database (vCore) cost handler
// Pricing model:
// - vCore hours, sku shorthand TIER_MODE_FAMILY_VCORES (GP_S_Gen5_4)
// - Optional data stored per GB-month
// - High availability approximated as 1.5x
package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

var haMultiplier = decimal.RequireFromString("1.5")

var sqlTiers = map[string]string{
	"GP": "General Purpose",
	"BC": "Business Critical",
	"HS": "Hyperscale",
}

var sqlModes = map[string]string{
	"S": "Serverless",
	"P": "Provisioned",
}

// SQLSku is a parsed vCore sku
type SQLSku struct {
	Raw    string
	Tier   string
	Mode   string
	Family string
	VCores int
}

// ParseSQLSku parses GP_S_Gen5_4 style skus. Skus with fewer than four
// parts keep the raw text as tier and count one vCore.
func ParseSQLSku(s string) SQLSku {
	out := SQLSku{Raw: s, Tier: s, VCores: 1}
	parts := strings.Split(s, "_")
	if len(parts) < 4 {
		return out
	}
	out.Tier = parts[0]
	if t, ok := sqlTiers[strings.ToUpper(parts[0])]; ok {
		out.Tier = t
	}
	out.Mode = parts[1]
	if m, ok := sqlModes[strings.ToUpper(parts[1])]; ok {
		out.Mode = m
	}
	out.Family = parts[2]
	if n, err := strconv.Atoi(parts[3]); err == nil && n > 0 {
		out.VCores = n
	}
	return out
}

// SQLHandler prices "sql_paas" components
type SQLHandler struct{}

// NewSQLHandler creates a SQL Database handler
func NewSQLHandler() *SQLHandler {
	return &SQLHandler{}
}

// Type returns the component type
func (h *SQLHandler) Type() string {
	return "sql_paas"
}

// Meters declares vCore hours and data stored
func (h *SQLHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	raw := r.String("sku", "")
	if raw == "" {
		return nil, errors.Input("sql_paas: sku is required").WithContext("field", "sku")
	}
	sku := ParseSQLSku(raw)
	hours := clouds.Hours(r, a)
	maxGB := r.Decimal("max_gb", decimal.Zero)
	ha := r.Bool("ha", false)
	if err := r.Err(); err != nil {
		return nil, err
	}

	factor := decimal.NewFromInt(1)
	if ha {
		factor = haMultiplier
	}

	exclude := []string{"dtu", "elastic pool", "managed instance", "reserved", "backup storage", "license"}
	compute := pricing.Query{
		Service:       "Azure SQL Database",
		Aliases:       []string{"SQL Database"},
		Skus:          clouds.Distinct(raw, fmt.Sprintf("%d vCore", sku.VCores), "vCore"),
		Unit:          "1 Hour",
		Family:        "Databases",
		MeterContains: "vCore",
		Exclude:       exclude,
	}
	if sku.Family != "" {
		compute.Product = sku.Tier
	}

	meters := []clouds.Meter{
		clouds.NewMeter("vcore hours", compute, decimal.NewFromInt(int64(sku.VCores)).Mul(hours)).Times(factor),
	}
	if maxGB.IsPositive() {
		storage := pricing.Query{
			Service:       "Azure SQL Database",
			Aliases:       []string{"SQL Database"},
			Skus:          []string{"Data Stored"},
			Unit:          "1 GB/Month",
			MeterContains: "Data Stored",
			Exclude:       []string{"backup"},
		}
		meters = append(meters, clouds.NewMeter("data stored", storage, maxGB).Times(factor))
	}
	return meters, nil
}

// Price computes vCore rate × vCores × hours plus storage, scaled for HA
func (h *SQLHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	sku := ParseSQLSku(r.String("sku", ""))
	desc := fmt.Sprintf("SQL %s %d vCore × %sh", sku.Raw, sku.VCores, clouds.Hours(r, a))
	if r.Bool("ha", false) {
		desc += " (HA x1.5)"
	}
	return clouds.Line(desc, meters, prices)
}
