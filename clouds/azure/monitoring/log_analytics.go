// Package monitoring - Log Analytics cost handler
// Pricing model:
// - Ingestion per GB (daily volume × 30)
// - Retention per GB-month for days beyond the included period
// Per-GB overrides bypass price lookup.
package monitoring

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/core/units"
)

// retentionGBMonths returns the GB-months held beyond the included days
func retentionGBMonths(monthlyGB decimal.Decimal, retentionDays, includedDays int) decimal.Decimal {
	extra := retentionDays - includedDays
	if extra <= 0 {
		return decimal.Zero
	}
	return monthlyGB.Mul(decimal.NewFromInt(int64(extra))).Div(units.DaysPerMonth)
}

// LogAnalyticsHandler prices "log_analytics" components
type LogAnalyticsHandler struct{}

// NewLogAnalyticsHandler creates a Log Analytics handler
func NewLogAnalyticsHandler() *LogAnalyticsHandler {
	return &LogAnalyticsHandler{}
}

// Type returns the component type
func (h *LogAnalyticsHandler) Type() string {
	return "log_analytics"
}

// Meters declares ingestion and extra retention
func (h *LogAnalyticsHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	perDay := r.Decimal("ingest_gb_per_day", decimal.Zero)
	retention := r.Int("retention_days", 30)
	included := r.Int("included_retention_days", 31)
	ingestOverride := r.OptionalDecimal("unit_price_override")
	retentionOverride := r.OptionalDecimal("retention_price_override")
	if err := r.Err(); err != nil {
		return nil, err
	}

	monthly := units.DailyToMonthly(perDay)
	services := []string{"Log Analytics", "Azure Monitor"}

	return clouds.Positive(
		clouds.NewMeter("ingestion", pricing.Query{
			Service:       services[0],
			Aliases:       services[1:],
			Skus:          []string{"Pay-as-you-go Data Ingestion", "Analytics Logs Data Ingestion", "Data Ingestion", "Pay-as-you-go"},
			Unit:          "1 GB",
			MeterContains: "Data Ingestion",
		}, monthly).WithOverride(ingestOverride),
		clouds.NewMeter("retention", pricing.Query{
			Service:       services[0],
			Aliases:       services[1:],
			Skus:          []string{"Data Retention", "Analytics Logs Data Retention", "Pay-as-you-go Data Retention"},
			Unit:          "1 GB/Month",
			MeterContains: "Data Retention",
		}, retentionGBMonths(monthly, retention, included)).WithOverride(retentionOverride),
	), nil
}

// Price sums ingestion and retention
func (h *LogAnalyticsHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Log Analytics %sGB/day, %dd retention",
		r.Decimal("ingest_gb_per_day", decimal.Zero), r.Int("retention_days", 30))
	return clouds.Line(desc, meters, prices)
}
