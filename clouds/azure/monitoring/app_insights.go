// Package monitoring - Application Insights cost handler
// Pricing model:
// - Data ingested per GB (daily volume × days_per_month)
// - Data retention per GB-month beyond included days (none by default)
package monitoring

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/core/units"
)

// AppInsightsHandler prices "app_insights" components
type AppInsightsHandler struct{}

// NewAppInsightsHandler creates an Application Insights handler
func NewAppInsightsHandler() *AppInsightsHandler {
	return &AppInsightsHandler{}
}

// Type returns the component type
func (h *AppInsightsHandler) Type() string {
	return "app_insights"
}

// Meters declares ingestion and retention
func (h *AppInsightsHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	perDay := r.Decimal("ingest_gb_per_day", decimal.Zero)
	days := r.Decimal("days_per_month", units.DaysPerMonth)
	retention := r.Int("retention_days", 30)
	included := r.Int("included_retention_days", 0)
	if err := r.Err(); err != nil {
		return nil, err
	}

	monthly := perDay.Mul(days)
	return clouds.Positive(
		clouds.NewMeter("data ingested", pricing.Query{
			Service:       "Application Insights",
			Aliases:       []string{"Azure Monitor"},
			Skus:          []string{"Data Ingested", "Enterprise Data Ingested", "Basic Data Ingested"},
			Unit:          "1 GB",
			MeterContains: "Data Ingested",
		}, monthly),
		clouds.NewMeter("data retention", pricing.Query{
			Service:       "Application Insights",
			Aliases:       []string{"Azure Monitor"},
			Skus:          []string{"Data Retention", "Enterprise Data Retention"},
			Unit:          "1 GB/Month",
			MeterContains: "Data Retention",
		}, retentionGBMonths(monthly, retention, included)),
	), nil
}

// Price sums ingestion and retention
func (h *AppInsightsHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("App Insights %sGB/day, %dd retention",
		r.Decimal("ingest_gb_per_day", decimal.Zero), r.Int("retention_days", 30))
	return clouds.Line(desc, meters, prices)
}
