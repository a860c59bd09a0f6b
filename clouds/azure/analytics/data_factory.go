// Package analytics - Azure Data Factory cost handler
// Pricing model:
// - Data Integration Unit (DIU) hours for data movement
// - Pipeline activity runs, declared in thousands
// Data Flow and SSIS integration runtimes are not modelled.
package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

var (
	dataFactoryServices = []string{"Azure Data Factory v2", "Data Factory", "Azure Data Factory"}
	thousand            = decimal.NewFromInt(1000)
)

// DataFactoryHandler prices "data_factory" components
type DataFactoryHandler struct{}

// NewDataFactoryHandler creates a Data Factory handler
func NewDataFactoryHandler() *DataFactoryHandler {
	return &DataFactoryHandler{}
}

// Type returns the component type
func (h *DataFactoryHandler) Type() string {
	return "data_factory"
}

// Meters declares DIU hours and activity runs
func (h *DataFactoryHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	diuHours := r.Decimal("diu_hours", decimal.Zero)
	runs := r.Decimal("activity_runs_1k", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	return clouds.Positive(
		clouds.NewMeter("diu hours", pricing.Query{
			Service:       dataFactoryServices[0],
			Aliases:       dataFactoryServices[1:],
			Skus:          []string{"Cloud Data Movement", "Data Movement", "DIU"},
			Unit:          "1 Hour",
			MeterContains: "Data Movement",
		}, diuHours),
		clouds.NewMeter("activity runs", pricing.Query{
			Service:       dataFactoryServices[0],
			Aliases:       dataFactoryServices[1:],
			Skus:          []string{"Cloud Orchestration Activity Run", "Orchestration Activity Run", "Pipeline Activities"},
			Unit:          "1,000",
			MeterContains: "Pipeline",
			RequireAny:    []string{"activit", "orchestration"},
		}, runs.Mul(thousand)),
	), nil
}

// Price sums DIU hours and activity runs
func (h *DataFactoryHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Data Factory (DIU:%sh, activities:%sk)",
		r.Decimal("diu_hours", decimal.Zero), r.Decimal("activity_runs_1k", decimal.Zero))
	return clouds.Line(desc, meters, prices)
}
