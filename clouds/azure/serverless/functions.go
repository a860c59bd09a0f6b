// Package serverless - Azure Functions (Consumption) cost handler
// Pricing model:
// - Execution time in GB-seconds
// - Executions
// Free grants are not deducted.
package serverless

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// FunctionsHandler prices "functions" components
type FunctionsHandler struct{}

// NewFunctionsHandler creates a Functions handler
func NewFunctionsHandler() *FunctionsHandler {
	return &FunctionsHandler{}
}

// Type returns the component type
func (h *FunctionsHandler) Type() string {
	return "functions"
}

// Meters declares GB-seconds and executions
func (h *FunctionsHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	gbSeconds := r.Decimal("gb_seconds", decimal.Zero)
	executions := r.Decimal("executions", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	return clouds.Positive(
		clouds.NewMeter("execution time", pricing.Query{
			Service:       "Functions",
			Aliases:       []string{"Azure Functions"},
			Skus:          []string{"Execution Time", "Standard Execution Time"},
			Unit:          "1,000,000 GB Seconds",
			MeterContains: "Execution Time",
		}, gbSeconds),
		clouds.NewMeter("executions", pricing.Query{
			Service:       "Functions",
			Aliases:       []string{"Azure Functions"},
			Skus:          []string{"Executions", "Standard Total Executions", "Total Executions"},
			Unit:          "1,000,000",
			MeterContains: "Executions",
		}, executions),
	), nil
}

// Price sums execution time and executions
func (h *FunctionsHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Functions %s GB-s + %s execs",
		r.Decimal("gb_seconds", decimal.Zero), r.Decimal("executions", decimal.Zero))
	return clouds.Line(desc, meters, prices)
}
