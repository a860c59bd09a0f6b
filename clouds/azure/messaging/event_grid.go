// Package messaging - Azure Event Grid cost handler
// Pricing model:
// - Operations, billed per million
package messaging

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// EventGridHandler prices "event_grid" components
type EventGridHandler struct{}

// NewEventGridHandler creates an Event Grid handler
func NewEventGridHandler() *EventGridHandler {
	return &EventGridHandler{}
}

// Type returns the component type
func (h *EventGridHandler) Type() string {
	return "event_grid"
}

// Meters declares operations
func (h *EventGridHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	ops := r.Decimal("operations_per_month", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	q := pricing.Query{
		Service:       "Event Grid",
		Skus:          []string{"Operations", "Standard Operations", "Basic Operations"},
		Unit:          "1,000,000",
		MeterContains: "Operations",
	}
	return []clouds.Meter{
		clouds.NewMeter("operations", q, ops),
	}, nil
}

// Price computes rate × operations / 1M
func (h *EventGridHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	desc := fmt.Sprintf("Event Grid %s ops", meters[0].Quantity)
	return clouds.Line(desc, meters, prices)
}
