// Package messaging - Azure Event Hubs and Service Bus cost handlers
// Pricing model:
// - Event Hubs: throughput unit hours (by tier)
// - Service Bus: messaging unit hours (Premium)
package messaging

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// EventHubHandler prices "event_hub" components
type EventHubHandler struct{}

// NewEventHubHandler creates an Event Hubs handler
func NewEventHubHandler() *EventHubHandler {
	return &EventHubHandler{}
}

// Type returns the component type
func (h *EventHubHandler) Type() string {
	return "event_hub"
}

// Meters declares throughput unit hours
func (h *EventHubHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	tier := clouds.Title(r.String("tier", "Standard"))
	units := r.Decimal("throughput_units", decimal.NewFromInt(1))
	hours := clouds.Hours(r, a)
	if err := r.Err(); err != nil {
		return nil, err
	}

	q := pricing.Query{
		Service:       "Event Hubs",
		Skus:          []string{tier + " Throughput Unit", tier},
		Unit:          "1 Hour",
		MeterContains: "Throughput Unit",
	}
	return []clouds.Meter{
		clouds.NewMeter("throughput units", q, units.Mul(hours)),
	}, nil
}

// Price computes rate × throughput units × hours
func (h *EventHubHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Event Hubs %s %s TU × %sh",
		clouds.Title(r.String("tier", "Standard")), r.Decimal("throughput_units", decimal.NewFromInt(1)), clouds.Hours(r, a))
	return clouds.Line(desc, meters, prices)
}

// ServiceBusHandler prices "service_bus" components
type ServiceBusHandler struct{}

// NewServiceBusHandler creates a Service Bus handler
func NewServiceBusHandler() *ServiceBusHandler {
	return &ServiceBusHandler{}
}

// Type returns the component type
func (h *ServiceBusHandler) Type() string {
	return "service_bus"
}

// Meters declares messaging unit hours
func (h *ServiceBusHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	tier := clouds.Title(r.String("tier", "Premium"))
	units := r.Decimal("messaging_units", decimal.NewFromInt(1))
	hours := clouds.Hours(r, a)
	if err := r.Err(); err != nil {
		return nil, err
	}

	q := pricing.Query{
		Service:       "Service Bus",
		Skus:          []string{tier + " Messaging Unit", tier},
		Unit:          "1 Hour",
		MeterContains: "Messaging Unit",
	}
	return []clouds.Meter{
		clouds.NewMeter("messaging units", q, units.Mul(hours)),
	}, nil
}

// Price computes rate × messaging units × hours
func (h *ServiceBusHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Service Bus %s %s MU × %sh",
		clouds.Title(r.String("tier", "Premium")), r.Decimal("messaging_units", decimal.NewFromInt(1)), clouds.Hours(r, a))
	return clouds.Line(desc, meters, prices)
}
