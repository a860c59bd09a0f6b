// Package storage - Azure Queue, Table and File storage cost handlers
// Pricing model:
// - Queue and Table operations per 10,000
// - File share capacity per GB-month (standard tier)
package storage

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/core/units"
)

// OperationsHandler prices queue or table operations
type OperationsHandler struct {
	componentType string
	service       string
}

// NewQueueHandler creates a "storage_queue" handler
func NewQueueHandler() *OperationsHandler {
	return &OperationsHandler{componentType: "storage_queue", service: "Queue"}
}

// NewTableHandler creates a "storage_table" handler
func NewTableHandler() *OperationsHandler {
	return &OperationsHandler{componentType: "storage_table", service: "Table"}
}

// Type returns the component type
func (h *OperationsHandler) Type() string {
	return h.componentType
}

// Meters declares operations
func (h *OperationsHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	ops := r.Decimal("operations_per_month", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	s := h.service
	q := pricing.Query{
		Service:       "Storage",
		Skus:          []string{s + " Transactions", s + " - Operations", s + " Requests", s},
		Unit:          "10,000",
		MeterContains: s,
	}
	return []clouds.Meter{
		clouds.NewMeter("operations", q, ops),
	}, nil
}

// Price computes rate × operations / 10k
func (h *OperationsHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	desc := fmt.Sprintf("%s ops: %s", h.service, c.Reader().Decimal("operations_per_month", decimal.Zero))
	return clouds.Line(desc, meters, prices)
}

// FileShareHandler prices "fileshare" components
type FileShareHandler struct{}

// NewFileShareHandler creates a file share handler
func NewFileShareHandler() *FileShareHandler {
	return &FileShareHandler{}
}

// Type returns the component type
func (h *FileShareHandler) Type() string {
	return "fileshare"
}

// Meters declares data stored
func (h *FileShareHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	tb := r.Decimal("tb", decimal.NewFromInt(1))
	if err := r.Err(); err != nil {
		return nil, err
	}

	q := pricing.Query{
		Service:       "Storage",
		Skus:          []string{"File Data Stored", "Standard File Data Stored", "File Share Data Stored", "Files Data Stored"},
		Unit:          "1 GB/Month",
		MeterContains: "Data Stored",
		Product:       "File",
	}
	return []clouds.Meter{
		clouds.NewMeter("data stored", q, units.TBToGB(tb)),
	}, nil
}

// Price computes rate × GB
func (h *FileShareHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	desc := fmt.Sprintf("File share %sTB", c.Reader().Decimal("tb", decimal.NewFromInt(1)))
	return clouds.Line(desc, meters, prices)
}
