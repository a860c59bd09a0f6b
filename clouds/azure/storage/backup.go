// Package storage - Azure Backup cost handler
// Pricing model:
// - Backup storage per GB-month by redundancy
// - Protected instances per month in small, medium and large buckets
package storage

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/core/units"
)

var backupBuckets = []struct {
	name  string
	field string
}{
	{"Small", "instances_small"},
	{"Medium", "instances_medium"},
	{"Large", "instances_large"},
}

// BackupHandler prices "backup" components
type BackupHandler struct{}

// NewBackupHandler creates a backup handler
func NewBackupHandler() *BackupHandler {
	return &BackupHandler{}
}

// Type returns the component type
func (h *BackupHandler) Type() string {
	return "backup"
}

// Meters declares backup storage and protected instances
func (h *BackupHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	tb := r.Decimal("backup_storage_tb", decimal.Zero)
	redundancy := strings.ToUpper(r.String("redundancy", "LRS"))

	meters := []clouds.Meter{
		clouds.NewMeter("backup storage", pricing.Query{
			Service:       "Azure Backup",
			Aliases:       []string{"Backup"},
			Skus:          []string{"Backup Storage " + redundancy, redundancy, "Backup Storage"},
			Unit:          "1 GB/Month",
			MeterContains: "Backup Storage",
		}, units.TBToGB(tb)),
	}
	for _, b := range backupBuckets {
		meters = append(meters, clouds.NewMeter("protected instances "+strings.ToLower(b.name), pricing.Query{
			Service:       "Azure Backup",
			Aliases:       []string{"Backup"},
			Skus:          []string{"Protected Instance " + b.name, b.name},
			Unit:          "1/Month",
			MeterContains: "Protected Instance " + b.name,
		}, r.Decimal(b.field, decimal.Zero)))
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return clouds.Positive(meters...), nil
}

// Price sums storage and protected instances
func (h *BackupHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	desc := fmt.Sprintf("Azure Backup %sTB + protected instances", c.Reader().Decimal("backup_storage_tb", decimal.Zero))
	return clouds.Line(desc, meters, prices)
}
