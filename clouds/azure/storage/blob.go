// Package storage - Azure Blob Storage cost handler
// Pricing model:
// - Capacity per GB-month by redundancy and access tier
// - Transactions per 10,000
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

// BlobSku is a storage account sku split into redundancy and access tier
type BlobSku struct {
	Redundancy string
	Tier       string
}

// ParseBlobSku reads skus like Standard_LRS_Hot or Standard_RAGZRS_Cool.
// The defaults are LRS and Hot.
func ParseBlobSku(sku string) BlobSku {
	s := strings.ToUpper(sku)
	out := BlobSku{Redundancy: "LRS", Tier: "Hot"}

	switch {
	case strings.Contains(s, "ARCHIVE"):
		out.Tier = "Archive"
	case strings.Contains(s, "COOL"):
		out.Tier = "Cool"
	}

	// longest tokens first so RA-GZRS is not read as GZRS
	switch {
	case strings.Contains(s, "RA-GZRS") || strings.Contains(s, "RAGZRS"):
		out.Redundancy = "RA-GZRS"
	case strings.Contains(s, "GZRS"):
		out.Redundancy = "GZRS"
	case strings.Contains(s, "RA-GRS") || strings.Contains(s, "RAGRS"):
		out.Redundancy = "RA-GRS"
	case strings.Contains(s, "ZRS"):
		out.Redundancy = "ZRS"
	case strings.Contains(s, "GRS"):
		out.Redundancy = "GRS"
	}
	return out
}

// CapacityQuery locates the block blob data stored meter for a sku
func CapacityQuery(sku BlobSku) pricing.Query {
	prefix := sku.Redundancy + " " + sku.Tier
	return pricing.Query{
		Service:       "Storage",
		Skus:          []string{prefix + " Data Stored", sku.Tier + " " + sku.Redundancy, prefix},
		Unit:          "1 GB/Month",
		MeterContains: sku.Tier + " " + sku.Redundancy + " Data Stored",
		Exclude:       []string{"file", "table", "queue"},
	}
}

// BlobHandler prices "storage_blob" components
type BlobHandler struct{}

// NewBlobHandler creates a Blob Storage handler
func NewBlobHandler() *BlobHandler {
	return &BlobHandler{}
}

// Type returns the component type
func (h *BlobHandler) Type() string {
	return "storage_blob"
}

// Meters declares data stored and transactions
func (h *BlobHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	sku := ParseBlobSku(r.String("sku", "Standard_LRS_Hot"))
	tb := r.Decimal("tb", decimal.NewFromInt(1))
	tx := r.Decimal("transactions_per_month", decimal.Zero)
	if err := r.Err(); err != nil {
		return nil, err
	}

	prefix := sku.Redundancy + " " + sku.Tier
	transactions := pricing.Query{
		Service:       "Storage",
		Skus:          []string{prefix + " Transactions", sku.Tier + " " + sku.Redundancy + " Write Operations"},
		Unit:          "10,000",
		MeterContains: sku.Tier + " " + sku.Redundancy + " Write Operations",
		Exclude:       []string{"file", "table", "queue"},
	}

	return clouds.Positive(
		clouds.NewMeter("data stored", CapacityQuery(sku), units.TBToGB(tb)),
		clouds.NewMeter("transactions", transactions, tx),
	), nil
}

// Price sums capacity and transactions
func (h *BlobHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("Blob %s %sTB", r.String("sku", "Standard_LRS_Hot"), r.Decimal("tb", decimal.NewFromInt(1)))
	return clouds.Line(desc, meters, prices)
}
