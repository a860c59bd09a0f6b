// Package types - Canonical price records
package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SourceKind identifies where a price record came from
type SourceKind string

const (
	// SourceEnterpriseAPI is a contract price sheet downloaded from the billing API
	SourceEnterpriseAPI SourceKind = "enterprise_api"

	// SourceEnterpriseCSV is a contract price sheet exported to a file
	SourceEnterpriseCSV SourceKind = "enterprise_csv"

	// SourceRetailOffline is a cached snapshot of the public retail catalog
	SourceRetailOffline SourceKind = "retail_offline"

	// SourceRetailLive is the public retail prices API queried at run time
	SourceRetailLive SourceKind = "retail_api"
)

// AllSourceKinds lists every source in default priority order
func AllSourceKinds() []SourceKind {
	return []SourceKind{SourceEnterpriseAPI, SourceEnterpriseCSV, SourceRetailOffline, SourceRetailLive}
}

// Priority returns the default resolution rank; lower ranks are consulted first
func (k SourceKind) Priority() int {
	switch k {
	case SourceEnterpriseAPI:
		return 0
	case SourceEnterpriseCSV:
		return 1
	case SourceRetailOffline:
		return 2
	case SourceRetailLive:
		return 3
	default:
		return 99
	}
}

// IsEnterprise reports whether the source carries contract prices
func (k SourceKind) IsEnterprise() bool {
	return k == SourceEnterpriseAPI || k == SourceEnterpriseCSV
}

// String returns the string representation
func (k SourceKind) String() string {
	return string(k)
}

// ParseSourceKind parses a source name as used in config files and flags
func ParseSourceKind(s string) (SourceKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enterprise_api", "enterprise-api":
		return SourceEnterpriseAPI, true
	case "enterprise_csv", "enterprise-csv":
		return SourceEnterpriseCSV, true
	case "retail_offline", "retail-offline", "retail_csv", "retail-csv":
		return SourceRetailOffline, true
	case "retail_api", "retail-api", "retail_live", "retail":
		return SourceRetailLive, true
	}
	return "", false
}

// PriceType is the commercial model a price row belongs to
type PriceType string

const (
	PriceConsumption PriceType = "Consumption"
	PriceReservation PriceType = "Reservation"
	PriceDevTest     PriceType = "DevTestConsumption"
)

// ParsePriceType maps the price-type column variants onto PriceType.
// Blank means Consumption.
func ParsePriceType(s string) (PriceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "consumption":
		return PriceConsumption, true
	case "reservation":
		return PriceReservation, true
	case "devtestconsumption", "devtest":
		return PriceDevTest, true
	}
	return "", false
}

// PriceRecord is a source-agnostic meter price.
// UnitPrice is never negative; normalizers drop such rows.
type PriceRecord struct {
	ServiceName   string `json:"service_name"`
	ProductName   string `json:"product_name,omitempty"`
	SkuName       string `json:"sku_name,omitempty"`
	ArmSkuName    string `json:"arm_sku_name,omitempty"`
	MeterName     string `json:"meter_name,omitempty"`
	MeterID       string `json:"meter_id,omitempty"`
	ServiceFamily string `json:"service_family,omitempty"`

	// UnitOfMeasure is the billing granularity, e.g. "1 Hour", "10,000", "1 GB/Month"
	UnitOfMeasure string `json:"unit_of_measure"`

	UnitPrice    decimal.Decimal `json:"unit_price"`
	CurrencyCode Currency        `json:"currency_code"`

	// RegionKey is lowercase with no spaces; empty means a global meter
	RegionKey string `json:"region_key"`

	PriceType PriceType `json:"price_type"`

	EffectiveStart *time.Time `json:"effective_start,omitempty"`
	EffectiveEnd   *time.Time `json:"effective_end,omitempty"`

	TierMinimumUnits *decimal.Decimal `json:"tier_minimum_units,omitempty"`

	Source SourceKind `json:"source"`
}

// Sku returns the sku name, falling back to the ARM sku name
func (r *PriceRecord) Sku() string {
	if r.SkuName != "" {
		return r.SkuName
	}
	return r.ArmSkuName
}

// IsGlobal reports whether the record applies to every region
func (r *PriceRecord) IsGlobal() bool {
	return r.RegionKey == ""
}

// EffectiveAt reports whether the record is valid at t.
// A missing start is valid from the beginning; the end bound is exclusive.
func (r *PriceRecord) EffectiveAt(t time.Time) bool {
	if r.EffectiveStart != nil && r.EffectiveStart.After(t) {
		return false
	}
	if r.EffectiveEnd != nil && !t.Before(*r.EffectiveEnd) {
		return false
	}
	return true
}

// TierMinimum returns the tier floor, or zero when absent
func (r *PriceRecord) TierMinimum() decimal.Decimal {
	if r.TierMinimumUnits == nil {
		return decimal.Zero
	}
	return *r.TierMinimumUnits
}
