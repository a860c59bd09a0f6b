// Package networking - Azure DNS and Traffic Manager cost handler
// Pricing model:
// - DNS hosted zones per month, queries per million
// - Traffic Manager profile hours, queries per million
package networking

import (
	"fmt"

	"github.com/shopspring/decimal"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
)

// DNSHandler prices "dns_tm" components
type DNSHandler struct{}

// NewDNSHandler creates a DNS + Traffic Manager handler
func NewDNSHandler() *DNSHandler {
	return &DNSHandler{}
}

// Type returns the component type
func (h *DNSHandler) Type() string {
	return "dns_tm"
}

// Meters declares zones, queries and profile hours
func (h *DNSHandler) Meters(c types.Component, a types.Assumptions) ([]clouds.Meter, error) {
	r := c.Reader()
	zones := r.Decimal("dns_zones", decimal.Zero)
	dnsQueries := r.Decimal("dns_queries_millions", decimal.Zero)
	profiles := r.Decimal("tm_profiles", decimal.Zero)
	tmQueries := r.Decimal("tm_queries_millions", decimal.Zero)
	hours := clouds.Hours(r, a)
	if err := r.Err(); err != nil {
		return nil, err
	}

	return clouds.Positive(
		clouds.NewMeter("dns zones", pricing.Query{
			Service:       "DNS",
			Aliases:       []string{"Azure DNS"},
			Skus:          []string{"Hosted Zone", "Public Zone", "Public"},
			Unit:          "1/Month",
			MeterContains: "Zone",
		}, zones),
		clouds.NewMeter("dns queries", pricing.Query{
			Service:       "DNS",
			Aliases:       []string{"Azure DNS"},
			Skus:          []string{"DNS Queries", "Public Queries", "Public"},
			Unit:          "1,000,000",
			MeterContains: "Queries",
		}, dnsQueries.Mul(clouds.Million)),
		clouds.NewMeter("tm profiles", pricing.Query{
			Service:       "Traffic Manager",
			Skus:          []string{"Profile", "Azure Endpoint", "Azure"},
			Unit:          "1 Hour",
			MeterContains: "Profile",
		}, profiles.Mul(hours)),
		clouds.NewMeter("tm queries", pricing.Query{
			Service:       "Traffic Manager",
			Skus:          []string{"DNS Queries", "Queries"},
			Unit:          "1,000,000",
			MeterContains: "DNS Queries",
		}, tmQueries.Mul(clouds.Million)),
	), nil
}

// Price sums DNS and Traffic Manager meters
func (h *DNSHandler) Price(c types.Component, meters []clouds.Meter, prices []pricing.ResolvedPrice, a types.Assumptions) types.CostLine {
	r := c.Reader()
	desc := fmt.Sprintf("DNS %s zones + TM %s profiles",
		r.Decimal("dns_zones", decimal.Zero), r.Decimal("tm_profiles", decimal.Zero))
	return clouds.Line(desc, meters, prices)
}
