// Package normalize converts raw price rows from each source into
// canonical price records.
//
// Rows that cannot be represented faithfully are dropped and counted,
// never defaulted: a missing or negative price, a row with neither a
// sku nor an ARM sku, an unparseable date, an unknown price type.
package normalize

import (
	"sort"

	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

// Drop reasons
const (
	ReasonMissingPrice     = "missing unit price"
	ReasonBadPrice         = "unparseable unit price"
	ReasonNegativePrice    = "negative unit price"
	ReasonMissingSku       = "missing sku and arm sku"
	ReasonMissingService   = "missing service name"
	ReasonBadDate          = "unparseable effective date"
	ReasonBadPriceType     = "unknown price type"
	ReasonBadTier          = "unparseable tier minimum units"
	ReasonDuplicateMeterID = "duplicate meter row"
)

// Result is the output of one normalization pass
type Result struct {
	Source  types.SourceKind
	Records []types.PriceRecord

	// Dropped counts rejected rows per reason
	Dropped map[string]int
}

func newResult(kind types.SourceKind, capacity int) *Result {
	return &Result{
		Source:  kind,
		Records: make([]types.PriceRecord, 0, capacity),
		Dropped: make(map[string]int),
	}
}

// DroppedTotal returns the number of rejected rows
func (r *Result) DroppedTotal() int {
	n := 0
	for _, c := range r.Dropped {
		n += c
	}
	return n
}

// DropErrors returns one AMBIGUOUS_SOURCE_DATA error per reason, sorted
func (r *Result) DropErrors() []*errors.Error {
	reasons := make([]string, 0, len(r.Dropped))
	for reason := range r.Dropped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	out := make([]*errors.Error, 0, len(reasons))
	for _, reason := range reasons {
		out = append(out, errors.AmbiguousSourceData(reason).
			WithContext("source", string(r.Source)).
			WithContext("rows", r.Dropped[reason]))
	}
	return out
}

// columns names the row columns each record field is read from, in order of preference
type columns struct {
	service  []string
	sku      []string
	armSku   []string
	price    []string
	unit     []string
	region   []string
	currency []string
	ptype    []string
}

var retailColumns = columns{
	service:  []string{"serviceName"},
	sku:      []string{"skuName"},
	armSku:   []string{"armSkuName"},
	price:    []string{"retailPrice", "unitPrice"},
	unit:     []string{"unitOfMeasure"},
	region:   []string{"armRegionName", "location"},
	currency: []string{"currencyCode"},
	ptype:    []string{"type", "priceType"},
}

var enterpriseColumns = columns{
	service:  []string{"serviceName", "productName"},
	sku:      []string{"skuName", "meterName"},
	armSku:   []string{"armSkuName"},
	price:    []string{"unitPrice", "rate", "discountedPrice", "effectiveUnitPrice", "retailPrice"},
	unit:     []string{"unitOfMeasure", "uom", "unitOfMeasureDisplay"},
	region:   []string{"armRegionName", "regionName", "region", "location"},
	currency: []string{"currencyCode", "currency"},
	ptype:    []string{"priceType", "type"},
}

// Retail normalizes rows from the retail prices API or an offline
// snapshot of it. fallback labels rows that carry no currency code.
func Retail(rows []Row, kind types.SourceKind, fallback types.Currency) *Result {
	res := newResult(kind, len(rows))
	seen := make(map[string]bool)
	for _, row := range rows {
		f := view(row)

		// pages fetched with overlapping filters repeat meters
		if id := f.pick("meterId"); id != "" {
			key := id + "|" + f.pick("armRegionName") + "|" + f.pick("tierMinimumUnits") + "|" + f.pick("type", "priceType") + "|" + f.pick("effectiveStartDate")
			if seen[key] {
				res.Dropped[ReasonDuplicateMeterID]++
				continue
			}
			seen[key] = true
		}

		rec, reason := build(f, retailColumns, kind, fallback)
		if reason != "" {
			res.Dropped[reason]++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// Enterprise normalizes contract price sheet rows, from the billing API
// download or a local export. Column names are matched case-insensitively.
func Enterprise(rows []Row, kind types.SourceKind, fallback types.Currency) *Result {
	res := newResult(kind, len(rows))
	for _, row := range rows {
		rec, reason := build(view(row), enterpriseColumns, kind, fallback)
		if reason != "" {
			res.Dropped[reason]++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// Normalize dispatches to the normalizer matching kind
func Normalize(rows []Row, kind types.SourceKind, fallback types.Currency) *Result {
	if kind.IsEnterprise() {
		return Enterprise(rows, kind, fallback)
	}
	return Retail(rows, kind, fallback)
}

func build(f fields, cols columns, kind types.SourceKind, fallback types.Currency) (types.PriceRecord, string) {
	rec := types.PriceRecord{
		ServiceName:   f.pick(cols.service...),
		ProductName:   f.pick("productName"),
		SkuName:       f.pick(cols.sku...),
		ArmSkuName:    f.pick(cols.armSku...),
		MeterName:     f.pick("meterName"),
		MeterID:       f.pick("meterId"),
		ServiceFamily: f.pick("serviceFamily"),
		UnitOfMeasure: f.pick(cols.unit...),
		RegionKey:     Region(f.pick(cols.region...)),
		Source:        kind,
	}

	raw := f.pick(cols.price...)
	if raw == "" {
		return rec, ReasonMissingPrice
	}
	price, err := parseDecimal(raw)
	if err != nil {
		return rec, ReasonBadPrice
	}
	if price.IsNegative() {
		return rec, ReasonNegativePrice
	}
	rec.UnitPrice = price

	if rec.SkuName == "" && rec.ArmSkuName == "" {
		return rec, ReasonMissingSku
	}
	if rec.ServiceName == "" {
		return rec, ReasonMissingService
	}

	pt, ok := types.ParsePriceType(f.pick(cols.ptype...))
	if !ok {
		return rec, ReasonBadPriceType
	}
	rec.PriceType = pt

	if rec.EffectiveStart, err = parseDate(f.pick("effectiveStartDate")); err != nil {
		return rec, ReasonBadDate
	}
	if rec.EffectiveEnd, err = parseDate(f.pick("effectiveEndDate")); err != nil {
		return rec, ReasonBadDate
	}

	if tier := f.pick("tierMinimumUnits"); tier != "" {
		d, err := parseDecimal(tier)
		if err != nil || d.IsNegative() {
			return rec, ReasonBadTier
		}
		rec.TierMinimumUnits = &d
	}

	rec.CurrencyCode = types.Currency(f.pick(cols.currency...))
	if rec.CurrencyCode == "" {
		rec.CurrencyCode = fallback
	}

	return rec, ""
}
