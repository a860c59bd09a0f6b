// Package pricing indexes canonical price records per source and
// resolves component meters against an ordered list of sources.
package pricing

import (
	"time"

	"azure-bom-cost/core/types"
	"azure-bom-cost/core/units"
)

// Index is a read-only lookup structure over one source's records,
// fixed at an evaluation date. Only Consumption records effective at
// that date are indexed.
type Index struct {
	kind types.SourceKind
	at   time.Time

	records []types.PriceRecord

	// Offered counts all records handed to NewIndex
	offered int

	exact     map[string][]int // service|sku|region
	anyRegion map[string][]int // service|sku
	byService map[string][]int // service
	byFamily  map[string][]int // service family

	fingerprint string
}

// NewIndex builds an index over records valid at evalDate
func NewIndex(kind types.SourceKind, records []types.PriceRecord, evalDate time.Time) *Index {
	idx := &Index{
		kind:      kind,
		at:        evalDate,
		offered:   len(records),
		exact:     make(map[string][]int),
		anyRegion: make(map[string][]int),
		byService: make(map[string][]int),
		byFamily:  make(map[string][]int),
	}

	for _, r := range records {
		if r.PriceType != types.PriceConsumption || !r.EffectiveAt(evalDate) {
			continue
		}
		i := len(idx.records)
		idx.records = append(idx.records, r)

		for _, sku := range skuKeys(&r) {
			addOnce(idx.exact, joinKey(r.ServiceName, sku, r.RegionKey), i)
			addOnce(idx.anyRegion, joinKey(r.ServiceName, sku), i)
		}
		idx.byService[normKey(r.ServiceName)] = append(idx.byService[normKey(r.ServiceName)], i)
		if r.ServiceFamily != "" {
			idx.byFamily[normKey(r.ServiceFamily)] = append(idx.byFamily[normKey(r.ServiceFamily)], i)
		}
	}

	idx.fingerprint = Fingerprint(idx.records)
	return idx
}

// skuKeys returns the distinct names a record can be found under
func skuKeys(r *types.PriceRecord) []string {
	var out []string
	seen := make(map[string]bool, 3)
	for _, s := range []string{r.SkuName, r.ArmSkuName, r.MeterName} {
		k := normKey(s)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

func addOnce(m map[string][]int, key string, i int) {
	list := m[key]
	if n := len(list); n > 0 && list[n-1] == i {
		return
	}
	m[key] = append(list, i)
}

// Kind returns the source this index was built from
func (x *Index) Kind() types.SourceKind { return x.kind }

// EvaluatedAt returns the evaluation date
func (x *Index) EvaluatedAt() time.Time { return x.at }

// Len returns the number of indexed records
func (x *Index) Len() int { return len(x.records) }

// Excluded returns how many offered records were filtered out as
// non-Consumption or not effective at the evaluation date
func (x *Index) Excluded() int { return x.offered - len(x.records) }

// Fingerprint returns the content hash of the indexed records
func (x *Index) Fingerprint() string { return x.fingerprint }

// LookupExact returns records matching service, sku, region and unit
func (x *Index) LookupExact(service, sku, region, unit string) []types.PriceRecord {
	return x.collect(x.exact[joinKey(service, sku, region)], unit, nil)
}

// LookupRelaxed returns records matching service, sku and unit in any region
func (x *Index) LookupRelaxed(service, sku, unit string) []types.PriceRecord {
	return x.collect(x.anyRegion[joinKey(service, sku)], unit, nil)
}

// LookupByFamily returns records in a service family (or, failing
// that, a service of the same name) whose meter or product name
// contains meterSubstring
func (x *Index) LookupByFamily(family, meterSubstring, unit string) []types.PriceRecord {
	if meterSubstring == "" {
		return nil
	}
	key := normKey(family)
	ids := mergeIDs(x.byFamily[key], x.byService[key])
	return x.collect(ids, unit, func(r *types.PriceRecord) bool {
		return containsFold(r.MeterName, meterSubstring) || containsFold(r.ProductName, meterSubstring)
	})
}

func (x *Index) collect(ids []int, unit string, keep func(*types.PriceRecord) bool) []types.PriceRecord {
	if len(ids) == 0 {
		return nil
	}
	out := make([]types.PriceRecord, 0, len(ids))
	for _, i := range ids {
		r := &x.records[i]
		if !units.Compatible(unit, r.UnitOfMeasure) {
			continue
		}
		if keep != nil && !keep(r) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// mergeIDs merges two ascending id lists without duplicates
func mergeIDs(a, b []int) []int {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i >= len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
