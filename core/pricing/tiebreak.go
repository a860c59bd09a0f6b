package pricing

import (
	"sort"

	"azure-bom-cost/core/types"
	"azure-bom-cost/core/units"
)

// Select picks exactly one record from same-level candidates. The order
// of preference is:
//
//  1. latest effective start (a missing start is the oldest)
//  2. unit textually equal to the declared unit
//  3. positive price over zero price
//  4. requested region, then global, then any other region
//  5. lowest tier minimum units
//  6. position in the source
//
// Candidates must be in source order; Select does not modify them.
func Select(candidates []types.PriceRecord, unit, region string) (types.PriceRecord, bool) {
	if len(candidates) == 0 {
		return types.PriceRecord{}, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	ranked := make([]types.PriceRecord, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return better(&ranked[i], &ranked[j], unit, region)
	})
	return ranked[0], true
}

func better(a, b *types.PriceRecord, unit, region string) bool {
	if c := compareStart(a, b); c != 0 {
		return c > 0
	}
	if unit != "" {
		ua, ub := units.SameText(a.UnitOfMeasure, unit), units.SameText(b.UnitOfMeasure, unit)
		if ua != ub {
			return ua
		}
	}
	if pa, pb := a.UnitPrice.IsPositive(), b.UnitPrice.IsPositive(); pa != pb {
		return pa
	}
	if ra, rb := regionRank(a, region), regionRank(b, region); ra != rb {
		return ra < rb
	}
	if c := a.TierMinimum().Cmp(b.TierMinimum()); c != 0 {
		return c < 0
	}
	return false
}

// compareStart returns >0 when a started later than b
func compareStart(a, b *types.PriceRecord) int {
	switch {
	case a.EffectiveStart == nil && b.EffectiveStart == nil:
		return 0
	case a.EffectiveStart == nil:
		return -1
	case b.EffectiveStart == nil:
		return 1
	case a.EffectiveStart.After(*b.EffectiveStart):
		return 1
	case b.EffectiveStart.After(*a.EffectiveStart):
		return -1
	}
	return 0
}

func regionRank(r *types.PriceRecord, region string) int {
	switch {
	case r.RegionKey == region:
		return 0
	case r.IsGlobal():
		return 1
	}
	return 2
}
