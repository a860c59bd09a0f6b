// Package cost sums priced component lines into workload, tier and
// grand totals.
package cost

import (
	"azure-bom-cost/core/types"
)

// Summary holds the derived totals of one run
type Summary struct {
	Workloads []types.WorkloadTotal `json:"workloads"`
	Tiers     []types.TierTotal     `json:"tiers"`
	Grand     types.Totals          `json:"grand"`

	// Unresolved counts lines with at least one unpriced meter
	Unresolved int `json:"unresolved"`
}

// Aggregate totals each workload's lines, then groups workloads by tier.
// Workloads keep their input order and tiers their first-appearance
// order. Sums are exact; nothing is rounded.
func Aggregate(workloads []types.WorkloadTotal) *Summary {
	s := &Summary{
		Workloads: make([]types.WorkloadTotal, len(workloads)),
	}
	tierPos := make(map[string]int)

	for i, w := range workloads {
		var totals types.Totals
		for _, l := range w.Lines {
			totals = totals.AddLine(l)
			if !l.Resolved {
				s.Unresolved++
			}
		}
		w.Totals = totals
		s.Workloads[i] = w

		pos, ok := tierPos[w.Tier]
		if !ok {
			pos = len(s.Tiers)
			tierPos[w.Tier] = pos
			s.Tiers = append(s.Tiers, types.TierTotal{Tier: w.Tier})
		}
		s.Tiers[pos].Workloads = append(s.Tiers[pos].Workloads, w.Name)
		s.Tiers[pos].Totals = s.Tiers[pos].Totals.Add(totals)

		s.Grand = s.Grand.Add(totals)
	}
	return s
}

// Lines returns every line across workloads in order
func (s *Summary) Lines() []types.CostLine {
	var out []types.CostLine
	for _, w := range s.Workloads {
		out = append(out, w.Lines...)
	}
	return out
}
