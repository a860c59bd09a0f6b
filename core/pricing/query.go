package pricing

import (
	"strings"

	"azure-bom-cost/core/types"
)

// Query describes the meter a component needs priced
type Query struct {
	// Service is the primary service name, e.g. "Virtual Machines"
	Service string

	// Aliases are alternative service names tried after Service
	Aliases []string

	// Skus are candidate sku names, tried in order. Matched against
	// sku name, ARM sku name and meter name.
	Skus []string

	// Unit is the declared unit of measure; blank accepts any unit
	Unit string

	// Family is the service family for the by-family lookup; blank
	// means search within the service names instead
	Family string

	// MeterContains enables the by-family lookup: a case-insensitive
	// substring of the meter or product name
	MeterContains string

	// Product, when set, must appear in the record's product name
	Product string

	// Exclude drops records whose product, sku or meter text contains any token
	Exclude []string

	// RequireAny keeps only records whose product, sku or meter text
	// contains at least one token
	RequireAny []string
}

// Services returns Service followed by its aliases
func (q Query) Services() []string {
	out := make([]string, 0, 1+len(q.Aliases))
	if q.Service != "" {
		out = append(out, q.Service)
	}
	return append(out, q.Aliases...)
}

// accepts applies the product, exclusion and required-token filters
func (q Query) accepts(r *types.PriceRecord) bool {
	if q.Product != "" && !containsFold(r.ProductName, q.Product) {
		return false
	}
	if len(q.Exclude) == 0 && len(q.RequireAny) == 0 {
		return true
	}
	text := strings.ToLower(r.ProductName + " " + r.SkuName + " " + r.MeterName)
	for _, tok := range q.Exclude {
		if tok != "" && strings.Contains(text, strings.ToLower(tok)) {
			return false
		}
	}
	if len(q.RequireAny) == 0 {
		return true
	}
	for _, tok := range q.RequireAny {
		if tok != "" && strings.Contains(text, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

// filtered reports whether accepts can reject anything
func (q Query) filtered() bool {
	return q.Product != "" || len(q.Exclude) > 0 || len(q.RequireAny) > 0
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// normKey lowercases and collapses whitespace
func normKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func joinKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = normKey(p)
	}
	return strings.Join(parts, "|")
}
