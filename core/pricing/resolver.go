package pricing

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"azure-bom-cost/core/types"
)

// Attempt is one lookup made while resolving a query
type Attempt struct {
	Source types.SourceKind `json:"source"`
	Level  types.MatchLevel `json:"level"`
	Key    string           `json:"key"`
}

// String renders the attempt as source/level:key
func (a Attempt) String() string {
	return fmt.Sprintf("%s/%s:%s", a.Source, a.Level, a.Key)
}

// ResolvedPrice is the outcome of resolving one query. Record is nil
// when no source matched; Attempts then lists everything tried.
type ResolvedPrice struct {
	Record *types.PriceRecord `json:"record,omitempty"`
	Source types.SourceKind   `json:"source,omitempty"`
	Match  types.MatchLevel   `json:"match"`

	// RegionMismatch is set when the record is neither in the requested region nor global
	RegionMismatch bool `json:"region_mismatch,omitempty"`

	Attempts []Attempt `json:"attempts,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Resolved reports whether a record was found
func (p ResolvedPrice) Resolved() bool {
	return p.Record != nil
}

// AttemptKeys renders the attempts as strings
func (p ResolvedPrice) AttemptKeys() []string {
	out := make([]string, len(p.Attempts))
	for i, a := range p.Attempts {
		out[i] = a.String()
	}
	return out
}

// Unresolved returns a no-match result carrying the given attempts
func Unresolved(attempts []Attempt) ResolvedPrice {
	return ResolvedPrice{Match: types.MatchNone, Attempts: attempts}
}

// Resolver walks sources in order and returns the first match.
// Sources are never blended for a single query.
type Resolver struct {
	sources  []*Index
	currency types.Currency
	logger   *zap.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCurrency sets the run currency; records priced in another
// currency resolve with a warning
func WithCurrency(c types.Currency) Option {
	return func(r *Resolver) { r.currency = c }
}

// WithLogger sets the logger used for resolution diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a resolver over sources, consulted in the given order
func NewResolver(sources []*Index, opts ...Option) *Resolver {
	r := &Resolver{
		sources: sources,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sources returns the indexes in resolution order
func (r *Resolver) Sources() []*Index {
	return r.sources
}

// Resolve is a convenience for NewResolver(sources).Resolve(q, region)
func Resolve(q Query, region string, sources []*Index) ResolvedPrice {
	return NewResolver(sources).Resolve(q, region)
}

// Resolve finds the price record for q in region. Within each source
// it tries exact, then relaxed (any region), then by-family lookups
// before moving to the next source. The first source with any match wins.
func (r *Resolver) Resolve(q Query, region string) ResolvedPrice {
	var attempts []Attempt

	for _, src := range r.sources {
		rec, level, tried := resolveIn(src, q, region)
		attempts = append(attempts, tried...)
		if rec == nil {
			continue
		}

		p := ResolvedPrice{
			Record:         rec,
			Source:         src.Kind(),
			Match:          level,
			RegionMismatch: rec.RegionKey != region && !rec.IsGlobal(),
			Attempts:       attempts,
		}
		if r.currency != "" && rec.CurrencyCode != "" && !rec.CurrencyCode.Equal(r.currency) {
			p.Warnings = append(p.Warnings, fmt.Sprintf("record priced in %s, run currency is %s", rec.CurrencyCode, r.currency))
		}
		if level != types.MatchExact {
			r.logger.Debug("non-exact price match",
				zap.String("service", q.Service),
				zap.Strings("skus", q.Skus),
				zap.String("source", string(src.Kind())),
				zap.String("match", string(level)),
			)
		}
		return p
	}

	r.logger.Debug("no price found",
		zap.String("service", q.Service),
		zap.Strings("skus", q.Skus),
		zap.String("region", region),
		zap.Int("attempts", len(attempts)),
	)
	return Unresolved(attempts)
}

func resolveIn(src *Index, q Query, region string) (*types.PriceRecord, types.MatchLevel, []Attempt) {
	var tried []Attempt
	pick := func(level types.MatchLevel, key string, found []types.PriceRecord) *types.PriceRecord {
		tried = append(tried, Attempt{Source: src.Kind(), Level: level, Key: key})
		found = filter(found, q)
		rec, ok := Select(found, q.Unit, region)
		if !ok {
			return nil
		}
		return &rec
	}

	services := q.Services()

	for _, svc := range services {
		for _, sku := range q.Skus {
			if rec := pick(types.MatchExact, joinKey(svc, sku, region, q.Unit), src.LookupExact(svc, sku, region, q.Unit)); rec != nil {
				return rec, types.MatchExact, tried
			}
		}
	}

	for _, svc := range services {
		for _, sku := range q.Skus {
			if rec := pick(types.MatchRelaxed, joinKey(svc, sku, "*", q.Unit), src.LookupRelaxed(svc, sku, q.Unit)); rec != nil {
				return rec, types.MatchRelaxed, tried
			}
		}
	}

	if q.MeterContains != "" {
		families := services
		if q.Family != "" {
			families = append([]string{q.Family}, services...)
		}
		for _, fam := range families {
			if rec := pick(types.MatchFamily, joinKey(fam, "~"+q.MeterContains, q.Unit), src.LookupByFamily(fam, q.MeterContains, q.Unit)); rec != nil {
				return rec, types.MatchFamily, tried
			}
		}
	}

	return nil, types.MatchNone, tried
}

func filter(records []types.PriceRecord, q Query) []types.PriceRecord {
	if !q.filtered() {
		return records
	}
	out := records[:0:0]
	for i := range records {
		if q.accepts(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// OrderByPriority returns the indexes sorted into the default priority
// order: enterprise API, enterprise CSV, retail offline, retail live.
// Nil entries are dropped.
func OrderByPriority(indexes []*Index) []*Index {
	out := make([]*Index, 0, len(indexes))
	for _, x := range indexes {
		if x != nil {
			out = append(out, x)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind().Priority() < out[j].Kind().Priority()
	})
	return out
}
