// Package engine provides the API-primary estimation engine.
// CLI is a thin wrapper around this engine.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"azure-bom-cost/clouds"
	"azure-bom-cost/core/cost"
	"azure-bom-cost/core/normalize"
	"azure-bom-cost/core/optimize"
	"azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

// Config configures the estimation engine
type Config struct {
	// Parallelism bounds concurrent component pricing; <= 0 means 1
	Parallelism int

	// Currency is used when the BOM names none
	Currency types.Currency

	// Discounts is the base SP/RI discount table
	Discounts types.DiscountTable

	// EvaluationDate is reported with the estimate; indexes are built at it
	EvaluationDate time.Time
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		Parallelism: 8,
		Currency:    types.DefaultCurrency,
		Discounts:   optimize.DefaultDiscounts(),
	}
}

// Engine prices a BOM against a set of price indexes
type Engine struct {
	registry *clouds.Registry
	config   Config
	logger   *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine dispatching to the handlers in registry
func New(registry *clouds.Registry, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		config:   cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SourceInfo describes one index consulted during the run
type SourceInfo struct {
	Kind        types.SourceKind `json:"kind"`
	Records     int              `json:"records"`
	Excluded    int              `json:"excluded"`
	Fingerprint string           `json:"fingerprint"`
}

// Unhandled is a component skipped because no handler knows its type
type Unhandled struct {
	Workload  string `json:"workload"`
	Component int    `json:"component"`
	Type      string `json:"type"`
}

// Estimate is the result of one run
type Estimate struct {
	RunID          string         `json:"run_id"`
	GeneratedAt    time.Time      `json:"generated_at"`
	EvaluationDate time.Time      `json:"evaluation_date"`
	Region         string         `json:"region"`
	Currency       types.Currency `json:"currency"`

	Assumptions types.Assumptions `json:"assumptions"`
	Model       *optimize.Model   `json:"model"`

	Sources []SourceInfo `json:"sources"`

	*cost.Summary

	Unhandled []Unhandled `json:"unhandled,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
}

type job struct {
	workload  int
	component int
}

type slot struct {
	line      types.CostLine
	unhandled bool
}

// Estimate prices every component of bom. Assumptions are validated
// before anything is priced. Components are priced concurrently and
// reassembled in declared order. An unresolved price is a result
// state, not an error; unknown component types are skipped with a
// warning.
func (e *Engine) Estimate(ctx context.Context, bom *types.BOM, sources []*pricing.Index) (*Estimate, error) {
	if bom == nil {
		return nil, errors.Input("bom is required")
	}

	model, err := optimize.New(bom.Assumptions, e.config.Discounts)
	if err != nil {
		return nil, err
	}
	if model.Clamped {
		e.logger.Warn("savings plan coverage reduced so that sp + ri <= 1",
			zap.String("savings_plan", model.SPCoverage.String()))
	}

	region := normalize.Region(bom.Region)
	if region == "" {
		return nil, errors.Input("bom region is required").WithContext("field", "region")
	}

	currency := e.Currency(bom)

	runID := uuid.NewString()
	logger := e.logger.With(zap.String("run_id", runID))

	resolver := pricing.NewResolver(sources,
		pricing.WithCurrency(currency),
		pricing.WithLogger(logger.Named("resolver")),
	)

	var jobs []job
	offsets := make([]int, len(bom.Workloads))
	for wi, w := range bom.Workloads {
		offsets[wi] = len(jobs)
		for ci := range w.Components {
			jobs = append(jobs, job{workload: wi, component: ci})
		}
	}
	slots := make([]slot, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	limit := e.config.Parallelism
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := bom.Workloads[j.workload]
			c := w.Components[j.component]

			h, ok := e.registry.Get(c.Type)
			if !ok {
				slots[i].unhandled = true
				return nil
			}

			line, err := clouds.ComputeCostLine(h, c, bom.Assumptions, func(q pricing.Query) pricing.ResolvedPrice {
				return resolver.Resolve(q, region)
			})
			if err != nil {
				if de, ok := errors.As(err); ok {
					return de.WithContext("workload", w.Name).WithContext("component", j.component)
				}
				return errors.Wrapf(errors.TypeInternal, err, "%s component %d", w.Name, j.component)
			}

			line.Workload = w.Name
			line.Tier = w.Tier
			line.Component = j.component
			model.ApplyLine(&line)
			slots[i].line = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	est := &Estimate{
		RunID:          runID,
		GeneratedAt:    time.Now().UTC(),
		EvaluationDate: e.config.EvaluationDate,
		Region:         region,
		Currency:       currency,
		Assumptions:    bom.Assumptions,
		Model:          model,
	}
	for _, src := range sources {
		est.Sources = append(est.Sources, SourceInfo{
			Kind:        src.Kind(),
			Records:     src.Len(),
			Excluded:    src.Excluded(),
			Fingerprint: src.Fingerprint(),
		})
	}

	workloads := make([]types.WorkloadTotal, len(bom.Workloads))
	for wi, w := range bom.Workloads {
		workloads[wi] = types.WorkloadTotal{Name: w.Name, Tier: w.Tier}
		for ci, c := range w.Components {
			s := slots[offsets[wi]+ci]
			if s.unhandled {
				est.Unhandled = append(est.Unhandled, Unhandled{Workload: w.Name, Component: ci, Type: c.Type})
				logger.Warn("no handler for component type, skipped",
					zap.String("workload", w.Name),
					zap.Int("component", ci),
					zap.String("type", c.Type))
				continue
			}
			workloads[wi].Lines = append(workloads[wi].Lines, s.line)
			for _, ch := range s.line.Charges {
				est.Warnings = append(est.Warnings, ch.Warnings...)
			}
		}
	}
	est.Warnings = dedupe(est.Warnings)
	est.Summary = cost.Aggregate(workloads)

	for _, l := range est.Summary.Lines() {
		if !l.Resolved {
			logger.Debug("unresolved cost line",
				zap.String("workload", l.Workload),
				zap.String("type", l.Type),
				zap.String("description", l.Description))
		}
	}
	logger.Info("estimate complete",
		zap.String("region", region),
		zap.Int("components", len(jobs)),
		zap.Int("unresolved", est.Summary.Unresolved),
		zap.Int("unhandled", len(est.Unhandled)),
		zap.String("payg", est.Summary.Grand.Payg.StringFixed(2)),
	)
	return est, nil
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Currency returns the currency a run of bom is priced in: the BOM's,
// then the configured one, then the default
func (e *Engine) Currency(bom *types.BOM) types.Currency {
	if bom != nil && bom.Currency != "" {
		return bom.Currency
	}
	if e.config.Currency != "" {
		return e.config.Currency
	}
	return types.DefaultCurrency
}

// Services returns the retail service names the handlers of bom will
// query, in first-use order. Components that fail to build meters are
// skipped here; Estimate reports them.
func (e *Engine) Services(bom *types.BOM) []string {
	if bom == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, w := range bom.Workloads {
		for _, c := range w.Components {
			h, ok := e.registry.Get(c.Type)
			if !ok {
				continue
			}
			meters, err := h.Meters(c, bom.Assumptions)
			if err != nil {
				continue
			}
			for _, m := range meters {
				for _, s := range m.Query.Services() {
					if !seen[s] {
						seen[s] = true
						out = append(out, s)
					}
				}
			}
		}
	}
	return out
}
