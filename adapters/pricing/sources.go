package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"azure-bom-cost/core/normalize"
	corepricing "azure-bom-cost/core/pricing"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

// Options selects the price sources of a run
type Options struct {
	Currency       types.Currency
	EvaluationDate time.Time

	// Region and Services scope the live retail prefetch
	Region   string
	Services []string

	// Retail is nil when live retail prices are disabled
	Retail *RetailClient

	// RetailCSV is an offline retail snapshot
	RetailCSV string

	// Enterprise is nil when no price sheet is downloaded
	Enterprise *EnterpriseClient

	// EnterpriseCSV is a local price sheet export
	EnterpriseCSV string
}

// Loaded is the outcome of loading every enabled source
type Loaded struct {
	// Indexes are in resolution priority order
	Indexes []*corepricing.Index

	Results  []*normalize.Result
	Warnings []string
}

// Load fetches, normalizes and indexes each enabled source. Enterprise
// sources degrade to a warning when they fail or yield nothing, and the
// enterprise CSV is read only when the downloaded sheet is missing or
// empty. A retail source that cannot be read is an error.
func Load(ctx context.Context, opts Options, logger *zap.Logger) (*Loaded, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	currency := opts.Currency
	if currency == "" {
		currency = types.DefaultCurrency
	}
	at := opts.EvaluationDate
	if at.IsZero() {
		at = time.Now().UTC()
	}

	out := &Loaded{}
	add := func(res *normalize.Result) bool {
		out.Results = append(out.Results, res)
		logDropped(logger, res)
		if len(res.Records) == 0 {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: no usable price rows", res.Source))
			return false
		}
		out.Indexes = append(out.Indexes, corepricing.NewIndex(res.Source, res.Records, at))
		return true
	}
	degrade := func(kind types.SourceKind, err error) {
		msg := fmt.Sprintf("%s unavailable, falling back: %v", kind, err)
		out.Warnings = append(out.Warnings, msg)
		logger.Warn("price source unavailable", zap.String("source", string(kind)), zap.Error(err))
	}

	haveSheet := false
	if opts.Enterprise != nil {
		rows, err := opts.Enterprise.Download(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			degrade(types.SourceEnterpriseAPI, err)
		} else {
			haveSheet = add(normalize.Enterprise(rows, types.SourceEnterpriseAPI, currency))
		}
	}

	if opts.EnterpriseCSV != "" && !haveSheet {
		rows, err := LoadCSV(opts.EnterpriseCSV)
		if err != nil {
			degrade(types.SourceEnterpriseCSV, err)
		} else {
			add(normalize.Enterprise(rows, types.SourceEnterpriseCSV, currency))
		}
	}

	if opts.RetailCSV != "" {
		rows, err := LoadCSV(opts.RetailCSV)
		if err != nil {
			return nil, err
		}
		add(normalize.Retail(rows, types.SourceRetailOffline, currency))
	}

	if opts.Retail != nil {
		rows, err := opts.Retail.ForCurrency(currency).Prefetch(ctx, opts.Services, normalize.Region(opts.Region))
		if err != nil {
			return nil, err
		}
		add(normalize.Retail(rows, types.SourceRetailLive, currency))
	}

	if len(out.Indexes) == 0 {
		return nil, errors.Config("no price source produced any prices", nil)
	}
	out.Indexes = corepricing.OrderByPriority(out.Indexes)
	return out, nil
}

// Dropped returns the dropped row counts of every source, by source and reason
func (l *Loaded) Dropped() map[types.SourceKind]map[string]int {
	out := make(map[types.SourceKind]map[string]int)
	for _, r := range l.Results {
		if r.DroppedTotal() > 0 {
			out[r.Source] = r.Dropped
		}
	}
	return out
}

func logDropped(logger *zap.Logger, res *normalize.Result) {
	reasons := make([]string, 0, len(res.Dropped))
	for reason := range res.Dropped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		logger.Warn("dropped price rows",
			zap.String("source", string(res.Source)),
			zap.String("reason", reason),
			zap.Int("rows", res.Dropped[reason]))
	}
	logger.Info("price source loaded",
		zap.String("source", string(res.Source)),
		zap.Int("records", len(res.Records)),
		zap.Int("dropped", res.DroppedTotal()))
}
