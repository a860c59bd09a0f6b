// Package adapter provides thin adapters over the core engine.
// The CLI adapter handles input/output only; all logic is in the engine.
package adapter

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	"azure-bom-cost/adapters/bom"
	"azure-bom-cost/adapters/pricing"
	"azure-bom-cost/core/engine"
	"azure-bom-cost/core/output"
	"azure-bom-cost/core/types"
)

// CLIAdapter is a THIN wrapper around the core engine
type CLIAdapter struct {
	engine     *engine.Engine
	formatters *output.Registry
	output     io.Writer
	format     output.Format
	logger     *zap.Logger
}

// NewCLIAdapter creates a new CLI adapter
func NewCLIAdapter(eng *engine.Engine, formatters *output.Registry, logger *zap.Logger) *CLIAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLIAdapter{
		engine:     eng,
		formatters: formatters,
		output:     os.Stdout,
		format:     output.FormatCLI,
		logger:     logger,
	}
}

// SetOutput sets the output writer
func (a *CLIAdapter) SetOutput(w io.Writer) {
	a.output = w
}

// SetFormat sets the output format
func (a *CLIAdapter) SetFormat(f output.Format) {
	a.format = f
}

// CLIRequest is the CLI input
type CLIRequest struct {
	// BOMPath is a .json, .yaml/.yml or .hcl bill of materials
	BOMPath string

	// Currency overrides the BOM currency when set
	Currency types.Currency

	// Sources selects the price sources. Region, services and currency
	// are filled in from the BOM.
	Sources pricing.Options
}

// Run loads the BOM and its price sources, estimates, and renders the
// report. The report is returned for callers that post-process it.
func (a *CLIAdapter) Run(ctx context.Context, req *CLIRequest) (*output.Report, error) {
	b, err := bom.Load(req.BOMPath)
	if err != nil {
		return nil, err
	}
	if req.Currency != "" {
		b.Currency = req.Currency
	}

	opts := req.Sources
	opts.Region = b.Region
	opts.Currency = a.engine.Currency(b)
	if opts.Retail != nil {
		opts.Services = a.engine.Services(b)
	}
	a.logger.Debug("loading price sources",
		zap.String("bom", req.BOMPath),
		zap.String("currency", string(opts.Currency)),
		zap.Strings("services", opts.Services))

	loaded, err := pricing.Load(ctx, opts, a.logger.Named("sources"))
	if err != nil {
		return nil, err
	}

	est, err := a.engine.Estimate(ctx, b, loaded.Indexes)
	if err != nil {
		return nil, err
	}

	report := &output.Report{
		Estimate:       est,
		Dropped:        loaded.Dropped(),
		SourceWarnings: loaded.Warnings,
	}
	if err := a.formatters.Render(a.output, a.format, report); err != nil {
		return nil, err
	}
	return report, nil
}
