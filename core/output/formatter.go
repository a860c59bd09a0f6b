// Package output provides output formatting interfaces.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"azure-bom-cost/core/engine"
	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"

	// FormatCSV is one row per cost line
	FormatCSV Format = "csv"
)

// ParseFormat parses a format name; "table" and "md" are accepted aliases
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cli", "table":
		return FormatCLI, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", errors.Input(fmt.Sprintf("unknown output format %q", s)).WithContext("field", "format")
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is an estimate plus the source diagnostics gathered while
// loading prices
type Report struct {
	*engine.Estimate

	// Dropped counts rejected price rows per source and reason
	Dropped map[types.SourceKind]map[string]int `json:"dropped,omitempty"`

	// SourceWarnings are degradations raised while loading sources
	SourceWarnings []string `json:"source_warnings,omitempty"`
}

// Options tune the human-readable formats
type Options struct {
	// Details adds one row per charge under each cost line
	Details bool

	// Color tags unresolved lines in red; cli format only
	Color bool
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry returns a registry holding every built-in formatter
func NewRegistry(opts Options) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	r.Register(NewTableFormatter(opts))
	r.Register(NewMarkdownFormatter(opts))
	r.Register(&JSONFormatter{Indent: true})
	r.Register(&CSVFormatter{})
	return r
}

// Register adds a formatter, replacing any for the same format
func (r *Registry) Register(f Formatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatters[f.Format()] = f
}

// Get returns the formatter for a format
func (r *Registry) Get(format Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	return f, ok
}

// Formats returns the registered formats, sorted
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Render writes report in format
func (r *Registry) Render(w io.Writer, format Format, report *Report) error {
	f, ok := r.Get(format)
	if !ok {
		return errors.NotSupported(fmt.Sprintf("output format %s", format))
	}
	if report == nil || report.Estimate == nil {
		return errors.Input("nothing to render")
	}
	return f.Render(w, report)
}

// Money rounds half-up to cents and labels the amount with its currency
func Money(d decimal.Decimal, c types.Currency) string {
	return fmt.Sprintf("%s %s", c, Amount(d))
}

// Amount rounds half-up to cents. Costs are never negative, so rounding
// half away from zero is rounding half-up.
func Amount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// Provenance describes where a line's price came from, e.g. "exact retail_api"
func Provenance(l *types.CostLine) string {
	if !l.Resolved {
		return "unresolved"
	}
	parts := []string{string(l.Match())}
	for _, s := range l.Sources() {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, " ")
}

// Quantity renders a billed quantity without trailing zeros
func Quantity(d decimal.Decimal) string {
	return d.Round(4).String()
}

func pct(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).Round(2).String()
}
