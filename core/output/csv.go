package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"azure-bom-cost/core/types"
)

// CSVHeader is the column set written by the csv format
var CSVHeader = []string{
	"workload", "tier", "component", "type", "description", "match", "sources",
	"quantity_billed", "payg", "optimized", "currency", "resolved",
}

// CSVFormatter writes one row per cost line with money rounded to cents
type CSVFormatter struct{}

// Format returns the format type
func (f *CSVFormatter) Format() Format { return FormatCSV }

// Render writes the header and the lines in declared order
func (f *CSVFormatter) Render(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, wl := range r.Workloads {
		for _, l := range wl.Lines {
			if err := cw.Write(csvRow(&l, r.Currency)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(l *types.CostLine, cur types.Currency) []string {
	sources := make([]string, 0, 2)
	for _, s := range l.Sources() {
		sources = append(sources, string(s))
	}
	match := string(l.Match())
	if !l.Resolved {
		match = "unresolved"
	}
	return []string{
		l.Workload,
		l.Tier,
		strconv.Itoa(l.Component),
		l.Type,
		l.Description,
		match,
		strings.Join(sources, ";"),
		Quantity(l.QuantityBilled),
		Amount(l.PaygCost),
		Amount(l.OptimizedCost),
		string(cur),
		strconv.FormatBool(l.Resolved),
	}
}
