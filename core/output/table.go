package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"azure-bom-cost/core/types"
)

// TableFormatter renders a report as terminal tables
type TableFormatter struct {
	opts     Options
	markdown bool
}

// NewTableFormatter creates the cli formatter
func NewTableFormatter(opts Options) *TableFormatter {
	return &TableFormatter{opts: opts}
}

// NewMarkdownFormatter creates the markdown formatter. Markdown output
// is never colored.
func NewMarkdownFormatter(opts Options) *TableFormatter {
	opts.Color = false
	return &TableFormatter{opts: opts, markdown: true}
}

// Format returns the format type
func (f *TableFormatter) Format() Format {
	if f.markdown {
		return FormatMarkdown
	}
	return FormatCLI
}

// Render writes the header, one table per workload, then the totals
func (f *TableFormatter) Render(w io.Writer, r *Report) error {
	cur := r.Currency

	f.heading(w, 1, "Azure BOM cost estimate")
	f.para(w, fmt.Sprintf("Region %s, currency %s, %s hours/month, run %s",
		r.Region, cur, r.Assumptions.Hours(), r.RunID))
	if r.Model != nil && (r.Model.SPCoverage.IsPositive() || r.Model.RICoverage.IsPositive()) {
		f.para(w, fmt.Sprintf("Savings plan %s%% at %s%% discount, reserved instances %s%% at %s%% discount",
			pct(r.Model.SPCoverage), pct(r.Model.SPDiscount), pct(r.Model.RICoverage), pct(r.Model.RIDiscount)))
	}

	for _, wl := range r.Workloads {
		title := wl.Name
		if wl.Tier != "" {
			title = fmt.Sprintf("%s (%s)", wl.Name, wl.Tier)
		}
		f.heading(w, 2, title)

		t := f.newTable()
		t.AppendHeader(table.Row{"#", "Type", "Description", "Price", "Quantity", "PAYG", "Optimized"})
		for _, l := range wl.Lines {
			t.AppendRow(f.lineRow(&l, cur))
			if f.opts.Details {
				for _, c := range l.Charges {
					t.AppendRow(f.chargeRow(c, cur))
				}
			}
		}
		t.AppendFooter(table.Row{"", "", "Total", "", "", Money(wl.Totals.Payg, cur), Money(wl.Totals.Optimized, cur)})
		f.render(w, t)
	}

	f.heading(w, 2, "Totals")
	t := f.newTable()
	t.AppendHeader(table.Row{"Workload", "Tier", "PAYG", "Optimized", "Savings"})
	for _, wl := range r.Workloads {
		t.AppendRow(table.Row{wl.Name, wl.Tier, Money(wl.Totals.Payg, cur), Money(wl.Totals.Optimized, cur), Money(wl.Totals.Savings(), cur)})
	}
	t.AppendSeparator()
	for _, tier := range r.Tiers {
		name := tier.Tier
		if name == "" {
			name = "(untiered)"
		}
		t.AppendRow(table.Row{"tier", name, Money(tier.Totals.Payg, cur), Money(tier.Totals.Optimized, cur), Money(tier.Totals.Savings(), cur)})
	}
	t.AppendFooter(table.Row{"Grand total", "", Money(r.Grand.Payg, cur), Money(r.Grand.Optimized, cur), Money(r.Grand.Savings(), cur)})
	f.render(w, t)

	if len(r.Sources) > 0 {
		f.heading(w, 2, "Price sources")
		t := f.newTable()
		t.AppendHeader(table.Row{"Source", "Records", "Excluded", "Fingerprint"})
		for _, s := range r.Sources {
			fp := s.Fingerprint
			if len(fp) > 12 {
				fp = fp[:12]
			}
			t.AppendRow(table.Row{s.Kind, s.Records, s.Excluded, fp})
		}
		f.render(w, t)
	}

	var notes []string
	if r.Unresolved > 0 {
		notes = append(notes, fmt.Sprintf("%d line(s) have unresolved prices and are costed at 0", r.Unresolved))
	}
	for _, u := range r.Unhandled {
		notes = append(notes, fmt.Sprintf("%s component %d: no handler for type %q, skipped", u.Workload, u.Component, u.Type))
	}
	notes = append(notes, r.SourceWarnings...)
	notes = append(notes, r.Warnings...)
	if len(notes) > 0 {
		f.heading(w, 2, "Warnings")
		for _, n := range notes {
			fmt.Fprintf(w, "- %s\n", n)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func (f *TableFormatter) lineRow(l *types.CostLine, cur types.Currency) table.Row {
	payg := Money(l.PaygCost, cur)
	optimized := Money(l.OptimizedCost, cur)
	prov := Provenance(l)
	if !l.Resolved {
		payg += " unresolved"
		if f.opts.Color {
			payg = text.FgRed.Sprint(payg)
			prov = text.FgRed.Sprint(prov)
		}
	}
	return table.Row{l.Component + 1, l.Type, l.Description, prov, Quantity(l.QuantityBilled), payg, optimized}
}

func (f *TableFormatter) chargeRow(c types.Charge, cur types.Currency) table.Row {
	price := string(c.Match)
	if c.Resolved {
		price = fmt.Sprintf("%s %s / %s", cur, c.UnitPrice, c.UnitOfMeasure)
	} else if len(c.Attempts) > 0 {
		price = "tried " + strings.Join(c.Attempts, ", ")
	}
	return table.Row{"", "", "  " + c.Name, price, Quantity(c.QuantityBilled), Money(c.Cost, cur), ""}
}

func (f *TableFormatter) newTable() table.Writer {
	t := table.NewWriter()
	style := table.StyleDefault
	if !f.markdown {
		style = table.StyleRounded
	}
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Quantity", Align: text.AlignRight},
		{Name: "PAYG", Align: text.AlignRight},
		{Name: "Optimized", Align: text.AlignRight},
		{Name: "Savings", Align: text.AlignRight},
	})
	return t
}

func (f *TableFormatter) render(w io.Writer, t table.Writer) {
	if f.markdown {
		fmt.Fprintln(w, t.RenderMarkdown())
	} else {
		fmt.Fprintln(w, t.Render())
	}
	fmt.Fprintln(w)
}

func (f *TableFormatter) heading(w io.Writer, level int, s string) {
	if f.markdown {
		fmt.Fprintf(w, "%s %s\n\n", strings.Repeat("#", level), s)
		return
	}
	if level == 1 {
		fmt.Fprintln(w, strings.ToUpper(s))
	} else {
		fmt.Fprintln(w, s)
	}
}

func (f *TableFormatter) para(w io.Writer, s string) {
	fmt.Fprintln(w, s)
	if f.markdown {
		fmt.Fprintln(w)
	}
}
