// Package units parses billing units of measure.
//
// Price rows express their granularity as free text: "1 Hour", "100 Hours",
// "10,000", "10K", "1,000,000 GB Seconds", "1 GB/Month", "1/Month". A UOM
// splits into a batch size (how many base units one price covers) and a
// dimension (what is being counted). Two UOMs are compatible when their
// dimensions agree, whatever their batch sizes.
package units

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// GBPerTB is the binary conversion used by storage meters
var GBPerTB = decimal.NewFromInt(1024)

// DaysPerMonth converts daily volumes to monthly ones
var DaysPerMonth = decimal.NewFromInt(30)

// UOM is a parsed unit of measure
type UOM struct {
	// Raw is the text as it appeared in the source
	Raw string

	// Size is the batch size, 1 when the text carries no number
	Size decimal.Decimal

	// Explicit is true when Size came from a leading number in the text
	Explicit bool

	// Dimension is the canonical counted thing: "hour", "gb/month", "count"
	Dimension string
}

var (
	leadingNumber = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([km])?\b\s*(.*)$`)
	perCount      = regexp.MustCompile(`per\s+(\d+)\s*(k|m)?\b`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

var singular = map[string]string{
	"hours":      "hour",
	"hrs":        "hour",
	"hr":         "hour",
	"seconds":    "second",
	"secs":       "second",
	"days":       "day",
	"months":     "month",
	"units":      "unit",
	"requests":   "request",
	"calls":      "call",
	"tokens":     "token",
	"images":     "image",
	"operations": "operation",
	"gbs":        "gb",
	"each":       "",
	"count":      "",
}

// Parse parses a unit of measure. It never fails; unknown text becomes
// its own dimension with size 1.
func Parse(raw string) UOM {
	u := UOM{Raw: raw, Size: decimal.NewFromInt(1)}

	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "per ")

	rest := s
	if m := leadingNumber.FindStringSubmatch(s); m != nil {
		n, err := decimal.NewFromString(m[1])
		if err == nil {
			u.Size = n.Mul(suffix(m[2]))
			u.Explicit = true
			rest = m[3]
		}
	}

	u.Dimension = canonicalDimension(rest)
	return u
}

func suffix(s string) decimal.Decimal {
	switch s {
	case "k":
		return decimal.NewFromInt(1000)
	case "m":
		return decimal.NewFromInt(1000000)
	}
	return decimal.NewFromInt(1)
}

func canonicalDimension(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " / ", "/")
	s = strings.ReplaceAll(s, "-", " ")
	s = spaceRun.ReplaceAllString(s, " ")

	var parts []string
	for _, seg := range strings.Split(s, "/") {
		var words []string
		for _, w := range strings.Fields(seg) {
			if c, ok := singular[w]; ok {
				w = c
			}
			if w != "" {
				words = append(words, w)
			}
		}
		parts = append(parts, strings.Join(words, " "))
	}

	dim := strings.Trim(strings.Join(parts, "/"), "/ ")
	if dim == "" {
		return "count"
	}
	return dim
}

// Compatible reports whether two units measure the same dimension.
// An empty unit is compatible with anything.
func Compatible(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return true
	}
	return Parse(a).Dimension == Parse(b).Dimension
}

// SameText reports whether two units are textually equal ignoring case and spacing
func SameText(a, b string) bool {
	norm := func(s string) string {
		return spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
	}
	return norm(a) == norm(b)
}

// BatchSize returns how many base units one unit price covers. A leading
// number in the UOM wins; otherwise batch hints such as "per 10k" or
// "100K" in the descriptive texts (meter, product, sku) are used. The
// default is 1.
func BatchSize(uom string, texts ...string) decimal.Decimal {
	u := Parse(uom)
	if u.Explicit && u.Size.IsPositive() {
		return u.Size
	}
	if n, ok := detectBatch(uom); ok {
		return n
	}
	if n, ok := detectBatch(strings.Join(texts, " ")); ok {
		return n
	}
	return decimal.NewFromInt(1)
}

var batchWords = regexp.MustCompile(`\b(\d+)\s*([km])\b`)

func detectBatch(text string) (decimal.Decimal, bool) {
	t := strings.ReplaceAll(strings.ToLower(text), ",", "")
	if t == "" {
		return decimal.Zero, false
	}
	if m := perCount.FindStringSubmatch(t); m != nil {
		n, err := decimal.NewFromString(m[1])
		if err == nil && n.IsPositive() {
			return n.Mul(suffix(m[2])), true
		}
	}
	if m := batchWords.FindStringSubmatch(t); m != nil {
		n, err := decimal.NewFromString(m[1])
		if err == nil && n.IsPositive() {
			return n.Mul(suffix(m[2])), true
		}
	}
	return decimal.Zero, false
}

// TBToGB converts terabytes to gigabytes
func TBToGB(tb decimal.Decimal) decimal.Decimal {
	return tb.Mul(GBPerTB)
}

// DailyToMonthly converts a per-day volume to a per-month volume
func DailyToMonthly(perDay decimal.Decimal) decimal.Decimal {
	return perDay.Mul(DaysPerMonth)
}
