package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one raw price row as decoded from a CSV file or a JSON page.
// Values are strings, json.Number, float64, bool or nil.
type Row map[string]any

// CanonicalHeadings is the column set written to and read from offline
// retail snapshots. Enterprise exports are mapped onto these names.
var CanonicalHeadings = []string{
	"serviceName", "productName", "skuName", "meterName", "unitOfMeasure",
	"retailPrice", "currencyCode", "armRegionName", "priceType", "effectiveStartDate",
	"meterId", "skuId", "productId", "effectiveEndDate", "unitPrice",
	"serviceId", "location", "savingsPlan", "isPrimaryMeterRegion", "serviceFamily",
	"type", "reservationTerm", "armSkuName", "tierMinimumUnits",
}

// fields is a case-insensitive view over a row
type fields map[string]string

func view(r Row) fields {
	f := make(fields, len(r))
	for k, v := range r {
		key := strings.ToLower(strings.TrimSpace(k))
		s := strings.TrimSpace(Text(v))
		if s == "" {
			continue
		}
		// first non-blank variant wins when a row carries the same column twice
		if _, exists := f[key]; !exists {
			f[key] = s
		}
	}
	return f
}

// pick returns the first non-blank value among the named columns
func (f fields) pick(keys ...string) string {
	for _, k := range keys {
		if v, ok := f[strings.ToLower(k)]; ok {
			return v
		}
	}
	return ""
}

// Text renders a raw cell value as written in a CSV snapshot
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	}
	return ""
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return decimal.NewFromString(s)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// parseDate parses the date formats seen in retail pages and price sheet exports
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			t = t.UTC()
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
