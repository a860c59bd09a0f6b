package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"azure-bom-cost/core/types"
)

// Fingerprint returns a SHA-256 content hash over records. The hash is
// independent of input order so two snapshots holding the same prices
// fingerprint identically.
func Fingerprint(records []types.PriceRecord) string {
	lines := make([]string, len(records))
	for i := range records {
		lines[i] = recordLine(&records[i])
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ShortFingerprint returns the first 12 hex characters of a fingerprint
func ShortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func recordLine(r *types.PriceRecord) string {
	tier := ""
	if r.TierMinimumUnits != nil {
		tier = r.TierMinimumUnits.String()
	}
	return strings.Join([]string{
		r.ServiceName,
		r.ProductName,
		r.SkuName,
		r.ArmSkuName,
		r.MeterName,
		r.ServiceFamily,
		r.UnitOfMeasure,
		r.UnitPrice.String(),
		string(r.CurrencyCode),
		r.RegionKey,
		string(r.PriceType),
		formatTime(r.EffectiveStart),
		formatTime(r.EffectiveEnd),
		tier,
	}, "\x1f")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
