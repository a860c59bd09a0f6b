package clouds

import (
	"strings"
)

// SkuVariants returns the spellings a sku appears under across sources:
// as given, with underscores as spaces, and with or without the ARM
// "Standard_" prefix. Order is preserved and duplicates are dropped.
func SkuVariants(sku string) []string {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil
	}

	bare := sku
	if len(bare) > len("Standard_") && strings.EqualFold(bare[:len("Standard_")], "Standard_") {
		bare = bare[len("Standard_"):]
	}

	candidates := []string{
		sku,
		strings.ReplaceAll(sku, "_", " "),
		bare,
		strings.ReplaceAll(bare, "_", " "),
		"Standard_" + strings.ReplaceAll(bare, " ", "_"),
	}
	return Distinct(candidates...)
}

// Distinct drops blank and case-insensitively repeated strings, keeping order
func Distinct(values ...string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		k := strings.ToLower(strings.TrimSpace(v))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

// Title upper-cases the first letter of each word ("premium" -> "Premium")
func Title(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
