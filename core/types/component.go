// Package types - BOM components and their attribute bag
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/internal/errors"
)

// Component is one BOM line item. Fields is an opaque bag whose keys
// depend on Type; handlers read it through a FieldReader.
type Component struct {
	Type   string         `json:"type"`
	Fields map[string]any `json:"fields"`
}

// Has reports whether a field is present and non-nil
func (c Component) Has(key string) bool {
	v, ok := c.Fields[key]
	return ok && v != nil
}

// Raw returns a field value as stored
func (c Component) Raw(key string) (any, bool) {
	v, ok := c.Fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Reader returns a FieldReader over the component's fields
func (c Component) Reader() *FieldReader {
	return &FieldReader{c: c}
}

// FieldReader reads typed values from a component. The first conversion
// failure is kept and returned by Err; later reads return defaults.
type FieldReader struct {
	c   Component
	err error
}

// Err returns the first conversion error, if any
func (r *FieldReader) Err() error {
	return r.err
}

func (r *FieldReader) fail(key string, v any, want string) {
	if r.err != nil {
		return
	}
	r.err = errors.Newf(errors.TypeInput, "%s: field %q: cannot read %v as %s", r.c.Type, key, v, want).
		WithContext("field", key)
}

// String returns a trimmed string field or def when absent or blank
func (r *FieldReader) String(key, def string) string {
	v, ok := r.c.Raw(key)
	if !ok {
		return def
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case json.Number:
		s = x.String()
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// FirstString returns the first non-blank string among keys
func (r *FieldReader) FirstString(def string, keys ...string) string {
	for _, k := range keys {
		if s := r.String(k, ""); s != "" {
			return s
		}
	}
	return def
}

// Decimal returns a numeric field or def when absent
func (r *FieldReader) Decimal(key string, def decimal.Decimal) decimal.Decimal {
	v, ok := r.c.Raw(key)
	if !ok {
		return def
	}
	d, err := ToDecimal(v)
	if err != nil {
		r.fail(key, v, "number")
		return def
	}
	return d
}

// FirstDecimal returns the first present numeric field among keys
func (r *FieldReader) FirstDecimal(def decimal.Decimal, keys ...string) decimal.Decimal {
	for _, k := range keys {
		if r.c.Has(k) {
			return r.Decimal(k, def)
		}
	}
	return def
}

// OptionalDecimal returns a numeric field, or nil when absent
func (r *FieldReader) OptionalDecimal(key string) *decimal.Decimal {
	if !r.c.Has(key) {
		return nil
	}
	d := r.Decimal(key, decimal.Zero)
	if r.err != nil {
		return nil
	}
	return &d
}

// Int returns an integer field or def when absent
func (r *FieldReader) Int(key string, def int) int {
	v, ok := r.c.Raw(key)
	if !ok {
		return def
	}
	d, err := ToDecimal(v)
	if err != nil || !d.Equal(d.Truncate(0)) {
		r.fail(key, v, "integer")
		return def
	}
	return int(d.IntPart())
}

// Bool returns a boolean field or def when absent
func (r *FieldReader) Bool(key string, def bool) bool {
	v, ok := r.c.Raw(key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			r.fail(key, v, "bool")
			return def
		}
		return b
	}
	r.fail(key, v, "bool")
	return def
}

// Map returns a nested object field, or nil
func (r *FieldReader) Map(key string) map[string]any {
	v, ok := r.c.Raw(key)
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		r.fail(key, v, "object")
		return nil
	}
	return m
}

// ToDecimal converts the numeric representations produced by the BOM
// loaders into a decimal without passing through binary floats where
// the literal text is still available.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(x), ",", ""))
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	}
	return decimal.Zero, fmt.Errorf("unsupported numeric type %T", v)
}
