// Package bom loads Bill of Materials documents.
// JSON, YAML and HCL documents describe the same tree and produce the
// same types.BOM. Numbers keep their literal text so quantities and
// prices never pass through binary floats.
package bom

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"azure-bom-cost/core/types"
	"azure-bom-cost/internal/errors"
)

// Format is a BOM document format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	}
	return "", errors.Input(fmt.Sprintf("unsupported BOM file extension: %q", filepath.Ext(path))).
		WithContext("path", path)
}

// Load reads and parses a BOM file
func Load(path string) (*types.BOM, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "failed to read BOM %s", path)
	}
	b, err := Parse(data, format, path)
	if err != nil {
		if e, ok := errors.As(err); ok {
			return nil, e.WithContext("path", path)
		}
		return nil, err
	}
	return b, nil
}

// Parse parses a BOM document. name is used in diagnostics only.
func Parse(data []byte, format Format, name string) (*types.BOM, error) {
	var (
		tree map[string]any
		err  error
	)
	switch format {
	case FormatJSON:
		tree, err = decodeJSON(data)
	case FormatYAML:
		tree, err = decodeYAML(data)
	case FormatHCL:
		tree, err = decodeHCL(data, name)
	default:
		return nil, errors.NotSupported("BOM format " + string(format))
	}
	if err != nil {
		return nil, err
	}
	return fromTree(tree)
}

// fromTree builds a BOM from the generic document tree
func fromTree(tree map[string]any) (*types.BOM, error) {
	b := &types.BOM{}
	var err error

	if b.Region, err = str(tree, "region"); err != nil {
		return nil, err
	}
	currency, err := str(tree, "currency")
	if err != nil {
		return nil, err
	}
	b.Currency = types.Currency(strings.ToUpper(currency))

	if raw, ok := tree["assumptions"]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fieldError("assumptions", "must be an object")
		}
		if b.Assumptions, err = assumptionsFrom(m); err != nil {
			return nil, err
		}
	}

	raw, ok := tree["workloads"]
	if !ok || raw == nil {
		return b, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fieldError("workloads", "must be a list")
	}
	for i, item := range list {
		w, err := workloadFrom(item, i)
		if err != nil {
			return nil, err
		}
		b.Workloads = append(b.Workloads, w)
	}
	return b, nil
}

func workloadFrom(item any, i int) (types.Workload, error) {
	path := fmt.Sprintf("workloads[%d]", i)
	m, ok := item.(map[string]any)
	if !ok {
		return types.Workload{}, fieldError(path, "must be an object")
	}

	var w types.Workload
	var err error
	if w.Name, err = str(m, "name"); err != nil {
		return w, err
	}
	if w.Tier, err = str(m, "tier"); err != nil {
		return w, err
	}

	raw, ok := m["components"]
	if !ok || raw == nil {
		return w, nil
	}
	comps, ok := raw.([]any)
	if !ok {
		return w, fieldError(path+".components", "must be a list")
	}
	for j, c := range comps {
		cm, ok := c.(map[string]any)
		if !ok {
			return w, fieldError(fmt.Sprintf("%s.components[%d]", path, j), "must be an object")
		}
		typ, _ := cm["type"].(string)
		if strings.TrimSpace(typ) == "" {
			return w, fieldError(fmt.Sprintf("%s.components[%d].type", path, j), "is required")
		}
		fields := make(map[string]any, len(cm))
		for k, v := range cm {
			if k != "type" {
				fields[k] = v
			}
		}
		w.Components = append(w.Components, types.Component{Type: strings.TrimSpace(typ), Fields: fields})
	}
	return w, nil
}

func assumptionsFrom(m map[string]any) (types.Assumptions, error) {
	var a types.Assumptions
	var err error

	if v, ok := m["hours_per_month"]; ok && v != nil {
		if a.HoursPerMonth, err = types.ToDecimal(v); err != nil {
			return a, fieldError("assumptions.hours_per_month", "must be a number")
		}
	}
	if a.SavingsPlan, err = commitmentFrom(m, "savings_plan"); err != nil {
		return a, err
	}
	if a.ReservedInstance, err = commitmentFrom(m, "ri"); err != nil {
		return a, err
	}

	if v, ok := m["discounts"]; ok && v != nil {
		dm, ok := v.(map[string]any)
		if !ok {
			return a, fieldError("assumptions.discounts", "must be an object")
		}
		if a.Discounts.SavingsPlan, err = discountsFrom(dm, "savings_plan"); err != nil {
			return a, err
		}
		if a.Discounts.ReservedInstance, err = discountsFrom(dm, "ri"); err != nil {
			return a, err
		}
	}
	return a, nil
}

func commitmentFrom(m map[string]any, key string) (types.Commitment, error) {
	var c types.Commitment
	v, ok := m[key]
	if !ok || v == nil {
		return c, nil
	}
	cm, ok := v.(map[string]any)
	if !ok {
		return c, fieldError("assumptions."+key, "must be an object")
	}
	if cov, ok := cm["coverage_pct"]; ok && cov != nil {
		d, err := types.ToDecimal(cov)
		if err != nil {
			return c, fieldError("assumptions."+key+".coverage_pct", "must be a number")
		}
		c.CoveragePct = d
	}
	if term, ok := cm["term_years"]; ok && term != nil {
		d, err := types.ToDecimal(term)
		if err != nil || !d.Equal(d.Truncate(0)) {
			return c, fieldError("assumptions."+key+".term_years", "must be a whole number")
		}
		c.TermYears = int(d.IntPart())
	}
	return c, nil
}

func discountsFrom(m map[string]any, key string) (map[int]decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	tm, ok := v.(map[string]any)
	if !ok {
		return nil, fieldError("assumptions.discounts."+key, "must be an object")
	}
	out := make(map[int]decimal.Decimal, len(tm))
	for k, raw := range tm {
		term, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(k), "y"))
		if err != nil {
			return nil, fieldError("assumptions.discounts."+key, fmt.Sprintf("term %q is not a number of years", k))
		}
		d, err := types.ToDecimal(raw)
		if err != nil {
			return nil, fieldError("assumptions.discounts."+key+"."+k, "must be a number")
		}
		out[term] = d
	}
	return out, nil
}

func str(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fieldError(key, "must be a string")
	}
	return strings.TrimSpace(s), nil
}

func fieldError(field, msg string) *errors.Error {
	return errors.Newf(errors.TypeInput, "bom: %s %s", field, msg).WithContext("field", field)
}
