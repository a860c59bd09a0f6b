package bom

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"azure-bom-cost/internal/errors"
)

// HCL documents look like:
//
//	region   = "Australia East"
//	currency = "AUD"
//	assumptions = {
//	  savings_plan = { coverage_pct = 0.5 }
//	}
//
//	workload "web" {
//	  tier = "prod"
//	  component "vm" {
//	    sku       = "Standard_D4s_v5"
//	    instances = 3
//	  }
//	}
var (
	rootSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "region", Required: true},
			{Name: "currency"},
			{Name: "assumptions"},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "workload", LabelNames: []string{"name"}},
		},
	}

	workloadSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "tier"},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "component", LabelNames: []string{"type"}},
		},
	}
)

func decodeHCL(data []byte, name string) (map[string]any, error) {
	if name == "" {
		name = "bom.hcl"
	}
	file, diags := hclparse.NewParser().ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, errors.Parsing("invalid BOM HCL", diags)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, errors.Parsing("invalid BOM HCL", diags)
	}

	tree := make(map[string]any)
	if err := attributes(content.Attributes, tree); err != nil {
		return nil, err
	}

	var workloads []any
	for _, block := range content.Blocks {
		w, err := workloadBlock(block)
		if err != nil {
			return nil, err
		}
		workloads = append(workloads, w)
	}
	if workloads != nil {
		tree["workloads"] = workloads
	}
	return tree, nil
}

func workloadBlock(block *hcl.Block) (map[string]any, error) {
	content, diags := block.Body.Content(workloadSchema)
	if diags.HasErrors() {
		return nil, errors.Parsing("invalid workload block", diags)
	}

	w := map[string]any{"name": block.Labels[0]}
	if err := attributes(content.Attributes, w); err != nil {
		return nil, err
	}

	var comps []any
	for _, cb := range content.Blocks {
		attrs, diags := cb.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, errors.Parsing("invalid component block", diags)
		}
		c := map[string]any{"type": cb.Labels[0]}
		if err := attributes(attrs, c); err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	if comps != nil {
		w["components"] = comps
	}
	return w, nil
}

func attributes(attrs hcl.Attributes, into map[string]any) error {
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return errors.Parsing(fmt.Sprintf("cannot evaluate %q", name), diags).
				WithContext("line", attr.Range.Start.Line)
		}
		v, err := ctyToAny(val)
		if err != nil {
			return errors.Parsing(fmt.Sprintf("attribute %q", name), err).
				WithContext("line", attr.Range.Start.Line)
		}
		into[name] = v
	}
	return nil
}

// ctyToAny converts a known cty value. Numbers become json.Number with
// their exact decimal text.
func ctyToAny(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if val.IsNull() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil

	case ty == cty.Number:
		return json.Number(strings.TrimSpace(val.AsBigFloat().Text('f', -1))), nil

	case ty == cty.Bool:
		return val.True(), nil

	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			v, err := ctyToAny(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			v, err := ctyToAny(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
}
