package valuesource

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/dzonerzy/snapargv/snap"
)

// HCL reads option values from an HCL file. Attributes are options and
// blocks are subcommands:
//
//	verbose = true
//	deploy {
//	  region = "eu-west-1"
//	  tags   = ["a", "b"]
//	}
//
// Expressions are evaluated without variables or functions.
func HCL(path string, opts ...Option) snap.ValueSource {
	return newFileSource(path, decodeHCL, opts)
}

func decodeHCL(data []byte, path string) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected HCL body %T", file.Body)
	}
	return bodyToMap(body)
}

func bodyToMap(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		val, err := ctyToGo(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = val
	}
	for _, block := range body.Blocks {
		child, err := bodyToMap(block.Body)
		if err != nil {
			return nil, err
		}
		// Labels nest further: deploy "prod" {} is deploy.prod.
		target := out
		names := append([]string{block.Type}, block.Labels...)
		for _, n := range names[:len(names)-1] {
			next, ok := target[n].(map[string]any)
			if !ok {
				next = map[string]any{}
				target[n] = next
			}
			target = next
		}
		last := names[len(names)-1]
		if existing, ok := target[last].(map[string]any); ok {
			for k, v := range child {
				existing[k] = v
			}
			continue
		}
		target[last] = child
	}
	return out, nil
}

func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString(), nil
	case t == cty.Number:
		return v.AsBigFloat().Text('f', -1), nil
	case t == cty.Bool:
		return v.True(), nil
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		var out []any
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			g, err := ctyToGo(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		}
		return out, nil
	case t.IsMapType() || t.IsObjectType():
		out := map[string]any{}
		for it := v.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			g, err := ctyToGo(elem)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = g
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", t.FriendlyName())
}
