package hcl

import (
	"fmt"
	"runtime"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/buildmerge/internal/config"
	"github.com/vk/buildmerge/internal/schema"
)

// evalContext builds the expression scope available inside a manifest:
// pkg.path is the declaring package, platform.os the host platform.
func evalContext(pkg string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"pkg": cty.ObjectVal(map[string]cty.Value{
				"path": cty.StringVal(pkg),
			}),
			"platform": cty.ObjectVal(map[string]cty.Value{
				"os": cty.StringVal(runtime.GOOS),
			}),
		},
	}
}

// translateTarget evaluates a target block's expressions and produces the
// format-agnostic target.
func translateTarget(block *schema.Target, pkg string) (*config.Target, error) {
	evalCtx := evalContext(pkg)

	target := &config.Target{
		Kind:           block.Kind,
		Name:           block.Name,
		Package:        pkg,
		Deps:           block.Deps,
		ModuleMap:      block.ModuleMap,
		UmbrellaHeader: block.UmbrellaHeader,
	}

	fields := []struct {
		name string
		expr hcl.Expression
		dst  *[]string
	}{
		{"srcs", block.Srcs, &target.Srcs},
		{"non_compiled_srcs", block.NonCompiledSrcs, &target.NonCompiledSrcs},
		{"hdrs", block.Hdrs, &target.Hdrs},
		{"textual_hdrs", block.TextualHdrs, &target.TextualHdrs},
		{"defines", block.Defines, &target.Defines},
		{"includes", block.Includes, &target.Includes},
		{"sdk_includes", block.SDKIncludes, &target.SDKIncludes},
	}
	for _, f := range fields {
		values, err := evalStringList(f.expr, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", f.name, err)
		}
		*f.dst = values
	}

	if target.UmbrellaHeader && !target.ModuleMap {
		return nil, fmt.Errorf("umbrella_header requires module_map")
	}
	return target, nil
}

// evalStringList evaluates an optional list-of-strings expression against the
// manifest scope. A missing attribute yields a nil slice.
func evalStringList(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, error) {
	if expr == nil {
		return nil, nil
	}

	value, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating expression: %s", diags.Error())
	}
	if value.IsNull() {
		return nil, nil
	}

	value, err := convert.Convert(value, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("expected a list of strings: %w", err)
	}

	var out []string
	if err := gocty.FromCtyValue(value, &out); err != nil {
		return nil, fmt.Errorf("converting value: %w", err)
	}
	return out, nil
}
