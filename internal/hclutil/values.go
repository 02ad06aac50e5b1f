package hclutil

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// EnvObject turns environment entries ("KEY=value") into a cty object so
// expressions can read them as env.KEY.
func EnvObject(environ []string) cty.Value {
	attrs := make(map[string]cty.Value, len(environ))
	for _, e := range environ {
		key, value, ok := strings.Cut(e, "=")
		if !ok || key == "" {
			continue
		}
		attrs[key] = cty.StringVal(value)
	}
	return cty.ObjectVal(attrs)
}

// ToStringMap converts an object or map value into a map of strings. Every
// element must be a primitive convertible to string; null yields nil.
func ToStringMap(val cty.Value) (map[string]string, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("expected an object or map, got %s", ty.FriendlyName())
	}

	out := make(map[string]string, val.LengthInt())
	var problems []string
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		name := k.AsString()
		if !v.Type().IsPrimitiveType() {
			problems = append(problems, fmt.Sprintf("%q: %s is not a primitive value", name, v.Type().FriendlyName()))
			continue
		}
		if v.IsNull() {
			problems = append(problems, fmt.Sprintf("%q: value is null", name))
			continue
		}
		s, err := convert.Convert(v, cty.String)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%q: %v", name, err))
			continue
		}
		out[name] = s.AsString()
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, fmt.Errorf("invalid values: %s", strings.Join(problems, "; "))
	}
	return out, nil
}
