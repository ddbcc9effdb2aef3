// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package bantip

// MergeOverride overlays override onto base in place.
//
// Where both trees hold a nested map under the same key the merge recurses.
// Any other value from override, scalar or slice or map, replaces the value in
// base wholesale; keys only base has are left alone. Values are copied out of
// override, so later changes to one tree do not show up in the other.
//
// Type mismatches are not errors: override simply wins.
func MergeOverride(override, base map[string]any) {
	for key, src := range override {
		dst, dstIsTree := base[key].(map[string]any)
		srcTree, srcIsTree := src.(map[string]any)
		if dstIsTree && srcIsTree {
			MergeOverride(srcTree, dst)
			continue
		}
		base[key] = cloneValue(src)
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}
