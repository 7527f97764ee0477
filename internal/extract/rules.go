package extract

import (
	"strconv"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/measure"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/payload"
)

// maxIndexed caps how many array elements are flattened into indexed fields.
// Columnar stores charge per distinct field name, so the schema stays bounded
// while the companion _length field preserves the true count.
const maxIndexed = 5

// fieldRule maps one payload path to one output field. Absent paths emit
// nothing: the measure list is variable-length by design, and a field that
// is present with value false or 0 is still emitted.
type fieldRule struct {
	path []string
	name string
	typ  measure.ValueType
}

// arrayRule flattens a repeated sub-object into indexed fields plus a
// _length count.
type arrayRule struct {
	path []string
	name string
	sub  []fieldRule
}

// applyRules evaluates field rules against tree, prefixing every output name.
func applyRules(tree payload.Tree, prefix string, rules []fieldRule) []measure.Value {
	var out []measure.Value
	for _, r := range rules {
		if v, ok := resolveField(tree, r); ok {
			v.Name = prefix + v.Name
			out = append(out, v)
		}
	}
	return out
}

func resolveField(tree payload.Tree, r fieldRule) (measure.Value, bool) {
	switch r.typ {
	case measure.Int64:
		n, ok := tree.Int64(r.path...)
		if !ok {
			return measure.Value{}, false
		}
		return measure.Int64Value(r.name, n), true
	case measure.Double:
		f, ok := tree.Float64(r.path...)
		if !ok {
			return measure.Value{}, false
		}
		return measure.DoubleValue(r.name, f), true
	case measure.Bool:
		b, ok := tree.Bool(r.path...)
		if !ok {
			return measure.Value{}, false
		}
		return measure.BoolValue(r.name, b), true
	case measure.Timestamp:
		ts, ok := tree.Time(r.path...)
		if !ok {
			return measure.Value{}, false
		}
		return measure.TimestampValue(r.name, ts), true
	default:
		v, ok := tree.Get(r.path...)
		if !ok {
			return measure.Value{}, false
		}
		return measure.StringValue(r.name, payload.Stringify(v)), true
	}
}

// applyArrayRules flattens each present array into {prefix}{name}_{i}_{sub}
// fields for up to maxIndexed elements, plus a {prefix}{name}_length field
// carrying the true length. Absent arrays emit nothing at all.
func applyArrayRules(tree payload.Tree, prefix string, rules []arrayRule) []measure.Value {
	var out []measure.Value
	for _, r := range rules {
		arr, ok := tree.Array(r.path...)
		if !ok {
			continue
		}
		out = append(out, measure.Int64Value(prefix+r.name+"_length", int64(len(arr))))
		limit := len(arr)
		if limit > maxIndexed {
			limit = maxIndexed
		}
		for i := 0; i < limit; i++ {
			elem, ok := arr[i].(map[string]interface{})
			if !ok {
				continue
			}
			idx := prefix + r.name + "_" + strconv.Itoa(i) + "_"
			out = append(out, applyRules(payload.Tree(elem), idx, r.sub)...)
		}
	}
	return out
}
