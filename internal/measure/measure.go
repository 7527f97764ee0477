package measure

import (
	"strconv"
	"time"
)

// ValueType mirrors the type system of the downstream time-series store.
// Values are always serialized as strings on the wire; the type tells the
// store how to interpret them.
type ValueType string

const (
	Int64     ValueType = "INT64"
	Double    ValueType = "DOUBLE"
	String    ValueType = "STRING"
	Bool      ValueType = "BOOL"
	Timestamp ValueType = "TIMESTAMP"
	Multi     ValueType = "MULTI"
)

// Value is one named, typed entry inside a multi-value measure.
type Value struct {
	Name  string    `json:"name"`
	Type  ValueType `json:"type"`
	Value string    `json:"value"`
}

// Measure is the flattened output of one webhook event. A Multi measure
// carries an ordered list of values; every other type carries exactly one
// serialized value.
type Measure struct {
	Name   string    `json:"name"`
	Type   ValueType `json:"type"`
	Value  string    `json:"value,omitempty"`
	Values []Value   `json:"values,omitempty"`
}

// FallbackName is the measure name used for events with no extraction rules.
const FallbackName = "dummyMeasure"

// Fallback is the measure emitted for unrecognized event types. Unknown
// events still produce one countable record rather than disappearing.
func Fallback() Measure {
	return Measure{Name: FallbackName, Type: Int64, Value: "1"}
}

// NewMulti builds a multi-value measure named after the event type.
func NewMulti(name string, values []Value) Measure {
	return Measure{Name: name, Type: Multi, Values: values}
}

// Int64Value serializes n as a decimal-string INT64 entry.
func Int64Value(name string, n int64) Value {
	return Value{Name: name, Type: Int64, Value: strconv.FormatInt(n, 10)}
}

// DoubleValue serializes f as a DOUBLE entry.
func DoubleValue(name string, f float64) Value {
	return Value{Name: name, Type: Double, Value: strconv.FormatFloat(f, 'g', -1, 64)}
}

// StringValue wraps s as a STRING entry.
func StringValue(name, s string) Value {
	return Value{Name: name, Type: String, Value: s}
}

// BoolValue serializes b as the literal "true" or "false".
func BoolValue(name string, b bool) Value {
	return Value{Name: name, Type: Bool, Value: strconv.FormatBool(b)}
}

// TimestampValue serializes ts as milliseconds since the epoch.
func TimestampValue(name string, ts time.Time) Value {
	return Value{Name: name, Type: Timestamp, Value: strconv.FormatInt(ts.UnixMilli(), 10)}
}

// ParseType maps a wire type string to a ValueType. Unknown strings map to
// STRING so custom-data clients cannot produce an untyped entry.
func ParseType(s string) ValueType {
	switch ValueType(s) {
	case Int64, Double, String, Bool, Timestamp:
		return ValueType(s)
	}
	return String
}
