// Package spxat defines the attribute values that spans carry.  A
// value is a tagged union over exactly four categories: string, bool,
// int64, and float64.  The category is fixed when the value is built
// and there is no implicit conversion between categories: reading a
// value through the wrong accessor returns that accessor's zero value.
package spxat

import (
	"math"
	"strconv"
)

// Kind is the category tag of a Value.
type Kind int8

const (
	KindInvalid Kind = iota
	KindString
	KindBool
	KindInt64
	KindFloat64
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	default:
		return "invalid"
	}
}

// Value holds one attribute value.  The zero Value is KindInvalid and
// reads as zero through every accessor.
type Value struct {
	kind Kind
	num  uint64
	str  string
}

// Attribute pairs a key with a Value.  Within one span's attribute
// set keys are unique and the last write for a key wins.
type Attribute struct {
	Key   string
	Value Value
}

func StringValue(v string) Value { return Value{kind: KindString, str: v} }

func BoolValue(v bool) Value {
	var num uint64
	if v {
		num = 1
	}
	return Value{kind: KindBool, num: num}
}

func Int64Value(v int64) Value     { return Value{kind: KindInt64, num: uint64(v)} }
func Float64Value(v float64) Value { return Value{kind: KindFloat64, num: math.Float64bits(v)} }

// String builds a string-valued attribute.
func String(key, v string) Attribute { return Attribute{Key: key, Value: StringValue(v)} }

// Bool builds a bool-valued attribute.
func Bool(key string, v bool) Attribute { return Attribute{Key: key, Value: BoolValue(v)} }

// Int64 builds an int64-valued attribute.
func Int64(key string, v int64) Attribute { return Attribute{Key: key, Value: Int64Value(v)} }

// Float64 builds a float64-valued attribute.
func Float64(key string, v float64) Attribute { return Attribute{Key: key, Value: Float64Value(v)} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

func (v Value) AsBool() bool {
	return v.kind == KindBool && v.num != 0
}

func (v Value) AsInt64() int64 {
	if v.kind != KindInt64 {
		return 0
	}
	return int64(v.num)
}

func (v Value) AsFloat64() float64 {
	if v.kind != KindFloat64 {
		return 0
	}
	return math.Float64frombits(v.num)
}

// Emit renders the value for display.  It is meant for test output
// and debug dumps, not for wire encoding.
func (v Value) Emit() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.num != 0)
	case KindInt64:
		return strconv.FormatInt(int64(v.num), 10)
	case KindFloat64:
		return strconv.FormatFloat(math.Float64frombits(v.num), 'g', -1, 64)
	default:
		return "INVALID"
	}
}

// Equal compares category and payload.  Values of different kinds are
// never equal, even when their renderings coincide.
func (v Value) Equal(w Value) bool {
	return v.kind == w.kind && v.num == w.num && v.str == w.str
}

func (a Attribute) String() string {
	return a.Key + "=" + a.Value.Emit()
}
