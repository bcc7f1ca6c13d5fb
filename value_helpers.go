package cbor

import (
	"math"
	"strconv"
)

// Constructors for the Value kinds. They exist so call sites read as the
// shape they build rather than as struct literals with a Kind field.

func Null() Value {
	return Value{Kind: KindNull}
}

func Bool(v bool) Value {
	return Value{Kind: KindBool, Bool: v}
}

func Int(v int64) Value {
	return Value{Kind: KindInt, Int: v}
}

func Float(v float64) Value {
	return Value{Kind: KindFloat, Float: v}
}

func Bytes(v []byte) Value {
	return Value{Kind: KindBytes, Bytes: v}
}

func Text(v string) Value {
	return Value{Kind: KindText, Text: v}
}

func Array(elems ...Value) Value {
	return Value{Kind: KindArray, Array: elems}
}

// Map builds a map value from entries, sorting them and resolving duplicate
// keys last-wins.
func Map(entries ...MapEntry) Value {
	v := Value{Kind: KindMap}
	for _, entry := range entries {
		v.MapSet(entry.Key, entry.Value)
	}
	return v
}

// Tag wraps inner in tag framing with the given tag number.
func Tag(num uint64, inner Value) Value {
	return Value{Kind: KindTag, Num: num, Inner: &inner}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Untag strips any layers of tag framing and returns the innermost value.
func (v Value) Untag() Value {
	for v.Kind == KindTag {
		v = v.tagInner()
	}
	return v
}

// AsBool returns the value as bool. Tag framing is transparent; integers
// coerce with zero meaning false.
func (v Value) AsBool() (bool, bool) {
	switch v = v.Untag(); v.Kind {
	case KindBool:
		return v.Bool, true
	case KindInt:
		return v.Int != 0, true
	default:
		return false, false
	}
}

// AsInt64 returns the value as int64 when it can be reasonably converted.
// Floats convert when they are finite and in range.
func (v Value) AsInt64() (int64, bool) {
	switch v = v.Untag(); v.Kind {
	case KindInt:
		return v.Int, true
	case KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return 0, false
		}
		if v.Float < math.MinInt64 || v.Float > math.MaxInt64 {
			return 0, false
		}
		return int64(v.Float), true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsFloat64 returns the value as float64 when it can be reasonably converted.
func (v Value) AsFloat64() (float64, bool) {
	switch v = v.Untag(); v.Kind {
	case KindFloat:
		return v.Float, true
	case KindInt:
		return float64(v.Int), true
	default:
		return 0, false
	}
}

// AsText returns the value as a string. Numeric and boolean values are
// formatted as their scalar representations.
func (v Value) AsText() (string, bool) {
	switch v = v.Untag(); v.Kind {
	case KindText:
		return v.Text, true
	case KindInt:
		return strconv.FormatInt(v.Int, 10), true
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.Bool), true
	default:
		return "", false
	}
}

// AsBytes returns the raw payload of a byte or text string.
func (v Value) AsBytes() ([]byte, bool) {
	switch v = v.Untag(); v.Kind {
	case KindBytes:
		return v.Bytes, true
	case KindText:
		return []byte(v.Text), true
	default:
		return nil, false
	}
}

// AsArray returns the elements of an array value.
func (v Value) AsArray() ([]Value, bool) {
	if v = v.Untag(); v.Kind == KindArray {
		return v.Array, true
	}
	return nil, false
}

// AsMap returns the sorted entries of a map value.
func (v Value) AsMap() ([]MapEntry, bool) {
	if v = v.Untag(); v.Kind == KindMap {
		return v.Map, true
	}
	return nil, false
}

// AsTag returns the outermost tag number and its content.
func (v Value) AsTag() (uint64, Value, bool) {
	if v.Kind == KindTag {
		return v.Num, v.tagInner(), true
	}
	return 0, Value{}, false
}

// GetText is MapGet with a text key, the common case for record-like maps.
func (v Value) GetText(key string) (Value, bool) {
	return v.MapGet(Text(key))
}
