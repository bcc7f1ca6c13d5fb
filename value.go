package cbor

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Kind discriminates the variants of a dynamic Value. The numeric order of
// the kinds is the first key of the structural total order.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindText
	KindArray
	KindMap
	KindTag
)

// MapEntry is one key-value pair of a KindMap value.
type MapEntry struct {
	Key   Value
	Value Value
}

// Value represents any decodable CBOR item without static typing. Only the
// fields selected by Kind are meaningful.
//
// Map entries are kept unique by key and sorted by Compare, which makes
// re-encoding deterministic for a given set of entries regardless of
// insertion order. Values round-trip through the same Encoder/Decoder as
// typed values; a KindTag value re-emits its tag framing.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Bytes []byte
	Text  string
	Array []Value
	Map   []MapEntry

	// Num and Inner carry the tag number and content of a KindTag value.
	Num   uint64
	Inner *Value
}

// Compare imposes a total structural order across values: kind first, then
// payload. Within floats, NaN compares equal to everything, which keeps the
// order total without claiming IEEE semantics. The order is what keeps map
// entries unique and deterministically iterable; it does not claim to match
// any externally mandated canonical sort.
func (v Value) Compare(o Value) int {
	if v.Kind != o.Kind {
		if v.Kind < o.Kind {
			return -1
		}
		return 1
	}
	switch v.Kind {
	case KindNull:
		return 0
	case KindBool:
		if v.Bool == o.Bool {
			return 0
		}
		if !v.Bool {
			return -1
		}
		return 1
	case KindInt:
		switch {
		case v.Int < o.Int:
			return -1
		case v.Int > o.Int:
			return 1
		}
		return 0
	case KindFloat:
		if math.IsNaN(v.Float) || math.IsNaN(o.Float) {
			return 0
		}
		switch {
		case v.Float < o.Float:
			return -1
		case v.Float > o.Float:
			return 1
		}
		return 0
	case KindBytes:
		return bytes.Compare(v.Bytes, o.Bytes)
	case KindText:
		return strings.Compare(v.Text, o.Text)
	case KindArray:
		return compareValues(v.Array, o.Array)
	case KindMap:
		n := len(v.Map)
		if len(o.Map) < n {
			n = len(o.Map)
		}
		for i := 0; i < n; i++ {
			if c := v.Map[i].Key.Compare(o.Map[i].Key); c != 0 {
				return c
			}
			if c := v.Map[i].Value.Compare(o.Map[i].Value); c != 0 {
				return c
			}
		}
		return len(v.Map) - len(o.Map)
	case KindTag:
		switch {
		case v.Num < o.Num:
			return -1
		case v.Num > o.Num:
			return 1
		}
		return v.tagInner().Compare(o.tagInner())
	default:
		return 0
	}
}

func compareValues(a, b []Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func (v Value) tagInner() Value {
	if v.Inner == nil {
		return Value{Kind: KindNull}
	}
	return *v.Inner
}

// Equal reports whether two values are structurally equal under Compare.
func (v Value) Equal(o Value) bool {
	return v.Compare(o) == 0
}

// MapGet looks up key in a KindMap value.
func (v Value) MapGet(key Value) (Value, bool) {
	i := sort.Search(len(v.Map), func(i int) bool {
		return v.Map[i].Key.Compare(key) >= 0
	})
	if i < len(v.Map) && v.Map[i].Key.Compare(key) == 0 {
		return v.Map[i].Value, true
	}
	return Value{}, false
}

// MapSet inserts or replaces an entry in a KindMap value, keeping entries
// sorted and keys unique. v must be a KindMap value.
func (v *Value) MapSet(key, val Value) {
	i := sort.Search(len(v.Map), func(i int) bool {
		return v.Map[i].Key.Compare(key) >= 0
	})
	if i < len(v.Map) && v.Map[i].Key.Compare(key) == 0 {
		v.Map[i].Value = val
		return
	}
	v.Map = append(v.Map, MapEntry{})
	copy(v.Map[i+1:], v.Map[i:])
	v.Map[i] = MapEntry{Key: key, Value: val}
}

// Clone returns a deep copy sharing no memory with v. Useful when a decoded
// value is mutated while the original must stay intact.
func (v Value) Clone() Value {
	out := v
	switch v.Kind {
	case KindBytes:
		out.Bytes = append([]byte(nil), v.Bytes...)
	case KindArray:
		if v.Array != nil {
			out.Array = make([]Value, len(v.Array))
			for i, elem := range v.Array {
				out.Array[i] = elem.Clone()
			}
		}
	case KindMap:
		if v.Map != nil {
			out.Map = make([]MapEntry, len(v.Map))
			for i, entry := range v.Map {
				out.Map[i] = MapEntry{Key: entry.Key.Clone(), Value: entry.Value.Clone()}
			}
		}
	case KindTag:
		if v.Inner != nil {
			inner := v.Inner.Clone()
			out.Inner = &inner
		}
	}
	return out
}

// MarshalCBOR encodes the value through the same framing rules as typed
// values.
func (v Value) MarshalCBOR(e *Encoder) error {
	switch v.Kind {
	case KindNull:
		return e.WriteNull()
	case KindBool:
		return e.WriteBool(v.Bool)
	case KindInt:
		return e.WriteInt(v.Int)
	case KindFloat:
		return e.WriteFloat64(v.Float)
	case KindBytes:
		return e.WriteBytes(v.Bytes)
	case KindText:
		return e.WriteText(v.Text)
	case KindArray:
		if err := e.WriteArrayHeader(len(v.Array)); err != nil {
			return err
		}
		for _, elem := range v.Array {
			if err := elem.MarshalCBOR(e); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		if err := e.WriteMapHeader(len(v.Map)); err != nil {
			return err
		}
		for _, entry := range v.Map {
			if err := entry.Key.MarshalCBOR(e); err != nil {
				return err
			}
			if err := entry.Value.MarshalCBOR(e); err != nil {
				return err
			}
		}
		return nil
	case KindTag:
		if err := e.WriteTag(v.Num); err != nil {
			return err
		}
		return v.tagInner().MarshalCBOR(e)
	default:
		return fmt.Errorf("%w: unknown value kind %d", ErrUnsupported, v.Kind)
	}
}

// UnmarshalCBOR decodes one item of any shape into the value. Unlike the
// shape-directed reads, tag framing is preserved as a KindTag value.
func (v *Value) UnmarshalCBOR(d *Decoder) error {
	return d.Any(valueBuilder{v})
}

// valueBuilder populates a Value from the decoder's shape callbacks.
type valueBuilder struct {
	out *Value
}

func (b valueBuilder) VisitNull() error {
	*b.out = Value{Kind: KindNull}
	return nil
}

func (b valueBuilder) VisitBool(v bool) error {
	*b.out = Value{Kind: KindBool, Bool: v}
	return nil
}

func (b valueBuilder) VisitUint(v uint64) error {
	if v > math.MaxInt64 {
		return fmt.Errorf("%w: unsigned integer %d overflows int64", ErrUnsupported, v)
	}
	*b.out = Value{Kind: KindInt, Int: int64(v)}
	return nil
}

func (b valueBuilder) VisitInt(v int64) error {
	*b.out = Value{Kind: KindInt, Int: v}
	return nil
}

func (b valueBuilder) VisitFloat(v float64) error {
	*b.out = Value{Kind: KindFloat, Float: v}
	return nil
}

func (b valueBuilder) VisitBytes(v []byte) error {
	*b.out = Value{Kind: KindBytes, Bytes: v}
	return nil
}

func (b valueBuilder) VisitText(v string) error {
	*b.out = Value{Kind: KindText, Text: v}
	return nil
}

func (b valueBuilder) VisitArray(it *ArrayIter) error {
	var elems []Value
	if n := it.Len(); n > 0 {
		if n > 4096 {
			n = 4096
		}
		elems = make([]Value, 0, n)
	}
	for {
		ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		var elem Value
		if err := it.Decoder().Any(valueBuilder{&elem}); err != nil {
			return err
		}
		elems = append(elems, elem)
	}
	*b.out = Value{Kind: KindArray, Array: elems}
	return nil
}

func (b valueBuilder) VisitMap(it *MapIter) error {
	out := Value{Kind: KindMap}
	for {
		ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		var key, val Value
		if err := it.Decoder().Any(valueBuilder{&key}); err != nil {
			return err
		}
		if err := it.Decoder().Any(valueBuilder{&val}); err != nil {
			return err
		}
		// Duplicate keys are accepted, last occurrence wins.
		out.MapSet(key, val)
	}
	*b.out = out
	return nil
}

func (b valueBuilder) VisitTag(num uint64, d *Decoder) error {
	inner := new(Value)
	if err := d.Any(valueBuilder{inner}); err != nil {
		return err
	}
	*b.out = Value{Kind: KindTag, Num: num, Inner: inner}
	return nil
}
