package cbor

import "fmt"

// Tagged pairs a decoded value with the semantic tag that framed it, if any.
// Typed reads skip tag framing; Tagged is the opt-in for callers that need to
// know the number. A nil Tag means the value arrived bare.
type Tagged[T any] struct {
	Tag   *uint64
	Value T
}

// NewTagged builds a Tagged carrying tag number num.
func NewTagged[T any](num uint64, v T) Tagged[T] {
	return Tagged[T]{Tag: &num, Value: v}
}

// Untagged builds a Tagged with no tag framing.
func Untagged[T any](v T) Tagged[T] {
	return Tagged[T]{Value: v}
}

// DecodeTagged reads one optionally tagged item. If tag framing is present
// its number is captured; either way inner decodes the content. Only the
// outermost tag is captured; nested tags are left for inner to interpret.
func DecodeTagged[T any](d *Decoder, inner func(*Decoder) (T, error)) (Tagged[T], error) {
	b, err := d.peekByte()
	if err != nil {
		return Tagged[T]{}, err
	}
	if b>>5 == majorTag {
		num, err := d.ReadTag()
		if err != nil {
			return Tagged[T]{}, err
		}
		v, err := inner(d)
		if err != nil {
			return Tagged[T]{}, err
		}
		return NewTagged(num, v), nil
	}
	v, err := inner(d)
	if err != nil {
		return Tagged[T]{}, err
	}
	return Untagged(v), nil
}

// EncodeWith writes the tag framing, when present, followed by the value via
// inner.
func (t Tagged[T]) EncodeWith(e *Encoder, inner func(*Encoder, T) error) error {
	if t.Tag != nil {
		if err := e.WriteTag(*t.Tag); err != nil {
			return err
		}
	}
	return inner(e, t.Value)
}

// DecodeTaggedValue decodes a Tagged[Value]. On top of wire-level tag
// framing it recognizes the record form {"tag": n, "value": v} that older
// writers produced in place of real framing, and folds it into the same
// result.
func DecodeTaggedValue(d *Decoder) (Tagged[Value], error) {
	var v Value
	if err := v.UnmarshalCBOR(d); err != nil {
		return Tagged[Value]{}, err
	}
	if v.Kind == KindTag {
		return NewTagged(v.Num, v.tagInner()), nil
	}
	if num, inner, ok := taggedRecord(v); ok {
		return NewTagged(num, inner), nil
	}
	return Untagged(v), nil
}

// taggedRecord matches the legacy two-entry map {"tag": n, "value": v}.
func taggedRecord(v Value) (uint64, Value, bool) {
	if v.Kind != KindMap || len(v.Map) != 2 {
		return 0, Value{}, false
	}
	tag, ok := v.GetText("tag")
	if !ok || tag.Kind != KindInt || tag.Int < 0 {
		return 0, Value{}, false
	}
	inner, ok := v.GetText("value")
	if !ok {
		return 0, Value{}, false
	}
	return uint64(tag.Int), inner, true
}

// EncodeTaggedValue re-emits a Tagged[Value] with real tag framing. The
// legacy record form is never produced.
func EncodeTaggedValue(e *Encoder, t Tagged[Value]) error {
	return t.EncodeWith(e, func(e *Encoder, v Value) error {
		return v.MarshalCBOR(e)
	})
}

// ExpectTag verifies that the value carried the given tag number.
func (t Tagged[T]) ExpectTag(num uint64) error {
	if t.Tag == nil {
		return fmt.Errorf("%w: missing expected tag %d", ErrSyntax, num)
	}
	if *t.Tag != num {
		return fmt.Errorf("%w: got tag %d, want %d", ErrSyntax, *t.Tag, num)
	}
	return nil
}
