package cbor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/delaneyj/toolbelt/bytebufferpool"
)

// Marshaler is implemented by types that encode themselves as one CBOR item.
type Marshaler interface {
	MarshalCBOR(*Encoder) error
}

// Unmarshaler is implemented by types that decode themselves from one CBOR
// item.
type Unmarshaler interface {
	UnmarshalCBOR(*Decoder) error
}

// Marshal encodes v into a fresh byte slice.
func Marshal(v Marshaler) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := v.MarshalCBOR(NewEncoder(buf)); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// MarshalTo encodes v directly into w.
func MarshalTo(w io.Writer, v Marshaler) error {
	return v.MarshalCBOR(NewEncoder(w))
}

// Unmarshal decodes exactly one top-level item from data into v. Empty input
// and leftover bytes after the item are errors; use NewDecoder directly for
// streams carrying more than one item.
func Unmarshal(data []byte, v Unmarshaler) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}
	r := bytes.NewReader(data)
	d := NewDecoder(r)
	if err := v.UnmarshalCBOR(d); err != nil {
		return err
	}
	left := r.Len()
	if !d.drained() {
		left++
	}
	if left > 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingData, left)
	}
	return nil
}

// Encode is Marshal for a dynamic Value.
func Encode(v Value) ([]byte, error) {
	return Marshal(v)
}

// Decode parses one top-level item from data into a dynamic Value.
func Decode(data []byte) (Value, error) {
	var v Value
	if err := Unmarshal(data, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}
