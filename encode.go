package cbor

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/delaneyj/toolbelt/bytebufferpool"
	"github.com/x448/float16"
)

// Encoder writes canonical CBOR to a sink. Canonical here means every
// composite carries a definite-length header with minimal-width encoding;
// the indefinite-length methods exist as an explicit opt-in and are never
// invoked on the caller's behalf.
//
// An Encoder borrows its sink exclusively and holds no state between
// top-level values, so it is safe to create one per operation and discard it.
type Encoder struct {
	w io.Writer

	// CompactFloats emits each float in the smallest IEEE width (binary16,
	// binary32, binary64) that represents it losslessly, matching the
	// preferred serialization of RFC 8949. When unset, floats keep the width
	// they were written with.
	CompactFloats bool

	scratch [9]byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) write(p []byte) error {
	_, err := e.w.Write(p)
	return err
}

// writeHeader emits a header for major with argument n, picking the minimal
// encoding width: inline below 24, then 1/2/4/8-byte big-endian extensions at
// the 256, 65536 and 2^32 thresholds.
func (e *Encoder) writeHeader(major byte, n uint64) error {
	s := e.scratch[:]
	switch {
	case n <= uint64(infoMaxInline):
		s[0] = headerByte(major, byte(n))
		return e.write(s[:1])
	case n < 256:
		s[0] = headerByte(major, infoUint8)
		s[1] = byte(n)
		return e.write(s[:2])
	case n < 65536:
		s[0] = headerByte(major, infoUint16)
		binary.BigEndian.PutUint16(s[1:3], uint16(n))
		return e.write(s[:3])
	case n < 1<<32:
		s[0] = headerByte(major, infoUint32)
		binary.BigEndian.PutUint32(s[1:5], uint32(n))
		return e.write(s[:5])
	default:
		s[0] = headerByte(major, infoUint64)
		binary.BigEndian.PutUint64(s[1:9], n)
		return e.write(s[:9])
	}
}

// WriteNull writes the null simple value.
func (e *Encoder) WriteNull() error {
	e.scratch[0] = headerByte(majorSimple, simpleNull)
	return e.write(e.scratch[:1])
}

// WriteBool writes a boolean simple value.
func (e *Encoder) WriteBool(v bool) error {
	if v {
		e.scratch[0] = headerByte(majorSimple, simpleTrue)
	} else {
		e.scratch[0] = headerByte(majorSimple, simpleFalse)
	}
	return e.write(e.scratch[:1])
}

// WriteInt writes a signed integer as major type 0 (v >= 0) or major type 1
// (stored as -1-v).
func (e *Encoder) WriteInt(v int64) error {
	if v >= 0 {
		return e.writeHeader(majorUnsigned, uint64(v))
	}
	return e.writeHeader(majorNegative, uint64(-1-v))
}

// WriteUint writes an unsigned integer as major type 0.
func (e *Encoder) WriteUint(v uint64) error {
	return e.writeHeader(majorUnsigned, v)
}

// WriteFloat64 writes v as a 64-bit float, or in the smallest lossless width
// when CompactFloats is set.
func (e *Encoder) WriteFloat64(v float64) error {
	if e.CompactFloats {
		return e.writeCompactFloat(v)
	}
	e.scratch[0] = headerByte(majorSimple, simpleFloat64)
	binary.BigEndian.PutUint64(e.scratch[1:9], math.Float64bits(v))
	return e.write(e.scratch[:9])
}

// WriteFloat32 writes v as a 32-bit float, or in the smallest lossless width
// when CompactFloats is set.
func (e *Encoder) WriteFloat32(v float32) error {
	if e.CompactFloats {
		return e.writeCompactFloat(float64(v))
	}
	e.scratch[0] = headerByte(majorSimple, simpleFloat32)
	binary.BigEndian.PutUint32(e.scratch[1:5], math.Float32bits(v))
	return e.write(e.scratch[:5])
}

func (e *Encoder) writeCompactFloat(v float64) error {
	if math.IsNaN(v) {
		e.scratch[0] = headerByte(majorSimple, simpleFloat16)
		binary.BigEndian.PutUint16(e.scratch[1:3], 0x7e00)
		return e.write(e.scratch[:3])
	}
	if f32 := float32(v); float64(f32) == v {
		if float16.PrecisionFromfloat32(f32) == float16.PrecisionExact {
			e.scratch[0] = headerByte(majorSimple, simpleFloat16)
			binary.BigEndian.PutUint16(e.scratch[1:3], float16.Fromfloat32(f32).Bits())
			return e.write(e.scratch[:3])
		}
		e.scratch[0] = headerByte(majorSimple, simpleFloat32)
		binary.BigEndian.PutUint32(e.scratch[1:5], math.Float32bits(f32))
		return e.write(e.scratch[:5])
	}
	e.scratch[0] = headerByte(majorSimple, simpleFloat64)
	binary.BigEndian.PutUint64(e.scratch[1:9], math.Float64bits(v))
	return e.write(e.scratch[:9])
}

// WriteBytes writes a byte string: one header write followed by the raw
// payload, no transformation.
func (e *Encoder) WriteBytes(v []byte) error {
	if err := e.writeHeader(majorBytes, uint64(len(v))); err != nil {
		return err
	}
	return e.write(v)
}

// WriteText writes a UTF-8 text string.
func (e *Encoder) WriteText(v string) error {
	if err := e.writeHeader(majorText, uint64(len(v))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, v)
	return err
}

// WriteTag writes tag framing (major type 6). The next item written becomes
// the tag content.
func (e *Encoder) WriteTag(num uint64) error {
	return e.writeHeader(majorTag, num)
}

// WriteArrayHeader writes a definite-length array header for n elements.
func (e *Encoder) WriteArrayHeader(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative array length %d", ErrUnsupported, n)
	}
	return e.writeHeader(majorArray, uint64(n))
}

// WriteMapHeader writes a definite-length map header for n key-value pairs.
func (e *Encoder) WriteMapHeader(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative map length %d", ErrUnsupported, n)
	}
	return e.writeHeader(majorMap, uint64(n))
}

// WriteArrayIndefinite starts an indefinite-length array. The caller writes
// elements and terminates with WriteBreak. Non-canonical; for streaming
// producers only.
func (e *Encoder) WriteArrayIndefinite() error {
	e.scratch[0] = headerByte(majorArray, infoIndefinite)
	return e.write(e.scratch[:1])
}

// WriteMapIndefinite starts an indefinite-length map, terminated with
// WriteBreak after an even number of items. Non-canonical.
func (e *Encoder) WriteMapIndefinite() error {
	e.scratch[0] = headerByte(majorMap, infoIndefinite)
	return e.write(e.scratch[:1])
}

// WriteBreak terminates an indefinite-length composite.
func (e *Encoder) WriteBreak() error {
	e.scratch[0] = breakByte
	return e.write(e.scratch[:1])
}

// WriteWrapper writes a single-field wrapper: a 1-element array around the
// inner value. This keeps "a wrapper around X" distinguishable from "X
// itself" on the wire. Callers that also carry a tag write the tag first;
// tag framing takes precedence over wrapper framing.
func (e *Encoder) WriteWrapper(inner func(*Encoder) error) error {
	if err := e.writeHeader(majorArray, 1); err != nil {
		return err
	}
	return inner(e)
}

// WriteUnitVariant writes a payload-free enumerated variant as its bare name.
func (e *Encoder) WriteUnitVariant(name string) error {
	return e.WriteText(name)
}

// WriteVariant writes a data-carrying enumerated variant as the single-entry
// map {name: payload}. The payload callback encodes the variant data in
// whatever shape it declares (bare value, array, or map).
func (e *Encoder) WriteVariant(name string, payload func(*Encoder) error) error {
	if err := e.writeHeader(majorMap, 1); err != nil {
		return err
	}
	if err := e.WriteText(name); err != nil {
		return err
	}
	return payload(e)
}

// ArrayBuilder accumulates the elements of an array whose count is only
// discovered during emission. Elements are encoded into pooled memory,
// counted, and flushed behind a definite-length header, so the output stays
// canonical even when the producer cannot declare a length up front.
type ArrayBuilder struct {
	parent *Encoder
	buf    *bytebufferpool.ByteBuffer
	enc    Encoder
	count  int
}

// BuildArray starts a buffered array of initially unknown length.
func (e *Encoder) BuildArray() *ArrayBuilder {
	buf := bytebufferpool.Get()
	b := &ArrayBuilder{parent: e, buf: buf}
	b.enc = Encoder{w: buf, CompactFloats: e.CompactFloats}
	return b
}

// Element returns the encoder for the next element. Exactly one value must
// be written per call.
func (b *ArrayBuilder) Element() *Encoder {
	b.count++
	return &b.enc
}

// Flush writes the definite-length header followed by the buffered elements
// and releases the buffer. The builder must not be used afterwards.
func (b *ArrayBuilder) Flush() error {
	defer bytebufferpool.Put(b.buf)
	if err := b.parent.writeHeader(majorArray, uint64(b.count)); err != nil {
		return err
	}
	return b.parent.write(b.buf.Bytes())
}

// MapBuilder is the map counterpart of ArrayBuilder: key-value pairs of an
// initially unknown count, buffered and flushed definite-length. Pairs are
// emitted in insertion order.
type MapBuilder struct {
	parent *Encoder
	buf    *bytebufferpool.ByteBuffer
	enc    Encoder
	count  int
}

// BuildMap starts a buffered map of initially unknown length.
func (e *Encoder) BuildMap() *MapBuilder {
	buf := bytebufferpool.Get()
	b := &MapBuilder{parent: e, buf: buf}
	b.enc = Encoder{w: buf, CompactFloats: e.CompactFloats}
	return b
}

// Key returns the encoder for the next entry's key and counts the entry.
func (b *MapBuilder) Key() *Encoder {
	b.count++
	return &b.enc
}

// Value returns the encoder for the value belonging to the last written key.
func (b *MapBuilder) Value() *Encoder {
	return &b.enc
}

// Flush writes the definite-length header followed by the buffered pairs and
// releases the buffer. The builder must not be used afterwards.
func (b *MapBuilder) Flush() error {
	defer bytebufferpool.Put(b.buf)
	if err := b.parent.writeHeader(majorMap, uint64(b.count)); err != nil {
		return err
	}
	return b.parent.write(b.buf.Bytes())
}
