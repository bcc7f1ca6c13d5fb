package cbor

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/x448/float16"
)

// maxPrealloc caps how much a single decode allocates before any payload
// bytes have actually arrived. A header may claim an arbitrary length; the
// buffer only grows past this bound as data is read, so a truncated input
// fails with ErrEOF instead of exhausting memory first.
const maxPrealloc = 64 << 10

// Decoder reads CBOR from a source in a single pull-based pass. One byte of
// lookahead backs the shapes that need it: optional values (null probe),
// indefinite-length composites (break probe), enumerated variants and legacy
// wrapper forms.
//
// A Decoder borrows its source exclusively for its lifetime; create one per
// operation.
type Decoder struct {
	r       io.Reader
	pend    byte
	hasPend bool
	scratch [8]byte
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// readByte consumes one byte, draining the lookahead slot first.
func (d *Decoder) readByte() (byte, error) {
	if d.hasPend {
		d.hasPend = false
		return d.pend, nil
	}
	if _, err := io.ReadFull(d.r, d.scratch[:1]); err != nil {
		return 0, eof(err)
	}
	return d.scratch[0], nil
}

// peekByte returns the next byte without consuming it.
func (d *Decoder) peekByte() (byte, error) {
	if d.hasPend {
		return d.pend, nil
	}
	b, err := d.readByte()
	if err != nil {
		return 0, err
	}
	d.pend = b
	d.hasPend = true
	return b, nil
}

// fill reads exactly len(p) bytes, draining the lookahead slot first.
func (d *Decoder) fill(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if d.hasPend {
		p[0] = d.pend
		d.hasPend = false
		p = p[1:]
	}
	if _, err := io.ReadFull(d.r, p); err != nil {
		return eof(err)
	}
	return nil
}

// drained reports whether the lookahead slot is empty; used by the top-level
// buffer decode for its trailing-byte check.
func (d *Decoder) drained() bool {
	return !d.hasPend
}

// readHeader consumes one item header and splits it into major type and
// additional info.
func (d *Decoder) readHeader() (major, info byte, err error) {
	b, err := d.readByte()
	if err != nil {
		return 0, 0, err
	}
	return b >> 5, b & 0x1f, nil
}

// readLength resolves the additional-info code into an argument value.
// Indefinite length (31) is reported through the second return; the reserved
// codes 28-30 are malformed.
func (d *Decoder) readLength(info byte) (uint64, bool, error) {
	switch {
	case info <= infoMaxInline:
		return uint64(info), false, nil
	case info == infoUint8:
		b, err := d.readByte()
		return uint64(b), false, err
	case info == infoUint16:
		if err := d.fill(d.scratch[:2]); err != nil {
			return 0, false, err
		}
		return uint64(binary.BigEndian.Uint16(d.scratch[:2])), false, nil
	case info == infoUint32:
		if err := d.fill(d.scratch[:4]); err != nil {
			return 0, false, err
		}
		return uint64(binary.BigEndian.Uint32(d.scratch[:4])), false, nil
	case info == infoUint64:
		if err := d.fill(d.scratch[:8]); err != nil {
			return 0, false, err
		}
		return binary.BigEndian.Uint64(d.scratch[:8]), false, nil
	case info == infoIndefinite:
		return 0, true, nil
	default:
		return 0, false, fmt.Errorf("%w: reserved additional-info code %d", ErrSyntax, info)
	}
}

// readDefiniteLength is readLength for positions where indefinite length is
// not permitted (integer arguments, tag numbers, chunk lengths).
func (d *Decoder) readDefiniteLength(info byte) (uint64, error) {
	n, indef, err := d.readLength(info)
	if err != nil {
		return 0, err
	}
	if indef {
		return 0, fmt.Errorf("%w: indefinite length not allowed here", ErrSyntax)
	}
	return n, nil
}

// isBreak reports whether the next byte is the break marker, without
// consuming it.
func (d *Decoder) isBreak() (bool, error) {
	b, err := d.peekByte()
	if err != nil {
		return false, err
	}
	return b == breakByte, nil
}

// readPayload reads exactly n payload bytes into a fresh buffer. Allocation
// is bounded by maxPrealloc until bytes actually arrive, so a lying length
// claim on a short input fails with ErrEOF rather than a huge allocation.
func (d *Decoder) readPayload(n uint64) ([]byte, error) {
	if n > uint64(math.MaxInt) {
		return nil, fmt.Errorf("%w: declared length %d overflows", ErrSyntax, n)
	}
	size := int(n)
	if size <= maxPrealloc {
		buf := make([]byte, size)
		if err := d.fill(buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	buf := make([]byte, 0, maxPrealloc)
	for len(buf) < size {
		step := size - len(buf)
		if step > maxPrealloc {
			step = maxPrealloc
		}
		off := len(buf)
		buf = append(buf, make([]byte, step)...)
		if err := d.fill(buf[off:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// readString reads the payload of a byte or text string whose header was
// already consumed. Indefinite-length strings are reassembled from
// definite-length chunks of the same major type; anything else inside them
// is malformed.
func (d *Decoder) readString(major, info byte) ([]byte, error) {
	n, indef, err := d.readLength(info)
	if err != nil {
		return nil, err
	}
	if !indef {
		return d.readPayload(n)
	}
	var out []byte
	for {
		br, err := d.isBreak()
		if err != nil {
			return nil, err
		}
		if br {
			if _, err := d.readByte(); err != nil {
				return nil, err
			}
			return out, nil
		}
		cmajor, cinfo, err := d.readHeader()
		if err != nil {
			return nil, err
		}
		if cmajor != major {
			return nil, fmt.Errorf("%w: major type %d chunk inside indefinite string of major type %d", ErrSyntax, cmajor, major)
		}
		if cinfo == infoIndefinite {
			return nil, fmt.Errorf("%w: nested indefinite string chunk", ErrSyntax)
		}
		cn, err := d.readDefiniteLength(cinfo)
		if err != nil {
			return nil, err
		}
		chunk, err := d.readPayload(cn)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
}

// readHeaderSkipTags reads the next header, transparently consuming any tag
// framing in front of it. This is the behavior of every shape-directed read;
// callers that want the tag number use ReadTag or Tagged instead.
func (d *Decoder) readHeaderSkipTags() (byte, byte, error) {
	for {
		major, info, err := d.readHeader()
		if err != nil {
			return 0, 0, err
		}
		if major != majorTag {
			return major, info, nil
		}
		if _, err := d.readDefiniteLength(info); err != nil {
			return 0, 0, err
		}
	}
}

// ReadTag consumes tag framing and returns the tag number. The decoder is
// left positioned at the tag content.
func (d *Decoder) ReadTag() (uint64, error) {
	major, info, err := d.readHeader()
	if err != nil {
		return 0, err
	}
	if major != majorTag {
		return 0, fmt.Errorf("%w: expected tag, got major type %d", ErrSyntax, major)
	}
	return d.readDefiniteLength(info)
}

// ReadBool decodes a boolean simple value.
func (d *Decoder) ReadBool() (bool, error) {
	major, info, err := d.readHeaderSkipTags()
	if err != nil {
		return false, err
	}
	if major != majorSimple || (info != simpleFalse && info != simpleTrue) {
		return false, fmt.Errorf("%w: expected boolean", ErrSyntax)
	}
	return info == simpleTrue, nil
}

// ReadInt decodes a signed integer from major type 0 or 1.
func (d *Decoder) ReadInt() (int64, error) {
	major, info, err := d.readHeaderSkipTags()
	if err != nil {
		return 0, err
	}
	n, err := d.readDefiniteLength(info)
	if err != nil {
		return 0, err
	}
	switch major {
	case majorUnsigned:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%w: unsigned integer %d overflows int64", ErrUnsupported, n)
		}
		return int64(n), nil
	case majorNegative:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%w: negative integer -1-%d overflows int64", ErrUnsupported, n)
		}
		return -1 - int64(n), nil
	default:
		return 0, fmt.Errorf("%w: expected integer, got major type %d", ErrSyntax, major)
	}
}

// ReadUint decodes an unsigned integer from major type 0.
func (d *Decoder) ReadUint() (uint64, error) {
	major, info, err := d.readHeaderSkipTags()
	if err != nil {
		return 0, err
	}
	if major != majorUnsigned {
		return 0, fmt.Errorf("%w: expected unsigned integer, got major type %d", ErrSyntax, major)
	}
	return d.readDefiniteLength(info)
}

// ReadFloat decodes a float of any encoded width (binary16, binary32 or
// binary64) as float64.
func (d *Decoder) ReadFloat() (float64, error) {
	major, info, err := d.readHeaderSkipTags()
	if err != nil {
		return 0, err
	}
	if major != majorSimple {
		return 0, fmt.Errorf("%w: expected float, got major type %d", ErrSyntax, major)
	}
	return d.readFloatBody(info)
}

func (d *Decoder) readFloatBody(info byte) (float64, error) {
	switch info {
	case simpleFloat16:
		if err := d.fill(d.scratch[:2]); err != nil {
			return 0, err
		}
		return float64(float16.Frombits(binary.BigEndian.Uint16(d.scratch[:2])).Float32()), nil
	case simpleFloat32:
		if err := d.fill(d.scratch[:4]); err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(binary.BigEndian.Uint32(d.scratch[:4]))), nil
	case simpleFloat64:
		if err := d.fill(d.scratch[:8]); err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(d.scratch[:8])), nil
	default:
		return 0, fmt.Errorf("%w: expected float, got simple value %d", ErrSyntax, info)
	}
}

// ReadBytes decodes a byte string, reassembling indefinite-length chunks.
func (d *Decoder) ReadBytes() ([]byte, error) {
	major, info, err := d.readHeaderSkipTags()
	if err != nil {
		return nil, err
	}
	if major != majorBytes {
		return nil, fmt.Errorf("%w: expected byte string, got major type %d", ErrSyntax, major)
	}
	return d.readString(majorBytes, info)
}

// ReadText decodes a text string, reassembling indefinite-length chunks and
// validating UTF-8.
func (d *Decoder) ReadText() (string, error) {
	major, info, err := d.readHeaderSkipTags()
	if err != nil {
		return "", err
	}
	if major != majorText {
		return "", fmt.Errorf("%w: expected text string, got major type %d", ErrSyntax, major)
	}
	b, err := d.readString(majorText, info)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// DecodeArray decodes an array of either framing, invoking elem once per
// element. elem must consume exactly one item per call.
func (d *Decoder) DecodeArray(elem func(*Decoder) error) error {
	major, info, err := d.readHeaderSkipTags()
	if err != nil {
		return err
	}
	if major != majorArray {
		return fmt.Errorf("%w: expected array, got major type %d", ErrSyntax, major)
	}
	n, indef, err := d.readLength(info)
	if err != nil {
		return err
	}
	if indef {
		for {
			br, err := d.isBreak()
			if err != nil {
				return err
			}
			if br {
				_, err := d.readByte()
				return err
			}
			if err := elem(d); err != nil {
				return err
			}
		}
	}
	for i := uint64(0); i < n; i++ {
		if err := elem(d); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMap decodes a map of either framing, invoking entry once per
// key-value pair. entry must consume exactly two items per call.
func (d *Decoder) DecodeMap(entry func(*Decoder) error) error {
	major, info, err := d.readHeaderSkipTags()
	if err != nil {
		return err
	}
	if major != majorMap {
		return fmt.Errorf("%w: expected map, got major type %d", ErrSyntax, major)
	}
	n, indef, err := d.readLength(info)
	if err != nil {
		return err
	}
	if indef {
		for {
			br, err := d.isBreak()
			if err != nil {
				return err
			}
			if br {
				_, err := d.readByte()
				return err
			}
			if err := entry(d); err != nil {
				return err
			}
		}
	}
	for i := uint64(0); i < n; i++ {
		if err := entry(d); err != nil {
			return err
		}
	}
	return nil
}

// DecodeOptional resolves a present-or-absent value. It peeks one byte for
// the canonical null encoding; on a match the null is consumed and (false,
// nil) returned. Otherwise the peeked byte stays in the lookahead slot and
// present decodes the value from there.
func (d *Decoder) DecodeOptional(present func(*Decoder) error) (bool, error) {
	b, err := d.peekByte()
	if err != nil {
		return false, err
	}
	if b == nullByte {
		if _, err := d.readByte(); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := present(d); err != nil {
		return false, err
	}
	return true, nil
}

// DecodeVariant decodes an enumerated variant. A text string is a unit
// variant named by the string; a single-entry map is a data-carrying variant
// whose payload the data callback decodes. Any other shape, or a variant map
// with an entry count other than one, is malformed.
func (d *Decoder) DecodeVariant(unit func(name string) error, data func(name string, d *Decoder) error) error {
	b, err := d.peekByte()
	if err != nil {
		return err
	}
	switch b >> 5 {
	case majorText:
		name, err := d.ReadText()
		if err != nil {
			return err
		}
		return unit(name)
	case majorMap:
		_, info, err := d.readHeader()
		if err != nil {
			return err
		}
		n, indef, err := d.readLength(info)
		if err != nil {
			return err
		}
		if !indef && n != 1 {
			return fmt.Errorf("%w: variant map has %d entries, want 1", ErrSyntax, n)
		}
		if indef {
			br, err := d.isBreak()
			if err != nil {
				return err
			}
			if br {
				return fmt.Errorf("%w: variant map has 0 entries, want 1", ErrSyntax)
			}
		}
		name, err := d.ReadText()
		if err != nil {
			return err
		}
		if err := data(name, d); err != nil {
			return err
		}
		if indef {
			br, err := d.isBreak()
			if err != nil {
				return err
			}
			if !br {
				return fmt.Errorf("%w: variant map has more than 1 entry", ErrSyntax)
			}
			if _, err := d.readByte(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: variant must be a text string or single-entry map", ErrSyntax)
	}
}

// DecodeWrapped decodes a single-field wrapper. Tag framing takes
// precedence and is consumed transparently; then a 1-element array
// (canonical form) or a bare value (legacy form) unwraps to the inner value.
// Any other array length is malformed.
func (d *Decoder) DecodeWrapped(inner func(*Decoder) error) error {
	for {
		b, err := d.peekByte()
		if err != nil {
			return err
		}
		if b>>5 != majorTag {
			break
		}
		if _, err := d.ReadTag(); err != nil {
			return err
		}
	}
	b, err := d.peekByte()
	if err != nil {
		return err
	}
	if b>>5 != majorArray {
		// Legacy form: the inner value inlined with no wrapping array.
		return inner(d)
	}
	_, info, err := d.readHeader()
	if err != nil {
		return err
	}
	n, indef, err := d.readLength(info)
	if err != nil {
		return err
	}
	if indef {
		br, err := d.isBreak()
		if err != nil {
			return err
		}
		if br {
			return fmt.Errorf("%w: wrapper array has 0 elements, want 1", ErrSyntax)
		}
		if err := inner(d); err != nil {
			return err
		}
		br, err = d.isBreak()
		if err != nil {
			return err
		}
		if !br {
			return fmt.Errorf("%w: wrapper array has more than 1 element", ErrSyntax)
		}
		_, err = d.readByte()
		return err
	}
	if n != 1 {
		return fmt.Errorf("%w: wrapper array has %d elements, want 1", ErrSyntax, n)
	}
	return inner(d)
}

// Any reads one item of whatever shape comes next and dispatches it to v.
// This is the single major-type dispatch every generic entry point shares.
func (d *Decoder) Any(v Visitor) error {
	major, info, err := d.readHeader()
	if err != nil {
		return err
	}
	switch major {
	case majorUnsigned:
		n, err := d.readDefiniteLength(info)
		if err != nil {
			return err
		}
		return v.VisitUint(n)
	case majorNegative:
		n, err := d.readDefiniteLength(info)
		if err != nil {
			return err
		}
		if n > math.MaxInt64 {
			return fmt.Errorf("%w: negative integer -1-%d overflows int64", ErrUnsupported, n)
		}
		return v.VisitInt(-1 - int64(n))
	case majorBytes:
		b, err := d.readString(majorBytes, info)
		if err != nil {
			return err
		}
		return v.VisitBytes(b)
	case majorText:
		b, err := d.readString(majorText, info)
		if err != nil {
			return err
		}
		if !utf8.Valid(b) {
			return ErrInvalidUTF8
		}
		return v.VisitText(string(b))
	case majorArray:
		n, indef, err := d.readLength(info)
		if err != nil {
			return err
		}
		if !indef && n > math.MaxInt32 {
			return fmt.Errorf("%w: array length %d overflows", ErrSyntax, n)
		}
		return v.VisitArray(&ArrayIter{d: d, remaining: int(n), indef: indef})
	case majorMap:
		n, indef, err := d.readLength(info)
		if err != nil {
			return err
		}
		if !indef && n > math.MaxInt32 {
			return fmt.Errorf("%w: map length %d overflows", ErrSyntax, n)
		}
		return v.VisitMap(&MapIter{d: d, remaining: int(n), indef: indef})
	case majorTag:
		num, err := d.readDefiniteLength(info)
		if err != nil {
			return err
		}
		return v.VisitTag(num, d)
	case majorSimple:
		switch info {
		case simpleFalse:
			return v.VisitBool(false)
		case simpleTrue:
			return v.VisitBool(true)
		case simpleNull:
			return v.VisitNull()
		case simpleFloat16, simpleFloat32, simpleFloat64:
			f, err := d.readFloatBody(info)
			if err != nil {
				return err
			}
			return v.VisitFloat(f)
		default:
			return fmt.Errorf("%w: unsupported simple value %d", ErrSyntax, info)
		}
	default:
		return fmt.Errorf("%w: unknown major type %d", ErrSyntax, major)
	}
}
