package cbor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Registered tag numbers this package knows how to frame. Content validation
// (URI syntax, base64 alphabets, RFC 3339 grammar) is the caller's concern;
// the helpers below only guarantee the framing.
const (
	TagDateTimeString uint64 = 0 // RFC 3339 date/time string
	TagEpochDateTime  uint64 = 1 // epoch-based date/time

	TagPositiveBignum  uint64 = 2
	TagNegativeBignum  uint64 = 3
	TagDecimalFraction uint64 = 4
	TagBigfloat        uint64 = 5

	TagURI       uint64 = 32 // URI (RFC 3986)
	TagBase64URL uint64 = 33 // base64url-encoded text
	TagBase64    uint64 = 34 // base64-encoded text
	TagMIME      uint64 = 36 // MIME message

	// RFC 8746 typed arrays. Tag 76 is reserved and unassigned.
	TagUint8Array        uint64 = 64
	TagUint16BEArray     uint64 = 65
	TagUint32BEArray     uint64 = 66
	TagUint64BEArray     uint64 = 67
	TagUint8ClampedArray uint64 = 68
	TagUint16LEArray     uint64 = 69
	TagUint32LEArray     uint64 = 70
	TagUint64LEArray     uint64 = 71
	TagSint8Array        uint64 = 72
	TagSint16BEArray     uint64 = 73
	TagSint32BEArray     uint64 = 74
	TagSint64BEArray     uint64 = 75
	TagSint16LEArray     uint64 = 77
	TagSint32LEArray     uint64 = 78
	TagSint64LEArray     uint64 = 79
	TagFloat16BEArray    uint64 = 80
	TagFloat32BEArray    uint64 = 81
	TagFloat64BEArray    uint64 = 82
	TagFloat128BEArray   uint64 = 83
	TagFloat16LEArray    uint64 = 84
	TagFloat32LEArray    uint64 = 85
	TagFloat64LEArray    uint64 = 86
	TagFloat128LEArray   uint64 = 87
)

// EncodeDateTimeString writes an RFC 3339 date/time string under tag 0.
func EncodeDateTimeString(e *Encoder, datetime string) error {
	if err := e.WriteTag(TagDateTimeString); err != nil {
		return err
	}
	return e.WriteText(datetime)
}

// EncodeEpochDateTime writes an integer epoch timestamp under tag 1.
func EncodeEpochDateTime(e *Encoder, epoch int64) error {
	if err := e.WriteTag(TagEpochDateTime); err != nil {
		return err
	}
	return e.WriteInt(epoch)
}

// EncodeURI writes a URI string under tag 32.
func EncodeURI(e *Encoder, uri string) error {
	if err := e.WriteTag(TagURI); err != nil {
		return err
	}
	return e.WriteText(uri)
}

// EncodeBase64URL writes base64url-encoded text under tag 33.
func EncodeBase64URL(e *Encoder, data string) error {
	if err := e.WriteTag(TagBase64URL); err != nil {
		return err
	}
	return e.WriteText(data)
}

// EncodeBase64 writes base64-encoded text under tag 34.
func EncodeBase64(e *Encoder, data string) error {
	if err := e.WriteTag(TagBase64); err != nil {
		return err
	}
	return e.WriteText(data)
}

// expectTag consumes tag framing and checks the number.
func expectTag(d *Decoder, want uint64) error {
	num, err := d.ReadTag()
	if err != nil {
		return err
	}
	if num != want {
		return fmt.Errorf("%w: got tag %d, want %d", ErrSyntax, num, want)
	}
	return nil
}

// DecodeDateTimeString reads a tag 0 date/time string.
func DecodeDateTimeString(d *Decoder) (string, error) {
	if err := expectTag(d, TagDateTimeString); err != nil {
		return "", err
	}
	return d.ReadText()
}

// DecodeEpochDateTime reads a tag 1 integer epoch timestamp.
func DecodeEpochDateTime(d *Decoder) (int64, error) {
	if err := expectTag(d, TagEpochDateTime); err != nil {
		return 0, err
	}
	return d.ReadInt()
}

// DecodeURI reads a tag 32 URI string.
func DecodeURI(d *Decoder) (string, error) {
	if err := expectTag(d, TagURI); err != nil {
		return "", err
	}
	return d.ReadText()
}

// Typed arrays (RFC 8746) frame a byte string of packed fixed-width elements.
// The element encoding is the tag's, not the host's; each helper commits to
// one tag and one byte order.

// EncodeUint8Array writes data under tag 64.
func EncodeUint8Array(e *Encoder, data []byte) error {
	if err := e.WriteTag(TagUint8Array); err != nil {
		return err
	}
	return e.WriteBytes(data)
}

// EncodeSint8Array writes data under tag 72.
func EncodeSint8Array(e *Encoder, data []int8) error {
	if err := e.WriteTag(TagSint8Array); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	for i, v := range data {
		buf[i] = byte(v)
	}
	return e.WriteBytes(buf)
}

func encodeTagged16(e *Encoder, tag uint64, order binary.ByteOrder, data []uint16) error {
	if err := e.WriteTag(tag); err != nil {
		return err
	}
	buf := make([]byte, 2*len(data))
	for i, v := range data {
		order.PutUint16(buf[2*i:], v)
	}
	return e.WriteBytes(buf)
}

func encodeTagged32(e *Encoder, tag uint64, order binary.ByteOrder, data []uint32) error {
	if err := e.WriteTag(tag); err != nil {
		return err
	}
	buf := make([]byte, 4*len(data))
	for i, v := range data {
		order.PutUint32(buf[4*i:], v)
	}
	return e.WriteBytes(buf)
}

func encodeTagged64(e *Encoder, tag uint64, order binary.ByteOrder, data []uint64) error {
	if err := e.WriteTag(tag); err != nil {
		return err
	}
	buf := make([]byte, 8*len(data))
	for i, v := range data {
		order.PutUint64(buf[8*i:], v)
	}
	return e.WriteBytes(buf)
}

// EncodeUint16BEArray writes data under tag 65.
func EncodeUint16BEArray(e *Encoder, data []uint16) error {
	return encodeTagged16(e, TagUint16BEArray, binary.BigEndian, data)
}

// EncodeUint16LEArray writes data under tag 69.
func EncodeUint16LEArray(e *Encoder, data []uint16) error {
	return encodeTagged16(e, TagUint16LEArray, binary.LittleEndian, data)
}

// EncodeUint32BEArray writes data under tag 66.
func EncodeUint32BEArray(e *Encoder, data []uint32) error {
	return encodeTagged32(e, TagUint32BEArray, binary.BigEndian, data)
}

// EncodeUint32LEArray writes data under tag 70.
func EncodeUint32LEArray(e *Encoder, data []uint32) error {
	return encodeTagged32(e, TagUint32LEArray, binary.LittleEndian, data)
}

// EncodeUint64BEArray writes data under tag 67.
func EncodeUint64BEArray(e *Encoder, data []uint64) error {
	return encodeTagged64(e, TagUint64BEArray, binary.BigEndian, data)
}

// EncodeUint64LEArray writes data under tag 71.
func EncodeUint64LEArray(e *Encoder, data []uint64) error {
	return encodeTagged64(e, TagUint64LEArray, binary.LittleEndian, data)
}

// EncodeSint16BEArray writes data under tag 73.
func EncodeSint16BEArray(e *Encoder, data []int16) error {
	return encodeTagged16(e, TagSint16BEArray, binary.BigEndian, uint16s(data))
}

// EncodeSint16LEArray writes data under tag 77.
func EncodeSint16LEArray(e *Encoder, data []int16) error {
	return encodeTagged16(e, TagSint16LEArray, binary.LittleEndian, uint16s(data))
}

// EncodeSint32BEArray writes data under tag 74.
func EncodeSint32BEArray(e *Encoder, data []int32) error {
	return encodeTagged32(e, TagSint32BEArray, binary.BigEndian, uint32s(data))
}

// EncodeSint32LEArray writes data under tag 78.
func EncodeSint32LEArray(e *Encoder, data []int32) error {
	return encodeTagged32(e, TagSint32LEArray, binary.LittleEndian, uint32s(data))
}

// EncodeSint64BEArray writes data under tag 75.
func EncodeSint64BEArray(e *Encoder, data []int64) error {
	return encodeTagged64(e, TagSint64BEArray, binary.BigEndian, uint64s(data))
}

// EncodeSint64LEArray writes data under tag 79.
func EncodeSint64LEArray(e *Encoder, data []int64) error {
	return encodeTagged64(e, TagSint64LEArray, binary.LittleEndian, uint64s(data))
}

// EncodeFloat16BEArray writes raw binary16 bits under tag 80. Elements are
// passed as uint16 bit patterns since Go has no native half-precision type.
func EncodeFloat16BEArray(e *Encoder, bits []uint16) error {
	return encodeTagged16(e, TagFloat16BEArray, binary.BigEndian, bits)
}

// EncodeFloat16LEArray writes raw binary16 bits under tag 84.
func EncodeFloat16LEArray(e *Encoder, bits []uint16) error {
	return encodeTagged16(e, TagFloat16LEArray, binary.LittleEndian, bits)
}

// EncodeFloat32BEArray writes data under tag 81.
func EncodeFloat32BEArray(e *Encoder, data []float32) error {
	return encodeTagged32(e, TagFloat32BEArray, binary.BigEndian, float32Bits(data))
}

// EncodeFloat32LEArray writes data under tag 85.
func EncodeFloat32LEArray(e *Encoder, data []float32) error {
	return encodeTagged32(e, TagFloat32LEArray, binary.LittleEndian, float32Bits(data))
}

// EncodeFloat64BEArray writes data under tag 82.
func EncodeFloat64BEArray(e *Encoder, data []float64) error {
	return encodeTagged64(e, TagFloat64BEArray, binary.BigEndian, float64Bits(data))
}

// EncodeFloat64LEArray writes data under tag 86.
func EncodeFloat64LEArray(e *Encoder, data []float64) error {
	return encodeTagged64(e, TagFloat64LEArray, binary.LittleEndian, float64Bits(data))
}

// EncodeFloat128BEArray writes raw 16-byte binary128 elements under tag 83.
// Go has no native quad-precision type, so elements travel as raw bytes;
// len(data) must be a multiple of 16.
func EncodeFloat128BEArray(e *Encoder, data []byte) error {
	return encodeFloat128(e, TagFloat128BEArray, data)
}

// EncodeFloat128LEArray writes raw 16-byte binary128 elements under tag 87.
func EncodeFloat128LEArray(e *Encoder, data []byte) error {
	return encodeFloat128(e, TagFloat128LEArray, data)
}

func encodeFloat128(e *Encoder, tag uint64, data []byte) error {
	if len(data)%16 != 0 {
		return fmt.Errorf("%w: float128 payload of %d bytes is not a multiple of 16", ErrUnsupported, len(data))
	}
	if err := e.WriteTag(tag); err != nil {
		return err
	}
	return e.WriteBytes(data)
}

func uint16s(data []int16) []uint16 {
	out := make([]uint16, len(data))
	for i, v := range data {
		out[i] = uint16(v)
	}
	return out
}

func uint32s(data []int32) []uint32 {
	out := make([]uint32, len(data))
	for i, v := range data {
		out[i] = uint32(v)
	}
	return out
}

func uint64s(data []int64) []uint64 {
	out := make([]uint64, len(data))
	for i, v := range data {
		out[i] = uint64(v)
	}
	return out
}

func float32Bits(data []float32) []uint32 {
	out := make([]uint32, len(data))
	for i, v := range data {
		out[i] = math.Float32bits(v)
	}
	return out
}

func float64Bits(data []float64) []uint64 {
	out := make([]uint64, len(data))
	for i, v := range data {
		out[i] = math.Float64bits(v)
	}
	return out
}

// DecodeUint8Array reads a tag 64 byte array.
func DecodeUint8Array(d *Decoder) ([]byte, error) {
	if err := expectTag(d, TagUint8Array); err != nil {
		return nil, err
	}
	return d.ReadBytes()
}

// decodeTypedPayload reads the byte-string payload of a typed array and
// checks element alignment.
func decodeTypedPayload(d *Decoder, want uint64, elemSize int) ([]byte, error) {
	if err := expectTag(d, want); err != nil {
		return nil, err
	}
	b, err := d.ReadBytes()
	if err != nil {
		return nil, err
	}
	if len(b)%elemSize != 0 {
		return nil, fmt.Errorf("%w: typed array payload of %d bytes is not a multiple of %d", ErrSyntax, len(b), elemSize)
	}
	return b, nil
}

// DecodeUint16BEArray reads a tag 65 array.
func DecodeUint16BEArray(d *Decoder) ([]uint16, error) {
	b, err := decodeTypedPayload(d, TagUint16BEArray, 2)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(b[2*i:])
	}
	return out, nil
}

// DecodeUint16LEArray reads a tag 69 array.
func DecodeUint16LEArray(d *Decoder) ([]uint16, error) {
	b, err := decodeTypedPayload(d, TagUint16LEArray, 2)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return out, nil
}

// DecodeUint32BEArray reads a tag 66 array.
func DecodeUint32BEArray(d *Decoder) ([]uint32, error) {
	b, err := decodeTypedPayload(d, TagUint32BEArray, 4)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.BigEndian.Uint32(b[4*i:])
	}
	return out, nil
}

// DecodeUint64BEArray reads a tag 67 array.
func DecodeUint64BEArray(d *Decoder) ([]uint64, error) {
	b, err := decodeTypedPayload(d, TagUint64BEArray, 8)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(b)/8)
	for i := range out {
		out[i] = binary.BigEndian.Uint64(b[8*i:])
	}
	return out, nil
}

// DecodeFloat32BEArray reads a tag 81 array.
func DecodeFloat32BEArray(d *Decoder) ([]float32, error) {
	b, err := decodeTypedPayload(d, TagFloat32BEArray, 4)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

// DecodeFloat64BEArray reads a tag 82 array.
func DecodeFloat64BEArray(d *Decoder) ([]float64, error) {
	b, err := decodeTypedPayload(d, TagFloat64BEArray, 8)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.BigEndian.Uint64(b[8*i:]))
	}
	return out, nil
}
