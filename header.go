package cbor

// CBOR major types (RFC 8949, section 3.1).
const (
	majorUnsigned byte = 0
	majorNegative byte = 1
	majorBytes    byte = 2
	majorText     byte = 3
	majorArray    byte = 4
	majorMap      byte = 5
	majorTag      byte = 6
	majorSimple   byte = 7
)

// Additional-info codes. Values 0-23 embed the argument directly in the
// header byte; 24-27 signal a 1/2/4/8-byte big-endian extension; 31 signals
// indefinite length. 28-30 are reserved and always malformed.
const (
	infoMaxInline  byte = 23
	infoUint8      byte = 24
	infoUint16     byte = 25
	infoUint32     byte = 26
	infoUint64     byte = 27
	infoIndefinite byte = 31
)

// Simple values and float markers (major type 7).
const (
	simpleFalse   byte = 20
	simpleTrue    byte = 21
	simpleNull    byte = 22
	simpleFloat16 byte = 25
	simpleFloat32 byte = 26
	simpleFloat64 byte = 27
)

// headerByte packs a major type and additional-info code into one byte.
func headerByte(major, info byte) byte {
	return major<<5 | info
}

// breakByte terminates an indefinite-length composite.
const breakByte byte = 0xff

// nullByte is the canonical encoding of null, the single byte every optional
// decode peeks for.
const nullByte byte = 0xf6
