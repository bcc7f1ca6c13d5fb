package cbor

import (
	"errors"
	"io"
)

// Sentinel errors for the decode/encode failure taxonomy. Errors returned by
// this package wrap one of these (or the underlying sink/source error), so
// callers can classify failures with errors.Is.
var (
	// ErrEOF reports input that ends before the declared item is complete.
	ErrEOF = errors.New("cbor: unexpected end of input")
	// ErrEmptyInput reports a top-level decode of zero bytes.
	ErrEmptyInput = errors.New("cbor: empty input")
	// ErrTrailingData reports leftover bytes after a top-level value.
	ErrTrailingData = errors.New("cbor: trailing bytes after top-level value")
	// ErrInvalidUTF8 reports a text string whose bytes are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("cbor: invalid UTF-8 in text string")
	// ErrSyntax reports malformed framing: reserved additional-info codes,
	// wrong-shape indefinite-string chunks, bad variant or wrapper arity.
	ErrSyntax = errors.New("cbor: malformed input")
	// ErrUnsupported reports a value whose shape has no framing rule.
	ErrUnsupported = errors.New("cbor: unsupported value")
)

// eof maps reader exhaustion onto ErrEOF and leaves other failures (real IO
// errors) untouched.
func eof(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrEOF
	}
	return err
}
