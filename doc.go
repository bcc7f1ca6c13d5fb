// Package cbor implements the CBOR data format (RFC 8949) with a registry of
// semantic tags: date/time strings (tag 0), epoch timestamps (tag 1), URIs
// (tag 32), base64 variants (tags 33/34), and RFC 8746 typed numeric arrays
// with explicit endianness (tags 64-87).
//
// Encoding is canonical: every composite is emitted with a definite-length
// header and minimal-width integer encoding. Composites whose element count is
// only discovered during emission are buffered per child and re-emitted with a
// definite-length header, so indefinite-length output is never produced unless
// a caller opts in through the explicit streaming methods.
//
// Decoding is single-pass and pull-based, accepting both definite- and
// indefinite-length framing, reassembling chunked strings, and exposing one
// byte of lookahead for the shapes that need it (optional values, enumerated
// variants, legacy wrapper forms).
//
// Byte strings are the performance-critical path: one header write followed by
// a raw copy on encode, one exactly-sized allocation on decode.
package cbor
