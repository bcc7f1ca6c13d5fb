package cbor

// Visitor receives one decoded item from Decoder.Any once its on-wire shape
// is known. Implementations reconstruct whatever in-memory form they want;
// Value is the package's own consumer of this interface.
//
// Composite callbacks are handed an iterator over the children and must drain
// it before returning, otherwise the decoder is left mid-item.
//
// VisitTag receives the tag number and the decoder positioned at the tag
// content. A visitor that treats tags as transparent simply calls d.Any(v)
// on itself; one that preserves them records the number first.
type Visitor interface {
	VisitNull() error
	VisitBool(v bool) error
	VisitUint(v uint64) error
	VisitInt(v int64) error
	VisitFloat(v float64) error
	VisitBytes(v []byte) error
	VisitText(v string) error
	VisitArray(it *ArrayIter) error
	VisitMap(it *MapIter) error
	VisitTag(num uint64, d *Decoder) error
}

// ArrayIter walks the elements of a decoded array. Definite-length arrays
// count down the declared length; indefinite-length arrays probe for the
// break marker before each element.
type ArrayIter struct {
	d         *Decoder
	remaining int
	indef     bool
}

// Len returns the declared element count, or -1 for indefinite length.
func (it *ArrayIter) Len() int {
	if it.indef {
		return -1
	}
	return it.remaining
}

// Next reports whether another element follows. After it returns true the
// caller must decode exactly one item from Decoder.
func (it *ArrayIter) Next() (bool, error) {
	if it.indef {
		br, err := it.d.isBreak()
		if err != nil {
			return false, err
		}
		if br {
			_, err := it.d.readByte()
			return false, err
		}
		return true, nil
	}
	if it.remaining == 0 {
		return false, nil
	}
	it.remaining--
	return true, nil
}

// Decoder returns the decoder positioned at the next element.
func (it *ArrayIter) Decoder() *Decoder {
	return it.d
}

// MapIter walks the key-value pairs of a decoded map.
type MapIter struct {
	d         *Decoder
	remaining int
	indef     bool
}

// Len returns the declared entry count, or -1 for indefinite length.
func (it *MapIter) Len() int {
	if it.indef {
		return -1
	}
	return it.remaining
}

// Next reports whether another entry follows. After it returns true the
// caller must decode exactly two items (key, then value) from Decoder.
func (it *MapIter) Next() (bool, error) {
	if it.indef {
		br, err := it.d.isBreak()
		if err != nil {
			return false, err
		}
		if br {
			_, err := it.d.readByte()
			return false, err
		}
		return true, nil
	}
	if it.remaining == 0 {
		return false, nil
	}
	it.remaining--
	return true, nil
}

// Decoder returns the decoder positioned at the next key or value.
func (it *MapIter) Decoder() *Decoder {
	return it.d
}
