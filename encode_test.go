package cbor

import (
	"bytes"
	"math"
	"testing"
)

func encodeWith(t *testing.T, fn func(*Encoder) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := fn(NewEncoder(&buf)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestWriteIntHeaderWidths(t *testing.T) {
	cases := []struct {
		v    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{23, []byte{0x17}},
		{24, []byte{0x18, 0x18}},
		{255, []byte{0x18, 0xff}},
		{256, []byte{0x19, 0x01, 0x00}},
		{1000, []byte{0x19, 0x03, 0xe8}},
		{65535, []byte{0x19, 0xff, 0xff}},
		{65536, []byte{0x1a, 0x00, 0x01, 0x00, 0x00}},
		{1 << 32, []byte{0x1b, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}},
		{-1, []byte{0x20}},
		{-24, []byte{0x37}},
		{-25, []byte{0x38, 0x18}},
		{-1000, []byte{0x39, 0x03, 0xe7}},
	}
	for _, tc := range cases {
		got := encodeWith(t, func(e *Encoder) error { return e.WriteInt(tc.v) })
		if !bytes.Equal(got, tc.want) {
			t.Errorf("WriteInt(%d) = % x, want % x", tc.v, got, tc.want)
		}
	}
}

func TestWriteUintMax(t *testing.T) {
	got := encodeWith(t, func(e *Encoder) error { return e.WriteUint(math.MaxUint64) })
	want := []byte{0x1b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if !bytes.Equal(got, want) {
		t.Fatalf("WriteUint(max) = % x, want % x", got, want)
	}
}

func TestWriteSimpleValues(t *testing.T) {
	if got := encodeWith(t, (*Encoder).WriteNull); !bytes.Equal(got, []byte{0xf6}) {
		t.Errorf("WriteNull = % x", got)
	}
	if got := encodeWith(t, func(e *Encoder) error { return e.WriteBool(false) }); !bytes.Equal(got, []byte{0xf4}) {
		t.Errorf("WriteBool(false) = % x", got)
	}
	if got := encodeWith(t, func(e *Encoder) error { return e.WriteBool(true) }); !bytes.Equal(got, []byte{0xf5}) {
		t.Errorf("WriteBool(true) = % x", got)
	}
}

func TestWriteStrings(t *testing.T) {
	got := encodeWith(t, func(e *Encoder) error { return e.WriteText("hello") })
	want := append([]byte{0x65}, "hello"...)
	if !bytes.Equal(got, want) {
		t.Fatalf("WriteText = % x, want % x", got, want)
	}

	got = encodeWith(t, func(e *Encoder) error { return e.WriteBytes([]byte{1, 2, 3, 4}) })
	want = []byte{0x44, 1, 2, 3, 4}
	if !bytes.Equal(got, want) {
		t.Fatalf("WriteBytes = % x, want % x", got, want)
	}

	got = encodeWith(t, func(e *Encoder) error { return e.WriteText("") })
	if !bytes.Equal(got, []byte{0x60}) {
		t.Fatalf("WriteText(empty) = % x", got)
	}
}

func TestWriteFloatWidths(t *testing.T) {
	got := encodeWith(t, func(e *Encoder) error { return e.WriteFloat64(1.1) })
	want := []byte{0xfb, 0x3f, 0xf1, 0x99, 0x99, 0x99, 0x99, 0x99, 0x9a}
	if !bytes.Equal(got, want) {
		t.Fatalf("WriteFloat64(1.1) = % x, want % x", got, want)
	}

	got = encodeWith(t, func(e *Encoder) error { return e.WriteFloat32(100000.0) })
	want = []byte{0xfa, 0x47, 0xc3, 0x50, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("WriteFloat32(100000) = % x, want % x", got, want)
	}
}

func TestCompactFloats(t *testing.T) {
	compact := func(v float64) []byte {
		var buf bytes.Buffer
		e := NewEncoder(&buf)
		e.CompactFloats = true
		if err := e.WriteFloat64(v); err != nil {
			t.Fatalf("WriteFloat64(%v): %v", v, err)
		}
		return buf.Bytes()
	}
	cases := []struct {
		v    float64
		want []byte
	}{
		{0.0, []byte{0xf9, 0x00, 0x00}},
		{1.0, []byte{0xf9, 0x3c, 0x00}},
		{1.5, []byte{0xf9, 0x3e, 0x00}},
		{65504.0, []byte{0xf9, 0x7b, 0xff}},
		{100000.0, []byte{0xfa, 0x47, 0xc3, 0x50, 0x00}},
		{1.1, []byte{0xfb, 0x3f, 0xf1, 0x99, 0x99, 0x99, 0x99, 0x99, 0x9a}},
		{math.Inf(1), []byte{0xf9, 0x7c, 0x00}},
		{math.Inf(-1), []byte{0xf9, 0xfc, 0x00}},
		{math.NaN(), []byte{0xf9, 0x7e, 0x00}},
	}
	for _, tc := range cases {
		if got := compact(tc.v); !bytes.Equal(got, tc.want) {
			t.Errorf("compact %v = % x, want % x", tc.v, got, tc.want)
		}
	}
}

func TestWriteCompositeHeaders(t *testing.T) {
	got := encodeWith(t, func(e *Encoder) error { return e.WriteArrayHeader(0) })
	if !bytes.Equal(got, []byte{0x80}) {
		t.Fatalf("empty array header = % x", got)
	}
	got = encodeWith(t, func(e *Encoder) error { return e.WriteMapHeader(0) })
	if !bytes.Equal(got, []byte{0xa0}) {
		t.Fatalf("empty map header = % x", got)
	}
	got = encodeWith(t, func(e *Encoder) error { return e.WriteArrayHeader(25) })
	if !bytes.Equal(got, []byte{0x98, 0x19}) {
		t.Fatalf("array(25) header = % x", got)
	}
	if err := NewEncoder(&bytes.Buffer{}).WriteArrayHeader(-1); err == nil {
		t.Fatal("negative array length accepted")
	}
}

func TestWriteTagFraming(t *testing.T) {
	got := encodeWith(t, func(e *Encoder) error {
		if err := e.WriteTag(32); err != nil {
			return err
		}
		return e.WriteText("https://example.com")
	})
	want := append([]byte{0xd8, 0x20, 0x73}, "https://example.com"...)
	if !bytes.Equal(got, want) {
		t.Fatalf("tagged URI = % x, want % x", got, want)
	}
}

func TestWriteWrapper(t *testing.T) {
	got := encodeWith(t, func(e *Encoder) error {
		return e.WriteWrapper(func(e *Encoder) error { return e.WriteInt(42) })
	})
	want := []byte{0x81, 0x18, 0x2a}
	if !bytes.Equal(got, want) {
		t.Fatalf("wrapper = % x, want % x", got, want)
	}
}

func TestWriteVariants(t *testing.T) {
	got := encodeWith(t, func(e *Encoder) error { return e.WriteUnitVariant("Red") })
	want := append([]byte{0x63}, "Red"...)
	if !bytes.Equal(got, want) {
		t.Fatalf("unit variant = % x, want % x", got, want)
	}

	got = encodeWith(t, func(e *Encoder) error {
		return e.WriteVariant("Point", func(e *Encoder) error {
			if err := e.WriteArrayHeader(2); err != nil {
				return err
			}
			if err := e.WriteInt(1); err != nil {
				return err
			}
			return e.WriteInt(2)
		})
	})
	want = append([]byte{0xa1, 0x65}, "Point"...)
	want = append(want, 0x82, 0x01, 0x02)
	if !bytes.Equal(got, want) {
		t.Fatalf("data variant = % x, want % x", got, want)
	}
}

func TestArrayBuilderEmitsDefiniteHeader(t *testing.T) {
	got := encodeWith(t, func(e *Encoder) error {
		b := e.BuildArray()
		for i := 1; i <= 3; i++ {
			if err := b.Element().WriteInt(int64(i)); err != nil {
				return err
			}
		}
		return b.Flush()
	})
	want := []byte{0x83, 0x01, 0x02, 0x03}
	if !bytes.Equal(got, want) {
		t.Fatalf("built array = % x, want % x", got, want)
	}
}

func TestMapBuilderEmitsDefiniteHeader(t *testing.T) {
	got := encodeWith(t, func(e *Encoder) error {
		b := e.BuildMap()
		if err := b.Key().WriteText("a"); err != nil {
			return err
		}
		if err := b.Value().WriteInt(1); err != nil {
			return err
		}
		if err := b.Key().WriteText("b"); err != nil {
			return err
		}
		if err := b.Value().WriteInt(2); err != nil {
			return err
		}
		return b.Flush()
	})
	want := []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'b', 0x02}
	if !bytes.Equal(got, want) {
		t.Fatalf("built map = % x, want % x", got, want)
	}
}

func TestIndefiniteOptIn(t *testing.T) {
	got := encodeWith(t, func(e *Encoder) error {
		if err := e.WriteArrayIndefinite(); err != nil {
			return err
		}
		if err := e.WriteInt(1); err != nil {
			return err
		}
		return e.WriteBreak()
	})
	want := []byte{0x9f, 0x01, 0xff}
	if !bytes.Equal(got, want) {
		t.Fatalf("indefinite array = % x, want % x", got, want)
	}
}
