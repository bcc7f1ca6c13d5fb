package cbor

import (
	"bytes"
	"encoding/hex"
	"math"
	"testing"
)

// Decode/encode checks against the RFC 8949 appendix A examples. Re-encoding
// uses CompactFloats so float widths match the published vectors.
func TestRFC8949Vectors(t *testing.T) {
	cases := []struct {
		hex  string
		want Value
	}{
		{"00", Int(0)},
		{"01", Int(1)},
		{"0a", Int(10)},
		{"17", Int(23)},
		{"1818", Int(24)},
		{"1819", Int(25)},
		{"1864", Int(100)},
		{"1903e8", Int(1000)},
		{"1a000f4240", Int(1000000)},
		{"1b000000e8d4a51000", Int(1000000000000)},
		{"20", Int(-1)},
		{"29", Int(-10)},
		{"3863", Int(-100)},
		{"3903e7", Int(-1000)},
		{"f4", Bool(false)},
		{"f5", Bool(true)},
		{"f6", Null()},
		{"f90000", Float(0.0)},
		{"f93c00", Float(1.0)},
		{"f93e00", Float(1.5)},
		{"f97bff", Float(65504.0)},
		{"fa47c35000", Float(100000.0)},
		{"fa7f7fffff", Float(3.4028234663852886e+38)},
		{"fb7e37e43c8800759c", Float(1.0e+300)},
		{"f9c400", Float(-4.0)},
		{"fbc010666666666666", Float(-4.1)},
		{"40", Bytes([]byte{})},
		{"4401020304", Bytes([]byte{1, 2, 3, 4})},
		{"60", Text("")},
		{"6161", Text("a")},
		{"6449455446", Text("IETF")},
		{"62225c", Text(`"\`)},
		{"62c3bc", Text("ü")},
		{"80", Array()},
		{"83010203", Array(Int(1), Int(2), Int(3))},
		{"8301820203820405", Array(Int(1), Array(Int(2), Int(3)), Array(Int(4), Int(5)))},
		{"a0", Map()},
		{"a201020304", Map(MapEntry{Int(1), Int(2)}, MapEntry{Int(3), Int(4)})},
		{"a26161016162820203", Map(
			MapEntry{Text("a"), Int(1)},
			MapEntry{Text("b"), Array(Int(2), Int(3))},
		)},
		{"826161a161626163", Array(Text("a"), Map(MapEntry{Text("b"), Text("c")}))},
		{"c074323031332d30332d32315432303a30343a30305a", Tag(0, Text("2013-03-21T20:04:00Z"))},
		{"c11a514b67b0", Tag(1, Int(1363896240))},
		{"d82076687474703a2f2f7777772e6578616d706c652e636f6d", Tag(32, Text("http://www.example.com"))},
	}

	for _, tc := range cases {
		data, err := hex.DecodeString(tc.hex)
		if err != nil {
			t.Fatalf("bad vector %q: %v", tc.hex, err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Errorf("Decode(%s): %v", tc.hex, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("Decode(%s) = %#v, want %#v", tc.hex, got, tc.want)
			continue
		}

		var buf bytes.Buffer
		e := NewEncoder(&buf)
		e.CompactFloats = true
		if err := got.MarshalCBOR(e); err != nil {
			t.Errorf("re-encode %s: %v", tc.hex, err)
			continue
		}
		if !bytes.Equal(buf.Bytes(), data) {
			t.Errorf("re-encode %s = %x", tc.hex, buf.Bytes())
		}
	}
}

// Indefinite-length appendix A examples decode to the same values as their
// definite-length counterparts; re-encoding normalizes the framing.
func TestRFC8949IndefiniteVectors(t *testing.T) {
	cases := []struct {
		hex  string
		want Value
	}{
		{"5f42010243030405ff", Bytes([]byte{1, 2, 3, 4, 5})},
		{"7f657374726561646d696e67ff", Text("streaming")},
		{"9fff", Array()},
		{"9f018202039f0405ffff", Array(Int(1), Array(Int(2), Int(3)), Array(Int(4), Int(5)))},
		{"83018202039f0405ff", Array(Int(1), Array(Int(2), Int(3)), Array(Int(4), Int(5)))},
		{"9f0102030405060708090a0b0c0d0e0f101112131415161718181819ff", func() Value {
			elems := make([]Value, 25)
			for i := range elems {
				elems[i] = Int(int64(i + 1))
			}
			return Array(elems...)
		}()},
		{"bf61610161629f0203ffff", Map(
			MapEntry{Text("a"), Int(1)},
			MapEntry{Text("b"), Array(Int(2), Int(3))},
		)},
		{"826161bf61626163ff", Array(Text("a"), Map(MapEntry{Text("b"), Text("c")}))},
		{"bf6346756ef563416d7421ff", Map(
			MapEntry{Text("Fun"), Bool(true)},
			MapEntry{Text("Amt"), Int(-2)},
		)},
	}

	for _, tc := range cases {
		data, err := hex.DecodeString(tc.hex)
		if err != nil {
			t.Fatalf("bad vector %q: %v", tc.hex, err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Errorf("Decode(%s): %v", tc.hex, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("Decode(%s) = %#v, want %#v", tc.hex, got, tc.want)
		}
	}
}

func TestHalfPrecisionSpecials(t *testing.T) {
	inf, err := Decode([]byte{0xf9, 0x7c, 0x00})
	if err != nil || !math.IsInf(inf.Float, 1) {
		t.Fatalf("f16 +Inf = %#v, %v", inf, err)
	}
	ninf, err := Decode([]byte{0xf9, 0xfc, 0x00})
	if err != nil || !math.IsInf(ninf.Float, -1) {
		t.Fatalf("f16 -Inf = %#v, %v", ninf, err)
	}
	nan, err := Decode([]byte{0xf9, 0x7e, 0x00})
	if err != nil || !math.IsNaN(nan.Float) {
		t.Fatalf("f16 NaN = %#v, %v", nan, err)
	}
	// Subnormal half-precision.
	sub, err := Decode([]byte{0xf9, 0x00, 0x01})
	if err != nil || sub.Float != 5.960464477539063e-8 {
		t.Fatalf("f16 subnormal = %#v, %v", sub, err)
	}
}
