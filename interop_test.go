package cbor

import (
	"bytes"
	"reflect"
	"testing"

	fxcbor "github.com/fxamacker/cbor/v2"
)

// Differential checks against fxamacker/cbor: both sides implement RFC 8949
// preferred serialization, so byte output for definite-length values with
// text keys must agree.

func TestEncodeMatchesFxamacker(t *testing.T) {
	v := Map(
		MapEntry{Text("a"), Int(1)},
		MapEntry{Text("b"), Array(Int(2), Int(3))},
		MapEntry{Text("c"), Text("hello")},
	)
	ours, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	em, err := fxcbor.EncOptions{Sort: fxcbor.SortCanonical}.EncMode()
	if err != nil {
		t.Fatalf("EncMode: %v", err)
	}
	theirs, err := em.Marshal(map[string]any{
		"a": 1,
		"b": []any{2, 3},
		"c": "hello",
	})
	if err != nil {
		t.Fatalf("fxamacker Marshal: %v", err)
	}
	if !bytes.Equal(ours, theirs) {
		t.Fatalf("encoding mismatch:\nours   = % x\ntheirs = % x", ours, theirs)
	}
}

func TestScalarEncodingsMatchFxamacker(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		goV  any
	}{
		{"zero", Int(0), int64(0)},
		{"small", Int(23), int64(23)},
		{"boundary", Int(24), int64(24)},
		{"big", Int(1000000), int64(1000000)},
		{"negative", Int(-1000), int64(-1000)},
		{"text", Text("IETF"), "IETF"},
		{"bytes", Bytes([]byte{1, 2, 3, 4}), []byte{1, 2, 3, 4}},
		{"bool", Bool(true), true},
		{"null", Null(), nil},
	}
	for _, tc := range cases {
		ours, err := Encode(tc.v)
		if err != nil {
			t.Fatalf("%s: Encode: %v", tc.name, err)
		}
		theirs, err := fxcbor.Marshal(tc.goV)
		if err != nil {
			t.Fatalf("%s: fxamacker Marshal: %v", tc.name, err)
		}
		if !bytes.Equal(ours, theirs) {
			t.Errorf("%s: ours = % x, theirs = % x", tc.name, ours, theirs)
		}
	}
}

func TestDecodeFxamackerOutput(t *testing.T) {
	theirs, err := fxcbor.Marshal(map[string]any{
		"name":  "test",
		"count": 7,
		"tags":  []any{"x", "y"},
	})
	if err != nil {
		t.Fatalf("fxamacker Marshal: %v", err)
	}
	v, err := Decode(theirs)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if name, _ := v.GetText("name"); name.Text != "test" {
		t.Errorf("name = %#v", name)
	}
	if count, _ := v.GetText("count"); count.Int != 7 {
		t.Errorf("count = %#v", count)
	}
	tags, _ := v.GetText("tags")
	if tags.Kind != KindArray || len(tags.Array) != 2 || tags.Array[1].Text != "y" {
		t.Errorf("tags = %#v", tags)
	}
}

func TestFxamackerDecodesOurOutput(t *testing.T) {
	v := Array(Int(1), Text("two"), Bytes([]byte{3}), Bool(false), Null(), Float(1.5))
	ours, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var back []any
	if err := fxcbor.Unmarshal(ours, &back); err != nil {
		t.Fatalf("fxamacker Unmarshal: %v", err)
	}
	want := []any{uint64(1), "two", []byte{3}, false, nil, 1.5}
	if !reflect.DeepEqual(back, want) {
		t.Fatalf("fxamacker decoded %#v, want %#v", back, want)
	}
}

func TestFxamackerAcceptsOurTagFraming(t *testing.T) {
	ours := encodeWith(t, func(e *Encoder) error {
		return EncodeEpochDateTime(e, 1363896240)
	})
	var raw fxcbor.Tag
	if err := fxcbor.Unmarshal(ours, &raw); err != nil {
		t.Fatalf("fxamacker Unmarshal: %v", err)
	}
	if raw.Number != 1 {
		t.Fatalf("tag number = %d, want 1", raw.Number)
	}
	if n, ok := raw.Content.(uint64); !ok || n != 1363896240 {
		t.Fatalf("tag content = %#v", raw.Content)
	}
}
