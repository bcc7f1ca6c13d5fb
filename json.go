package cbor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/minio/simdjson-go"
)

// binaryPrefix marks a JSON string carrying base64 payload bytes. JSON has no
// binary type, so byte strings round-trip through the bridge as
// "b64:<base64>".
const binaryPrefix = "b64:"

// FromJSON parses JSON using simdjson-go and returns the equivalent dynamic
// value. Whole numbers become integers, other numbers floats; strings with
// the b64: prefix become byte strings.
func FromJSON(data []byte) (Value, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Value{}, fmt.Errorf("json input is empty")
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return scalarValueFromJSON(trimmed)
	}
	parsed, err := simdjson.Parse(data, nil)
	if err != nil {
		return Value{}, err
	}
	it := parsed.Iter()
	if it.Advance() != simdjson.TypeRoot {
		return Value{}, fmt.Errorf("json root not found")
	}
	typ, root, err := it.Root(nil)
	if err != nil {
		return Value{}, err
	}
	return valueFromJSONIter(typ, root)
}

// scalarValueFromJSON handles a scalar at the top level, which simdjson-go
// does not parse on its own.
func scalarValueFromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err == nil || err != io.EOF {
		return Value{}, fmt.Errorf("invalid character after top-level value")
	}
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		if f, err := val.Float64(); err == nil {
			return Float(f), nil
		}
		return Value{}, fmt.Errorf("invalid json number: %s", val)
	case string:
		return textOrBinary(val), nil
	default:
		return Value{}, fmt.Errorf("unsupported scalar json type %T", v)
	}
}

func textOrBinary(s string) Value {
	if strings.HasPrefix(s, binaryPrefix) {
		if decoded, err := base64.StdEncoding.DecodeString(s[len(binaryPrefix):]); err == nil {
			return Bytes(decoded)
		}
	}
	return Text(s)
}

func valueFromJSONIter(typ simdjson.Type, it *simdjson.Iter) (Value, error) {
	switch typ {
	case simdjson.TypeNull:
		return Null(), nil
	case simdjson.TypeBool:
		v, err := it.Bool()
		if err != nil {
			return Value{}, err
		}
		return Bool(v), nil
	case simdjson.TypeInt:
		v, err := it.Int()
		if err != nil {
			return Value{}, err
		}
		return Int(v), nil
	case simdjson.TypeUint:
		v, err := it.Uint()
		if err != nil {
			return Value{}, err
		}
		if v > math.MaxInt64 {
			return Float(float64(v)), nil
		}
		return Int(int64(v)), nil
	case simdjson.TypeFloat:
		v, err := it.Float()
		if err != nil {
			return Value{}, err
		}
		if v >= math.MinInt64 && v <= math.MaxInt64 && math.Trunc(v) == v {
			return Int(int64(v)), nil
		}
		return Float(v), nil
	case simdjson.TypeString:
		b, err := it.StringBytes()
		if err != nil {
			return Value{}, err
		}
		return textOrBinary(string(b)), nil
	case simdjson.TypeObject:
		obj, err := it.Object(nil)
		if err != nil {
			return Value{}, err
		}
		out := Value{Kind: KindMap}
		var parseErr error
		err = obj.ForEach(func(key []byte, elem simdjson.Iter) {
			if parseErr != nil {
				return
			}
			val, err := valueFromJSONIter(elem.Type(), &elem)
			if err != nil {
				parseErr = err
				return
			}
			out.MapSet(Text(string(key)), val)
		}, nil)
		if err != nil {
			return Value{}, err
		}
		if parseErr != nil {
			return Value{}, parseErr
		}
		return out, nil
	case simdjson.TypeArray:
		arr, err := it.Array(nil)
		if err != nil {
			return Value{}, err
		}
		out := Value{Kind: KindArray}
		iter := arr.Iter()
		for {
			t := iter.Advance()
			if t == simdjson.TypeNone {
				break
			}
			elem := iter
			val, err := valueFromJSONIter(t, &elem)
			if err != nil {
				return Value{}, err
			}
			out.Array = append(out.Array, val)
		}
		return out, nil
	default:
		return Value{}, fmt.Errorf("unsupported json type: %v", typ)
	}
}

// ToJSON renders a dynamic value as a JSON string. Tag framing is
// transparent; byte strings become b64: prefixed strings. Map keys must be
// text, byte string or scalar; composite keys have no JSON form.
func ToJSON(v Value) (string, error) {
	var sb strings.Builder
	if err := WriteJSON(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteJSON appends JSON for v to sb.
func WriteJSON(sb *strings.Builder, v Value) error {
	switch v = v.Untag(); v.Kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return fmt.Errorf("non-finite float has no JSON form")
		}
		sb.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 64))
	case KindText:
		writeJSONString(sb, v.Text)
	case KindBytes:
		sb.WriteByte('"')
		sb.WriteString(binaryPrefix)
		sb.WriteString(base64.StdEncoding.EncodeToString(v.Bytes))
		sb.WriteByte('"')
	case KindArray:
		sb.WriteByte('[')
		for i, elem := range v.Array {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := WriteJSON(sb, elem); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i, entry := range v.Map {
			if i > 0 {
				sb.WriteByte(',')
			}
			key, err := jsonKey(entry.Key)
			if err != nil {
				return err
			}
			writeJSONString(sb, key)
			sb.WriteByte(':')
			if err := WriteJSON(sb, entry.Value); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %d", v.Kind)
	}
	return nil
}

// jsonKey renders a map key as a JSON object key string.
func jsonKey(k Value) (string, error) {
	switch k = k.Untag(); k.Kind {
	case KindText:
		return k.Text, nil
	case KindBytes:
		return binaryPrefix + base64.StdEncoding.EncodeToString(k.Bytes), nil
	case KindInt, KindFloat, KindBool:
		s, _ := k.AsText()
		return s, nil
	default:
		return "", fmt.Errorf("map key of kind %d has no JSON form", k.Kind)
	}
}

func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				sb.WriteString(`\u00`)
				sb.WriteByte(hexDigit(c >> 4))
				sb.WriteByte(hexDigit(c & 0xF))
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}
