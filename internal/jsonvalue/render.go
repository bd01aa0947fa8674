package jsonvalue

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// MarshalJSON encodes v as compact JSON with object keys in insertion order
// and numbers as originally written.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	writeCompact(&buf, v)

	return buf.Bytes(), nil
}

// Compact renders v as single-line JSON.
func Compact(v Value) string {
	var buf bytes.Buffer
	writeCompact(&buf, v)

	return buf.String()
}

// Pretty renders v as JSON indented by two spaces.
func Pretty(v Value) string {
	var compact, out bytes.Buffer
	writeCompact(&compact, v)

	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return compact.String()
	}

	return out.String()
}

func writeCompact(buf *bytes.Buffer, v Value) {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(v.lit)
	case KindString:
		writeString(buf, v.lit)
	case KindArray:
		buf.WriteByte('[')

		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}

			writeCompact(buf, e)
		}

		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')

		for i, k := range v.obj.keys {
			if i > 0 {
				buf.WriteByte(',')
			}

			writeString(buf, k)
			buf.WriteByte(':')
			writeCompact(buf, v.obj.vals[i])
		}

		buf.WriteByte('}')
	}
}

// writeString writes s as a JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)

	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
}

// Quote returns s as a JSON string literal.
func Quote(s string) string {
	var buf bytes.Buffer
	writeString(&buf, s)

	return buf.String()
}
