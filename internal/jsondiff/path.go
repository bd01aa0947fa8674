package jsondiff

import (
	"strconv"
	"strings"

	"github.com/Gitoffthelawn/jsonwatch/internal/jsonvalue"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns an object-key segment.
func Key(k string) Segment { return Segment{Key: k} }

// Index returns an array-index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

// Path locates a value within a document. The empty Path is the root.
type Path []Segment

// Append returns a new Path extended by seg. The receiver is never aliased
// by the result.
func (p Path) Append(seg Segment) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg

	return out
}

// String renders p as a locator: keys joined by ".", indices as "[i]", keys
// that are not plain identifiers as ["quoted"], and the root as ".".
func (p Path) String() string {
	if len(p) == 0 {
		return "."
	}

	var b strings.Builder

	for _, seg := range p {
		switch {
		case seg.IsIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
		case isIdentifier(seg.Key):
			b.WriteByte('.')
			b.WriteString(seg.Key)
		default:
			b.WriteByte('[')
			b.WriteString(jsonvalue.Quote(seg.Key))
			b.WriteByte(']')
		}
	}

	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}

	return true
}
