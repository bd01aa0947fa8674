// Package jsonvalue provides an immutable, order-preserving model of JSON
// documents. Objects keep their keys in document order so that anything
// derived from a Value (diffs, rendered output) is deterministic.
package jsonvalue

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant held by a Value.
type Kind int

// JSON value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "boolean",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// IsContainer reports whether values of kind k hold other values.
func (k Kind) IsContainer() bool {
	return k == KindArray || k == KindObject
}

// Value is a single JSON value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	num  decimal.Decimal
	lit  string // number literal as written, or string payload
	arr  []Value
	obj  *object
}

type object struct {
	keys  []string
	index map[string]int
	vals  []Value
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a JSON string.
func String(s string) Value { return Value{kind: KindString, lit: s} }

// Number parses a JSON number literal.
func Number(literal string) (Value, error) {
	d, err := decimal.NewFromString(literal)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %q: %w", literal, err)
	}

	return Value{kind: KindNumber, num: d, lit: literal}, nil
}

// Int returns a JSON number holding n.
func Int(n int64) Value {
	d := decimal.NewFromInt(n)
	return Value{kind: KindNumber, num: d, lit: d.String()}
}

// Array returns a JSON array of the given elements.
func Array(elems ...Value) Value {
	arr := make([]Value, len(elems))
	copy(arr, elems)

	return Value{kind: KindArray, arr: arr}
}

// Member is a key/value pair used to build objects.
type Member struct {
	Key   string
	Value Value
}

// Object returns a JSON object with members in the given order. A repeated
// key keeps its first position and takes the last value.
func Object(members ...Member) Value {
	o := &object{index: make(map[string]int, len(members))}
	for _, m := range members {
		o.set(m.Key, m.Value)
	}

	return Value{kind: KindObject, obj: o}
}

func (o *object) set(key string, v Value) {
	if i, ok := o.index[key]; ok {
		o.vals[i] = v
		return
	}

	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// BoolValue returns the payload of a boolean.
func (v Value) BoolValue() bool { return v.b }

// StringValue returns the payload of a string.
func (v Value) StringValue() string {
	if v.kind != KindString {
		return ""
	}

	return v.lit
}

// Decimal returns the numeric value of a number.
func (v Value) Decimal() decimal.Decimal { return v.num }

// Literal returns the number literal as it appeared in the source.
func (v Value) Literal() string {
	if v.kind != KindNumber {
		return ""
	}

	return v.lit
}

// Len returns the number of elements of an array or members of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj.keys)
	default:
		return 0
	}
}

// Index returns the i-th element of an array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}

	return v.arr[i], true
}

// Get returns the member named key of an object.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}

	i, ok := v.obj.index[key]
	if !ok {
		return Value{}, false
	}

	return v.obj.vals[i], true
}

// Keys returns the object keys in insertion order. The returned slice must
// not be modified.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}

	return v.obj.keys
}

// Equal reports whether a and b are structurally equal. Arrays compare
// element by element; objects compare by key set regardless of key order;
// numbers compare by numeric value.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num.Equal(b.num)
	case KindString:
		return a.lit == b.lit
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}

		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}

		return true
	case KindObject:
		if len(a.obj.keys) != len(b.obj.keys) {
			return false
		}

		for i, k := range a.obj.keys {
			bv, ok := b.Get(k)
			if !ok || !Equal(a.obj.vals[i], bv) {
				return false
			}
		}

		return true
	}

	return false
}

// Equal is shorthand for Equal(v, other).
func (v Value) Equal(other Value) bool { return Equal(v, other) }
