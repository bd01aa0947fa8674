package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ParseError reports input that is not exactly one well-formed JSON document.
type ParseError struct {
	// Offset is the byte offset at which parsing failed.
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrEmptyInput is wrapped by the ParseError returned for blank input.
var ErrEmptyInput = errors.New("empty input")

// MaxDepth is the deepest nesting of arrays and objects Parse accepts,
// the same limit encoding/json applies when unmarshaling.
const MaxDepth = 10000

// ErrTooDeep is wrapped by the ParseError returned for input nested deeper
// than MaxDepth.
var ErrTooDeep = fmt.Errorf("exceeded max nesting depth of %d", MaxDepth)

// Parse decodes a single JSON document. Trailing non-whitespace data is
// rejected.
func Parse(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, &ParseError{Err: ErrEmptyInput}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		return Value{}, newParseError(dec, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}

		return Value{}, newParseError(dec, err)
	}

	return v, nil
}

func newParseError(dec *json.Decoder, err error) *ParseError {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return &ParseError{Offset: syn.Offset, Err: err}
	}

	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}

	return &ParseError{Offset: dec.InputOffset(), Err: err}
}

// decodeValue reads the next value. depth is the number of enclosing
// arrays and objects.
func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	return decodeToken(dec, tok, depth)
}

func decodeToken(dec *json.Decoder, tok json.Token, depth int) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String())
	case json.Delim:
		if depth >= MaxDepth {
			return Value{}, ErrTooDeep
		}

		switch t {
		case '[':
			return decodeArray(dec, depth+1)
		case '{':
			return decodeObject(dec, depth+1)
		}
	}

	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	var elems []Value

	for dec.More() {
		v, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}

		elems = append(elems, v)
	}

	// Consume ']'.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return Value{kind: KindArray, arr: elems}, nil
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	o := &object{index: make(map[string]int)}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}

		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key must be a string, got %v", tok)
		}

		v, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}

		o.set(key, v)
	}

	// Consume '}'.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return Value{kind: KindObject, obj: o}, nil
}
