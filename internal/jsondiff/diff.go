// Package jsondiff computes and renders structural differences between two
// JSON documents.
//
// Arrays are compared by position only: an element inserted at the front of
// an array reports every following index as changed plus one addition at the
// end. No edit-distance alignment is attempted, which keeps Diff linear in
// the size of the documents.
package jsondiff

import (
	"fmt"
	"strings"

	"github.com/Gitoffthelawn/jsonwatch/internal/jsonvalue"
)

// ChangeType represents the type of change detected.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "changed"
	ChangeRetyped  ChangeType = "type-changed"
)

// Symbol returns the single-character marker used in text output.
func (t ChangeType) Symbol() string {
	switch t {
	case ChangeAdded:
		return "+"
	case ChangeRemoved:
		return "-"
	case ChangeModified:
		return "~"
	case ChangeRetyped:
		return "!"
	default:
		return "?"
	}
}

// Change is a single structural difference at Path. Old is nil for
// additions, New is nil for removals; both are set otherwise.
type Change struct {
	Path Path
	Type ChangeType
	Old  *jsonvalue.Value
	New  *jsonvalue.Value
}

// Diff compares prev and curr and returns their differences in document
// order: parents before children, object keys in the order of prev followed
// by keys only present in curr, array indices ascending.
func Diff(prev, curr jsonvalue.Value) []Change {
	var changes []Change
	diffValue(nil, prev, curr, &changes)

	return changes
}

func diffValue(path Path, prev, curr jsonvalue.Value, out *[]Change) {
	if prev.Kind() != curr.Kind() {
		*out = append(*out, Change{Path: path, Type: ChangeRetyped, Old: ptr(prev), New: ptr(curr)})
		return
	}

	switch prev.Kind() {
	case jsonvalue.KindObject:
		diffObject(path, prev, curr, out)
	case jsonvalue.KindArray:
		diffArray(path, prev, curr, out)
	case jsonvalue.KindNull, jsonvalue.KindBool, jsonvalue.KindNumber, jsonvalue.KindString:
		if !jsonvalue.Equal(prev, curr) {
			*out = append(*out, Change{Path: path, Type: ChangeModified, Old: ptr(prev), New: ptr(curr)})
		}
	}
}

func diffObject(path Path, prev, curr jsonvalue.Value, out *[]Change) {
	for _, k := range prev.Keys() {
		ov, _ := prev.Get(k)

		nv, ok := curr.Get(k)
		if !ok {
			*out = append(*out, Change{Path: path.Append(Key(k)), Type: ChangeRemoved, Old: ptr(ov)})
			continue
		}

		diffValue(path.Append(Key(k)), ov, nv, out)
	}

	for _, k := range curr.Keys() {
		if _, ok := prev.Get(k); ok {
			continue
		}

		nv, _ := curr.Get(k)
		*out = append(*out, Change{Path: path.Append(Key(k)), Type: ChangeAdded, New: ptr(nv)})
	}
}

func diffArray(path Path, prev, curr jsonvalue.Value, out *[]Change) {
	shared := min(prev.Len(), curr.Len())

	for i := 0; i < shared; i++ {
		ov, _ := prev.Index(i)
		nv, _ := curr.Index(i)
		diffValue(path.Append(Index(i)), ov, nv, out)
	}

	for i := shared; i < prev.Len(); i++ {
		ov, _ := prev.Index(i)
		*out = append(*out, Change{Path: path.Append(Index(i)), Type: ChangeRemoved, Old: ptr(ov)})
	}

	for i := shared; i < curr.Len(); i++ {
		nv, _ := curr.Index(i)
		*out = append(*out, Change{Path: path.Append(Index(i)), Type: ChangeAdded, New: ptr(nv)})
	}
}

func ptr(v jsonvalue.Value) *jsonvalue.Value { return &v }

// Summary returns a human-readable one-line summary.
func Summary(changes []Change) string {
	var added, removed, modified, retyped int

	for _, c := range changes {
		switch c.Type {
		case ChangeAdded:
			added++
		case ChangeRemoved:
			removed++
		case ChangeModified:
			modified++
		case ChangeRetyped:
			retyped++
		}
	}

	if len(changes) == 0 {
		return "no changes"
	}

	parts := make([]string, 0, 4)

	if added > 0 {
		parts = append(parts, fmt.Sprintf("+%d added", added))
	}

	if removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d removed", removed))
	}

	if modified > 0 {
		parts = append(parts, fmt.Sprintf("~%d changed", modified))
	}

	if retyped > 0 {
		parts = append(parts, fmt.Sprintf("!%d type changed", retyped))
	}

	return strings.Join(parts, ", ")
}
