package jsondiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gitoffthelawn/jsonwatch/internal/jsonvalue"
)

func parse(t *testing.T, s string) jsonvalue.Value {
	t.Helper()

	v, err := jsonvalue.Parse([]byte(s))
	require.NoError(t, err)

	return v
}

func diffStrings(t *testing.T, prev, curr string) []Change {
	t.Helper()
	return Diff(parse(t, prev), parse(t, curr))
}

// ---------------------------------------------------------------------------
// No-op diffs
// ---------------------------------------------------------------------------

func TestDiff_IdenticalValuesProduceNoChanges(t *testing.T) {
	for _, doc := range []string{
		`null`, `true`, `0`, `"s"`, `[]`, `{}`,
		`[1, [2, [3, {"a": null}]]]`,
		`{"a": {"b": {"c": [1, 2, {"d": "e"}]}}, "f": false}`,
	} {
		t.Run(doc, func(t *testing.T) {
			v := parse(t, doc)
			assert.Empty(t, Diff(v, v))
		})
	}
}

func TestDiff_EquivalentDocumentsProduceNoChanges(t *testing.T) {
	assert.Empty(t, diffStrings(t, `1.0`, `1`))
	assert.Empty(t, diffStrings(t, `{"a": 1, "b": 2}`, `{"b": 2, "a": 1}`))
	assert.Empty(t, diffStrings(t, `{"x": [1e1]}`, `{"x": [10]}`))
}

// ---------------------------------------------------------------------------
// Scalars
// ---------------------------------------------------------------------------

func TestDiff_ScalarChangeIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{`1`, `2`},
		{`"a"`, `"b"`},
		{`true`, `false`},
	}

	for _, p := range pairs {
		t.Run(p[0]+"/"+p[1], func(t *testing.T) {
			v1, v2 := parse(t, p[0]), parse(t, p[1])

			forward := Diff(v1, v2)
			require.Len(t, forward, 1)
			assert.Equal(t, ChangeModified, forward[0].Type)
			assert.Empty(t, forward[0].Path)
			assert.True(t, jsonvalue.Equal(v1, *forward[0].Old))
			assert.True(t, jsonvalue.Equal(v2, *forward[0].New))

			backward := Diff(v2, v1)
			require.Len(t, backward, 1)
			assert.Equal(t, ChangeModified, backward[0].Type)
			assert.True(t, jsonvalue.Equal(v2, *backward[0].Old))
			assert.True(t, jsonvalue.Equal(v1, *backward[0].New))
		})
	}
}

func TestDiff_NullToValueIsTypeChange(t *testing.T) {
	changes := diffStrings(t, `null`, `0`)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeRetyped, changes[0].Type)
}

// ---------------------------------------------------------------------------
// Objects
// ---------------------------------------------------------------------------

func TestDiff_AddedAndRemovedKeys(t *testing.T) {
	added := diffStrings(t, `{}`, `{"a": 1}`)
	require.Len(t, added, 1)
	assert.Equal(t, ChangeAdded, added[0].Type)
	assert.Equal(t, Path{Key("a")}, added[0].Path)
	assert.Nil(t, added[0].Old)
	require.NotNil(t, added[0].New)
	assert.Equal(t, "1", jsonvalue.Compact(*added[0].New))

	removed := diffStrings(t, `{"a": 1}`, `{}`)
	require.Len(t, removed, 1)
	assert.Equal(t, ChangeRemoved, removed[0].Type)
	assert.Equal(t, Path{Key("a")}, removed[0].Path)
	assert.Nil(t, removed[0].New)
	require.NotNil(t, removed[0].Old)
	assert.Equal(t, "1", jsonvalue.Compact(*removed[0].Old))
}

func TestDiff_SharedKeysFollowOldOrder(t *testing.T) {
	changes := diffStrings(t, `{"b": 1, "a": 2}`, `{"b": 2, "a": 2}`)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeModified, changes[0].Type)
	assert.Equal(t, Path{Key("b")}, changes[0].Path)
}

func TestDiff_DocumentOrder(t *testing.T) {
	prev := `{"z": 1, "m": {"q": 1, "p": [1, 2, 3]}, "gone": true}`
	curr := `{"new1": 0, "m": {"p": [1, 5], "q": 2, "r": null}, "z": 2, "new2": []}`

	changes := diffStrings(t, prev, curr)

	var got []string
	for _, c := range changes {
		got = append(got, string(c.Type)+" "+c.Path.String())
	}

	assert.Equal(t, []string{
		"changed .z",
		"changed .m.q",
		"changed .m.p[1]",
		"removed .m.p[2]",
		"added .m.r",
		"removed .gone",
		"added .new1",
		"added .new2",
	}, got)

	// Same inputs always produce the same sequence.
	assert.Equal(t, Format(changes), Format(diffStrings(t, prev, curr)))
}

// ---------------------------------------------------------------------------
// Arrays
// ---------------------------------------------------------------------------

func TestDiff_ArraysArePositional(t *testing.T) {
	changes := diffStrings(t, `[1, 2]`, `[0, 1, 2]`)
	require.Len(t, changes, 3)

	assert.Equal(t, ChangeModified, changes[0].Type)
	assert.Equal(t, Path{Index(0)}, changes[0].Path)
	assert.Equal(t, ChangeModified, changes[1].Type)
	assert.Equal(t, Path{Index(1)}, changes[1].Path)
	assert.Equal(t, ChangeAdded, changes[2].Type)
	assert.Equal(t, Path{Index(2)}, changes[2].Path)
}

func TestDiff_ArrayShrink(t *testing.T) {
	changes := diffStrings(t, `{"l": [1, 2, 3]}`, `{"l": [1]}`)
	require.Len(t, changes, 2)
	assert.Equal(t, ".l[1]", changes[0].Path.String())
	assert.Equal(t, ".l[2]", changes[1].Path.String())
	assert.Equal(t, ChangeRemoved, changes[0].Type)
	assert.Equal(t, ChangeRemoved, changes[1].Type)
}

// ---------------------------------------------------------------------------
// Type changes
// ---------------------------------------------------------------------------

func TestDiff_TypeChangeDoesNotRecurse(t *testing.T) {
	changes := diffStrings(t, `{"x": [1, 2]}`, `{"x": {"y": 1}}`)
	require.Len(t, changes, 1)

	c := changes[0]
	assert.Equal(t, ChangeRetyped, c.Type)
	assert.Equal(t, Path{Key("x")}, c.Path)
	assert.Equal(t, "[1,2]", jsonvalue.Compact(*c.Old))
	assert.Equal(t, `{"y":1}`, jsonvalue.Compact(*c.New))
}

func TestDiff_RootTypeChange(t *testing.T) {
	changes := diffStrings(t, `[]`, `{}`)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeRetyped, changes[0].Type)
	assert.Equal(t, ".", changes[0].Path.String())
}

// ---------------------------------------------------------------------------
// Path
// ---------------------------------------------------------------------------

func TestPath_String(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want string
	}{
		{"root", nil, "."},
		{"key", Path{Key("a")}, ".a"},
		{"nested", Path{Key("a"), Index(0), Key("b_c")}, ".a[0].b_c"},
		{"index root", Path{Index(3)}, "[3]"},
		{"dash", Path{Key("x-y")}, ".x-y"},
		{"space", Path{Key("a b")}, `["a b"]`},
		{"dot", Path{Key("a.b")}, `["a.b"]`},
		{"empty key", Path{Key("")}, `[""]`},
		{"leading digit", Path{Key("1a")}, `["1a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.path.String())
		})
	}
}

func TestPath_AppendDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = Key("a")

	p1 := base.Append(Key("b"))
	p2 := base.Append(Key("c"))

	assert.Equal(t, ".a.b", p1.String())
	assert.Equal(t, ".a.c", p2.String())
}

// ---------------------------------------------------------------------------
// Summary
// ---------------------------------------------------------------------------

func TestSummary(t *testing.T) {
	tests := []struct {
		name    string
		changes []Change
		want    string
	}{
		{"no changes", nil, "no changes"},
		{"added only", []Change{{Type: ChangeAdded}, {Type: ChangeAdded}}, "+2 added"},
		{
			"mixed",
			[]Change{{Type: ChangeAdded}, {Type: ChangeRemoved}, {Type: ChangeModified}, {Type: ChangeRetyped}},
			"+1 added, -1 removed, ~1 changed, !1 type changed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.changes))
		})
	}
}
