package jsonwatch_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gitoffthelawn/jsonwatch/pkg/jsonwatch"
)

// seqSource returns its documents in order, then repeats the last one.
type seqSource struct {
	mu   sync.Mutex
	docs []string
	errs map[int]error
	n    int
}

func (s *seqSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.n
	s.n++

	if err, ok := s.errs[i]; ok {
		return nil, err
	}

	if i >= len(s.docs) {
		i = len(s.docs) - 1
	}

	return []byte(s.docs[i]), nil
}

func (s *seqSource) String() string { return "seq" }

// ---------------------------------------------------------------------------
// Diff
// ---------------------------------------------------------------------------

func TestDiff_NoChanges(t *testing.T) {
	result, err := jsonwatch.Diff([]byte(`{"a":1,"b":[true]}`), []byte(`{"b":[true],"a":1}`))
	require.NoError(t, err)

	assert.False(t, result.Changed())
	assert.Empty(t, result.Changes)
	assert.Empty(t, result.Lines)
	assert.Equal(t, "no changes", result.Summary)
}

func TestDiff_Changes(t *testing.T) {
	result, err := jsonwatch.Diff(
		[]byte(`{"name":"web","ports":[80],"tls":false}`),
		[]byte(`{"name":"web","ports":[80,443],"tls":"yes"}`),
	)
	require.NoError(t, err)
	require.True(t, result.Changed())
	require.Len(t, result.Changes, 2)

	assert.Equal(t, ".ports[1]", result.Changes[0].Path)
	assert.Equal(t, "added", result.Changes[0].Op)
	assert.Empty(t, result.Changes[0].Old)
	assert.Equal(t, "443", result.Changes[0].New)
	assert.Equal(t, "+ .ports[1]: 443", result.Changes[0].String())

	assert.Equal(t, ".tls", result.Changes[1].Path)
	assert.Equal(t, "type-changed", result.Changes[1].Op)
	assert.Equal(t, "false", result.Changes[1].Old)
	assert.Equal(t, `"yes"`, result.Changes[1].New)

	assert.Equal(t, []string{"+ .ports[1]: 443", `! .tls: false -> "yes"`}, result.Lines)
	assert.Equal(t, "+1 added, !1 type changed", result.Summary)
}

func TestDiff_JSONFormat(t *testing.T) {
	result, err := jsonwatch.Diff([]byte(`{"a":1}`), []byte(`{}`), jsonwatch.WithFormat("json"))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"path":".a","op":"removed","old":1}`}, result.Lines)
}

func TestDiff_YAMLInput(t *testing.T) {
	result, err := jsonwatch.Diff([]byte("a: 1\n"), []byte("a: 2\n"), jsonwatch.WithInput(jsonwatch.InputYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"~ .a: 1 -> 2"}, result.Lines)
}

func TestDiff_Errors(t *testing.T) {
	_, err := jsonwatch.Diff([]byte(`{`), []byte(`{}`))
	var parseErr *jsonwatch.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "previous document")

	_, err = jsonwatch.Diff([]byte(`{}`), []byte(``))
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "current document")

	_, err = jsonwatch.Diff([]byte(`{}`), []byte(`{}`), jsonwatch.WithFormat("html"))
	assert.ErrorContains(t, err, "unsupported output format")

	_, err = jsonwatch.Diff([]byte(`{}`), []byte(`{}`), jsonwatch.WithInput("toml"))
	assert.ErrorContains(t, err, "unsupported input format")
}

// ---------------------------------------------------------------------------
// Watch
// ---------------------------------------------------------------------------

func TestWatch_OnChangeAndOutput(t *testing.T) {
	src := &seqSource{docs: []string{`{"n":1}`, `{"n":1}`, `{"n":2}`, `{"n":2,"m":0}`}}

	var (
		mu   sync.Mutex
		seen [][]jsonwatch.Change
		out  bytes.Buffer
	)

	err := jsonwatch.Watch(context.Background(), src,
		jsonwatch.WithInterval(5*time.Millisecond),
		jsonwatch.WithOutput(&out),
		jsonwatch.WithoutDate(),
		jsonwatch.WithMaxChanges(2),
		jsonwatch.WithOnChange(func(c []jsonwatch.Change) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, c)
		}),
	)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "~ .n: 1 -> 2", seen[0][0].String())
	assert.Equal(t, "+ .m: 0", seen[1][0].String())
	assert.Equal(t, "{\n  \"n\": 1\n}\n~ .n: 1 -> 2\n+ .m: 0\n", out.String())
}

func TestWatch_OnError(t *testing.T) {
	boom := errors.New("boom")
	src := &seqSource{
		docs: []string{`[1]`, `[1]`, `[2]`},
		errs: map[int]error{1: boom},
	}

	var errs []error

	err := jsonwatch.Watch(context.Background(), src,
		jsonwatch.WithInterval(5*time.Millisecond),
		jsonwatch.WithMaxChanges(1),
		jsonwatch.WithOnError(func(err error) { errs = append(errs, err) }),
	)
	require.NoError(t, err)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
}

func TestWatch_FailingOutput(t *testing.T) {
	src := &seqSource{docs: []string{`{}`}}

	err := jsonwatch.Watch(context.Background(), src,
		jsonwatch.WithInterval(5*time.Millisecond),
		jsonwatch.WithOutput(failingWriter{}),
	)

	var sinkErr *jsonwatch.SinkError
	require.ErrorAs(t, err, &sinkErr)
	assert.Contains(t, err.Error(), "watching seq")
}

func TestWatch_Cancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := jsonwatch.Watch(ctx, &seqSource{docs: []string{`{}`}}, jsonwatch.WithInterval(5*time.Millisecond))
	assert.NoError(t, err)
}

func TestWatch_InvalidOptions(t *testing.T) {
	ctx := context.Background()

	assert.ErrorContains(t, jsonwatch.Watch(ctx, nil), "source must not be nil")
	assert.ErrorContains(t, jsonwatch.Watch(ctx, jsonwatch.File("x"), jsonwatch.WithInterval(0)), "interval must be positive")
	assert.ErrorContains(t, jsonwatch.Watch(ctx, jsonwatch.File("x"), jsonwatch.WithFormat("xml")), "unsupported output format")
}

func TestWatch_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"v":1}`), 0o600))

	trigger := make(chan struct{}, 1)

	var got []jsonwatch.Change

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The interval is too long to matter: the second poll only happens
	// because of the trigger.
	go func() {
		time.Sleep(100 * time.Millisecond)

		if err := os.WriteFile(p, []byte(`{"v":2}`), 0o600); err == nil {
			trigger <- struct{}{}
		}
	}()

	err := jsonwatch.Watch(ctx, jsonwatch.File(p),
		jsonwatch.WithInterval(time.Hour),
		jsonwatch.WithTrigger(trigger),
		jsonwatch.WithMaxChanges(1),
		jsonwatch.WithOnChange(func(c []jsonwatch.Change) { got = c }),
		jsonwatch.WithOnError(func(err error) { t.Errorf("unexpected poll error: %v", err) }),
		jsonwatch.WithLogger(nil),
	)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "~ .v: 1 -> 2", got[0].String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }
