package script

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/langkit/pkg/diag"
	"github.com/funvibe/langkit/pkg/ident"
	"github.com/funvibe/langkit/pkg/scope"
)

type capture struct {
	out, errOut bytes.Buffer
	diags       *diag.Listener[string]
}

func newCapture() *capture {
	c := &capture{}
	c.diags = diag.NewListener[string](&c.out, &c.errOut, diag.WithColor(false))
	return c
}

func (c *capture) flush(t *testing.T) (stdout, stderr []string) {
	t.Helper()
	_, _, err := c.diags.Flush()
	require.NoError(t, err)
	return lines(c.out.String()), lines(c.errOut.String())
}

func lines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func newTextLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func mustParse(t *testing.T, content string) *Script {
	t.Helper()
	s, err := ParseScript([]byte(content), "test.yaml")
	require.NoError(t, err)
	return s
}

func TestRunShadowingTranscript(t *testing.T) {
	s, err := LoadScript(filepath.Join("testdata", "shadowing.yaml"))
	require.NoError(t, err)

	c := newCapture()
	res, err := NewRunner().Run(context.Background(), s, c.diags)
	require.NoError(t, err)

	assert.Equal(t, 8, res.Steps, "the block counts as a step")
	assert.Zero(t, res.Failures)
	assert.Equal(t, res.Arena.Root(), res.Scope.ID(), "block restores the enclosing scope")
	assert.Equal(t, 2, res.Arena.Len())

	stdout, stderr := c.flush(t)
	assert.Empty(t, stderr)
	assert.Equal(t, []string{
		"shadowing 1: define x:int in scope#0",
		"shadowing 2: set x = 16",
		"shadowing 3: block enters scope#1",
		"shadowing 3.1: define x:string in scope#1",
		"shadowing 3.2: get x: unassigned",
		"shadowing 3.3: set x = inner",
		"shadowing 3.4: resolve x: x:string in scope#1 (depth 1)",
		"shadowing 3: block leaves to scope#0",
		"shadowing 4: get x = 16",
	}, stdout)

	// the inner declaration outlives the block
	inner := res.Arena.Scopes()[1]
	v, ok := res.Arena.Get(inner, ident.New("x"))
	require.True(t, ok)
	assert.Equal(t, StringValue("inner"), v)
}

func TestRunArithmetic(t *testing.T) {
	s, err := LoadScript(filepath.Join("testdata", "arithmetic.yaml"))
	require.NoError(t, err)

	c := newCapture()
	res, err := NewRunner().Run(context.Background(), s, c.diags)
	require.NoError(t, err)

	_, stderr := c.flush(t)
	assert.Empty(t, stderr)
	assert.Zero(t, res.Failures)

	v, ok := res.Scope.Get(ident.New("a"))
	require.True(t, ok)
	assert.Equal(t, IntValue(7), v)

	sym, ok := res.Scope.Resolve(ident.New("greeting"))
	require.True(t, ok)
	assert.Equal(t, "greeting:string", sym.String())
}

func TestRunReportsFailuresAndContinues(t *testing.T) {
	s := mustParse(t, `
name: failing
steps:
  - set: y
    value: "1"
  - pop: true
  - get: y
    expect: {state: assigned}
  - set: y
    value: "2"
    expect: {error: missing symbol}
  - define: y
    type: int
  - get: y
    expect: {state: unassigned}
`)

	c := newCapture()
	res, err := NewRunner().Run(context.Background(), s, c.diags)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Steps)
	assert.Equal(t, 3, res.Failures)
	assert.Equal(t, 3, c.diags.Count(diag.Error))

	stdout, stderr := c.flush(t)
	assert.Equal(t, []string{
		"error: failing 1: set y: attempt to set memory for missing symbol: y",
		"error: failing 2: pop: cannot pop the root scope",
		"error: failing 3: expected state assigned, got undeclared",
	}, stderr)
	assert.Contains(t, stdout, "failing 4: set y: error: attempt to set memory for missing symbol: y")
	assert.Contains(t, stdout, "failing 6: get y: unassigned")
}

func TestRunTypeErrors(t *testing.T) {
	s := mustParse(t, `
name: types
steps:
  - define: f
    type: float
  - set: f
    value: '"text"'
    expect: {error: "cannot use string value text as float"}
  - define: v
  - define: w
    type: v
    expect: {error: "v is a variable, not a type"}
  - define: w
    type: complex
    expect: {error: "unknown type: complex"}
  - define: u
    type: int
  - add: sum
    left: u
    right: "1"
    expect: {error: "variable has no value: u"}
  - add: bad
    left: '"s"'
    right: "1"
    expect: {error: "cannot add string and int"}
  - set: v
    value: '"anything"'
    expect: {value: anything, symbol: "v:<null>"}
`)

	c := newCapture()
	res, err := NewRunner().Run(context.Background(), s, c.diags)
	require.NoError(t, err)

	_, stderr := c.flush(t)
	assert.Empty(t, stderr)
	assert.Zero(t, res.Failures)
}

func TestRunRefusesAssignmentToTypes(t *testing.T) {
	s := mustParse(t, `
name: typenames
steps:
  - set: int
    value: "3"
    expect: {error: "int is a type, not a variable"}
  - lookup: int
    expect: {state: unassigned}
  - add: float
    left: "1"
    right: "2"
    expect: {error: "float is a type, not a variable"}
  - lookup: float
    expect: {state: unassigned}
  - block:
      - define: int
        type: string
      - set: int
        value: '"shadowed"'
        expect: {value: shadowed, symbol: "int:string"}
  - define: n
    type: int
    expect: {symbol: "n:int"}
`)

	c := newCapture()
	res, err := NewRunner().Run(context.Background(), s, c.diags)
	require.NoError(t, err)

	_, stderr := c.flush(t)
	assert.Empty(t, stderr)
	assert.Zero(t, res.Failures)
}

func TestRunAssignmentToTypeFails(t *testing.T) {
	s := mustParse(t, `
steps:
  - set: bool
    value: "true"
`)

	c := newCapture()
	res, err := NewRunner().Run(context.Background(), s, c.diags)
	require.NoError(t, err)

	_, stderr := c.flush(t)
	assert.Equal(t, []string{
		"error: test 1: set bool: cannot assign to a type: bool is a type, not a variable",
	}, stderr)
	assert.Equal(t, 1, res.Failures)

	b := res.Scope.Lookup(ident.New("bool"))
	assert.Equal(t, scope.Unassigned, b.State)
}

func TestRunIntOverflow(t *testing.T) {
	s := mustParse(t, `
name: overflow
steps:
  - define: n
    type: int
    value: "9223372036854775807"
  - add: m
    left: n
    right: "1"
    expect: {error: "int overflow in 9223372036854775807 + 1"}
  - lookup: m
    expect: {state: undeclared}
`)

	c := newCapture()
	res, err := NewRunner().Run(context.Background(), s, c.diags)
	require.NoError(t, err)

	_, stderr := c.flush(t)
	assert.Empty(t, stderr)
	assert.Zero(t, res.Failures)
}

func TestRunUnmetExpectations(t *testing.T) {
	s := mustParse(t, `
name: unmet
steps:
  - define: x
    type: int
    value: "1"
    expect: {value: "2", symbol: "x:float", error: boom}
  - push: true
    expect: {value: "1", state: assigned, symbol: x}
`)

	c := newCapture()
	res, err := NewRunner().Run(context.Background(), s, c.diags)
	require.NoError(t, err)

	_, stderr := c.flush(t)
	assert.Equal(t, []string{
		`error: unmet 1: expected error containing "boom", step succeeded`,
		"error: unmet 1: expected value 2, got 1",
		"error: unmet 1: expected symbol x:float, got x:int",
		"error: unmet 2: expected value 1, got none",
		"error: unmet 2: expected state assigned, step reports none",
		"error: unmet 2: expected symbol x, got none",
	}, stderr)
	assert.Equal(t, 6, res.Failures)
}

func TestRunPrelude(t *testing.T) {
	content := `
steps:
  - resolve: int
  - define: n
    type: int
`
	t.Run("enabled", func(t *testing.T) {
		c := newCapture()
		res, err := NewRunner().Run(context.Background(), mustParse(t, content), c.diags)
		require.NoError(t, err)

		names := res.Arena.Names(res.Arena.Root())
		require.Len(t, names, 5)
		assert.Equal(t, "int", names[0].Name())
		stdout, _ := c.flush(t)
		assert.Equal(t, "test 1: resolve int: int:int in scope#0 (depth 0)", stdout[0])
	})

	t.Run("disabled by option", func(t *testing.T) {
		c := newCapture()
		res, err := NewRunner(WithPrelude(false)).Run(context.Background(), mustParse(t, content), c.diags)
		require.NoError(t, err)
		assert.Zero(t, res.Failures, "types still resolve without the prelude")

		names := res.Arena.Names(res.Arena.Root())
		require.Len(t, names, 1)
		assert.Equal(t, "n", names[0].Name())
		stdout, _ := c.flush(t)
		assert.Equal(t, "test 1: resolve int: undeclared", stdout[0])
	})

	t.Run("script overrides option", func(t *testing.T) {
		s := mustParse(t, "prelude: true\n"+content)
		c := newCapture()
		res, err := NewRunner(WithPrelude(false)).Run(context.Background(), s, c.diags)
		require.NoError(t, err)
		assert.True(t, res.Arena.IsDefinedLocally(res.Arena.Root(), ident.New("float")))
	})
}

func TestRunPushPopAndLookup(t *testing.T) {
	s := mustParse(t, `
name: chain
steps:
  - define: x
    value: "1"
  - push: true
  - push: true
  - lookup: x
    expect: {state: assigned, value: "1"}
  - set: x
    value: "2"
  - pop: true
  - pop: true
  - lookup: x
    expect: {value: "2"}
  - lookup: nope
    expect: {state: undeclared}
`)

	c := newCapture()
	res, err := NewRunner(WithPrelude(false)).Run(context.Background(), s, c.diags)
	require.NoError(t, err)
	assert.Zero(t, res.Failures)
	assert.Equal(t, 3, res.Arena.Len())
	assert.Equal(t, res.Arena.Root(), res.Scope.ID())

	stdout, _ := c.flush(t)
	assert.Equal(t, []string{
		"chain 1: define x:<null> in scope#0 = 1",
		"chain 2: push scope#1 (depth 1)",
		"chain 3: push scope#2 (depth 2)",
		"chain 4: lookup x: assigned in scope#0 = 1",
		"chain 5: set x = 2, was 1",
		"chain 6: pop to scope#1 (depth 1)",
		"chain 7: pop to scope#0 (depth 0)",
		"chain 8: lookup x: assigned in scope#0 = 2",
		"chain 9: lookup nope: undeclared",
	}, stdout)
}

func TestRunRedeclarationResetsSlot(t *testing.T) {
	s := mustParse(t, `
name: redeclare
steps:
  - define: x
    type: int
    value: "1"
  - define: x
    type: string
  - get: x
    expect: {state: unassigned}
`)
	c := newCapture()
	res, err := NewRunner().Run(context.Background(), s, c.diags)
	require.NoError(t, err)
	assert.Zero(t, res.Failures)

	stdout, _ := c.flush(t)
	assert.Equal(t, "redeclare 2: define x:string in scope#0, replacing x:int", stdout[1])
}

func TestRunStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newCapture()
	res, err := NewRunner().Run(ctx, mustParse(t, "steps:\n  - push: true\n"), c.diags)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Steps)
	assert.Zero(t, c.diags.Len())
}

func TestRunLogsToLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newTextLogger(&buf)

	c := newCapture()
	_, err := NewRunner(WithLogger(logger)).Run(context.Background(), mustParse(t, "steps:\n  - define: x\n"), c.diags)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "script started")
	assert.Contains(t, buf.String(), "symbol declared")
	assert.Contains(t, buf.String(), "script=test")
}
