package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/funvibe/langkit/internal/config"
	"github.com/funvibe/langkit/pkg/diag"
	"github.com/funvibe/langkit/pkg/ident"
	"github.com/funvibe/langkit/pkg/scope"
	"github.com/funvibe/langkit/pkg/symbols"
)

type (
	Symbol = symbols.Symbol[Type]
	Arena  = scope.Arena[Symbol, Value]
	Ref    = scope.Ref[Symbol, Value]
)

var (
	ErrPopRoot     = errors.New("cannot pop the root scope")
	ErrUnknownType = errors.New("unknown type")
	ErrUnassigned  = errors.New("variable has no value")
	ErrNotVariable = errors.New("cannot assign to a type")
)

// Runner replays scripts against fresh arenas.
type Runner struct {
	logger  *slog.Logger
	prelude bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger handed to each arena. A nil logger disables
// logging.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithPrelude controls whether the root scope declares the builtin types.
// Scripts may override it.
func WithPrelude(enabled bool) Option {
	return func(r *Runner) {
		r.prelude = enabled
	}
}

// NewRunner creates a runner with the prelude enabled and logging disabled
// unless opts say otherwise.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{prelude: true}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Result is the state a script left behind.
type Result struct {
	Name     string
	Arena    *Arena
	Steps    int
	Failures int

	// Scope is the current scope when the script ended.
	Scope Ref
}

// Run executes s. Step failures and unmet expectations are reported to diags
// as errors and execution continues; the transcript goes to diags as
// messages. Run only returns an error when ctx is done.
func (r *Runner) Run(ctx context.Context, s *Script, diags *diag.Listener[string]) (*Result, error) {
	prelude := r.prelude
	if s.Prelude != nil {
		prelude = *s.Prelude
	}

	logger := r.logger.With("script", s.Name)
	arena := scope.New[Symbol, Value](scope.WithLogger(logger))
	x := &execution{
		ctx:     ctx,
		script:  s,
		cur:     arena.RootRef(),
		diags:   diags,
		logger:  logger,
		prelude: prelude,
		result:  &Result{Name: s.Name, Arena: arena},
	}
	if prelude {
		x.declarePrelude()
	}

	logger.Debug("script started", "steps", len(s.Steps), "prelude", prelude)
	err := x.runSteps("", s.Steps)
	x.result.Scope = x.cur
	logger.Debug("script finished", "steps", x.result.Steps, "failures", x.result.Failures)
	if err != nil {
		return x.result, fmt.Errorf("script %s: %w", s.Name, err)
	}
	return x.result, nil
}

type execution struct {
	ctx     context.Context
	script  *Script
	cur     Ref
	diags   *diag.Listener[string]
	logger  *slog.Logger
	prelude bool
	result  *Result
}

// outcome is what a step observed. Unset has* fields mean the step cannot
// say anything about that aspect.
type outcome struct {
	text      string
	value     string
	hasValue  bool
	state     scope.State
	hasState  bool
	symbol    string
	hasSymbol bool
	err       error
}

func (x *execution) declarePrelude() {
	for _, name := range config.BuiltinTypeNames {
		ty, _ := TypeByName(name)
		id := ident.New(name)
		x.cur.Define(id, symbols.BuiltinType(id, ty))
	}
}

func (x *execution) runSteps(prefix string, steps []Step) error {
	for i := range steps {
		if err := x.ctx.Err(); err != nil {
			return err
		}
		label := strconv.Itoa(i + 1)
		if prefix != "" {
			label = prefix + "." + label
		}
		if err := x.runStep(label, &steps[i]); err != nil {
			return err
		}
	}
	return nil
}

func (x *execution) runStep(label string, step *Step) error {
	x.result.Steps++

	if step.Op() == "block" {
		outer := x.cur
		x.cur = x.cur.Push()
		x.log(label, fmt.Sprintf("block enters %s", x.cur))
		if err := x.runSteps(label, step.Block); err != nil {
			return err
		}
		x.cur = outer
		x.log(label, fmt.Sprintf("block leaves to %s", x.cur))
		return nil
	}

	x.report(label, step, x.exec(step))
	return nil
}

func (x *execution) exec(step *Step) outcome {
	switch step.Op() {
	case "define":
		return x.define(step)
	case "set":
		return x.set(step)
	case "get":
		return x.get(step)
	case "lookup":
		return x.lookup(step)
	case "resolve":
		return x.resolve(step)
	case "add":
		return x.add(step)
	case "push":
		x.cur = x.cur.Push()
		return outcome{text: fmt.Sprintf("push %s (depth %d)", x.cur, x.cur.Depth())}
	case "pop":
		parent, ok := x.cur.Pop()
		if !ok {
			return outcome{err: ErrPopRoot}
		}
		x.cur = parent
		return outcome{text: fmt.Sprintf("pop to %s (depth %d)", x.cur, x.cur.Depth())}
	default:
		return outcome{err: fmt.Errorf("unknown operation %q", step.Op())}
	}
}

func (x *execution) define(step *Step) outcome {
	name := ident.New(step.Define)
	sym := symbols.UntypedVariable[Type](name)
	if step.Type != "" {
		ty, err := x.lookupType(step.Type)
		if err != nil {
			return outcome{err: err}
		}
		sym = symbols.Variable(name, ty)
	}

	prev, redeclared := x.cur.Define(name, sym)
	out := outcome{
		text:      fmt.Sprintf("define %s in %s", sym, x.cur),
		state:     scope.Unassigned,
		hasState:  true,
		symbol:    sym.String(),
		hasSymbol: true,
	}
	if redeclared {
		out.text += fmt.Sprintf(", replacing %s", prev)
	}
	if step.Value == "" {
		return out
	}

	v, err := x.convert(step.Value, sym)
	if err != nil {
		out.err = err
		return out
	}
	if _, _, err := x.cur.Set(name, v); err != nil {
		out.err = err
		return out
	}
	out.text += fmt.Sprintf(" = %s", v)
	out.value, out.hasValue = v.String(), true
	out.state = scope.Assigned
	return out
}

func (x *execution) set(step *Step) outcome {
	name := ident.New(step.Set)
	sym, declared := x.cur.Resolve(name)
	if declared && sym.IsBuiltinType() {
		return outcome{err: notVariable(name)}
	}

	var (
		v   Value
		err error
	)
	if declared {
		v, err = x.convert(step.Value, sym)
	} else {
		v, err = ParseLiteral(step.Value)
	}
	if err != nil {
		return outcome{err: err}
	}

	prev, had, err := x.cur.Set(name, v)
	if err != nil {
		return outcome{err: err, state: scope.Undeclared, hasState: true}
	}
	text := fmt.Sprintf("set %s = %s", name, v)
	if had {
		text += fmt.Sprintf(", was %s", prev)
	}
	return outcome{
		text:      text,
		value:     v.String(),
		hasValue:  true,
		state:     scope.Assigned,
		hasState:  true,
		symbol:    sym.String(),
		hasSymbol: true,
	}
}

func (x *execution) get(step *Step) outcome {
	name := ident.New(step.Get)
	v, ok := x.cur.Get(name)
	if ok {
		return outcome{
			text:     fmt.Sprintf("get %s = %s", name, v),
			value:    v.String(),
			hasValue: true,
			state:    scope.Assigned,
			hasState: true,
		}
	}
	state := x.cur.Lookup(name).State
	return outcome{
		text:     fmt.Sprintf("get %s: %s", name, state),
		state:    state,
		hasState: true,
	}
}

func (x *execution) lookup(step *Step) outcome {
	name := ident.New(step.Lookup)
	b := x.cur.Lookup(name)
	out := outcome{state: b.State, hasState: true}
	switch b.State {
	case scope.Undeclared:
		out.text = fmt.Sprintf("lookup %s: undeclared", name)
	case scope.Unassigned:
		out.text = fmt.Sprintf("lookup %s: unassigned in %s", name, b.Scope)
	default:
		out.text = fmt.Sprintf("lookup %s: assigned in %s = %s", name, b.Scope, b.Value)
		out.value, out.hasValue = b.Value.String(), true
	}
	return out
}

func (x *execution) resolve(step *Step) outcome {
	name := ident.New(step.Resolve)
	sym, at, ok := x.cur.ResolveWithScope(name)
	if !ok {
		return outcome{
			text:     fmt.Sprintf("resolve %s: undeclared", name),
			state:    scope.Undeclared,
			hasState: true,
		}
	}
	return outcome{
		text:      fmt.Sprintf("resolve %s: %s in %s (depth %d)", name, sym, at, at.Depth()),
		state:     at.Memory(name).State,
		hasState:  true,
		symbol:    sym.String(),
		hasSymbol: true,
	}
}

func (x *execution) add(step *Step) outcome {
	left, err := x.operand(step.Left)
	if err != nil {
		return outcome{err: err}
	}
	right, err := x.operand(step.Right)
	if err != nil {
		return outcome{err: err}
	}

	var op AddOperator
	types, ok := op.InferTypes(left.TypeOf(), right.TypeOf())
	if !ok {
		return outcome{err: fmt.Errorf("cannot add %s and %s", left.TypeOf(), right.TypeOf())}
	}
	sum, err := op.Apply(types.Result, left.Coerce(types.Left), right.Coerce(types.Right))
	if err != nil {
		return outcome{err: err}
	}

	name := ident.New(step.Add)
	sym, visible := x.cur.Resolve(name)
	if visible {
		if sym.IsBuiltinType() {
			return outcome{err: notVariable(name)}
		}
		if sum, err = x.fit(sum, sym); err != nil {
			return outcome{err: err}
		}
	} else {
		sym = symbols.Variable(name, types.Result)
		x.cur.Define(name, sym)
	}
	if _, _, err := x.cur.Set(name, sum); err != nil {
		return outcome{err: err}
	}

	return outcome{
		text:      fmt.Sprintf("add %s = %s + %s = %s", name, step.Left, step.Right, sum),
		value:     sum.String(),
		hasValue:  true,
		state:     scope.Assigned,
		hasState:  true,
		symbol:    sym.String(),
		hasSymbol: true,
	}
}

func notVariable(name ident.Identifier) error {
	return fmt.Errorf("%w: %s is a type, not a variable", ErrNotVariable, name)
}

// operand evaluates a variable reference or, failing that, a literal.
func (x *execution) operand(text string) (Value, error) {
	name := ident.New(text)
	b := x.cur.Lookup(name)
	switch b.State {
	case scope.Assigned:
		return b.Value, nil
	case scope.Unassigned:
		return Value{}, fmt.Errorf("%w: %s", ErrUnassigned, name)
	}
	return ParseLiteral(text)
}

func (x *execution) lookupType(name string) (Type, error) {
	if !x.prelude {
		ty, ok := TypeByName(name)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownType, name)
		}
		return ty, nil
	}
	sym, ok := x.cur.Resolve(ident.New(name))
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	if !sym.IsBuiltinType() {
		return 0, fmt.Errorf("%w: %s is a variable, not a type", ErrUnknownType, name)
	}
	return sym.Type, nil
}

func (x *execution) convert(literal string, sym Symbol) (Value, error) {
	v, err := ParseLiteral(literal)
	if err != nil {
		return Value{}, err
	}
	return x.fit(v, sym)
}

// fit coerces v to sym's type; untyped symbols accept any value.
func (x *execution) fit(v Value, sym Symbol) (Value, error) {
	ty, ok := sym.TypeOf()
	if !ok {
		return v, nil
	}
	out, err := ConvertTo(v, ty)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", sym.Name, err)
	}
	return out, nil
}

func (x *execution) report(label string, step *Step, out outcome) {
	head := step.Op()
	if target := step.Target(); target != "" {
		head += " " + target
	}
	wantErr := step.Expect != nil && step.Expect.Error != ""
	switch {
	case out.err == nil:
		x.log(label, out.text)
	case wantErr:
		x.log(label, fmt.Sprintf("%s: error: %v", head, out.err))
	default:
		x.fail(label, fmt.Sprintf("%s: %v", head, out.err))
	}
	for _, msg := range check(step.Expect, out) {
		x.fail(label, msg)
	}
}

func check(e *Expect, out outcome) []string {
	if e == nil {
		return nil
	}
	var fails []string
	if e.Error != "" {
		switch {
		case out.err == nil:
			fails = append(fails, fmt.Sprintf("expected error containing %q, step succeeded", e.Error))
		case !strings.Contains(out.err.Error(), e.Error):
			fails = append(fails, fmt.Sprintf("error %q does not contain %q", out.err, e.Error))
		}
	}
	if e.Value != nil {
		switch {
		case !out.hasValue:
			fails = append(fails, fmt.Sprintf("expected value %s, got none", *e.Value))
		case out.value != *e.Value:
			fails = append(fails, fmt.Sprintf("expected value %s, got %s", *e.Value, out.value))
		}
	}
	if e.State != "" {
		switch {
		case !out.hasState:
			fails = append(fails, fmt.Sprintf("expected state %s, step reports none", e.State))
		case out.state.String() != e.State:
			fails = append(fails, fmt.Sprintf("expected state %s, got %s", e.State, out.state))
		}
	}
	if e.Symbol != "" {
		switch {
		case !out.hasSymbol:
			fails = append(fails, fmt.Sprintf("expected symbol %s, got none", e.Symbol))
		case out.symbol != e.Symbol:
			fails = append(fails, fmt.Sprintf("expected symbol %s, got %s", e.Symbol, out.symbol))
		}
	}
	return fails
}

func (x *execution) log(label, text string) {
	x.diags.Log(fmt.Sprintf("%s %s: %s", x.script.Name, label, text))
}

func (x *execution) fail(label, msg string) {
	x.result.Failures++
	x.logger.Debug("step failed", "step", label, "error", msg)
	x.diags.Error(fmt.Sprintf("%s %s: %s", x.script.Name, label, msg))
}
