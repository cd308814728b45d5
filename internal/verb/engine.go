package verb

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	// ErrUnknownVerb is returned when an assertion verb is not registered on
	// the Engine
	ErrUnknownVerb = errors.New("unknown assertion verb")
	// ErrExpectedArity is returned when a verb receives the wrong number of
	// expected values
	ErrExpectedArity = errors.New("wrong number of expected values")
)

// Func runs a single comparison of a subject value against the expected
// values. Most verbs take exactly one expected value, some (e.g. "to be nil")
// take none.
type Func func(ctx context.Context, subject any, expected []any) error

// Engine is a registry of assertion verbs. The zero value is not usable, use
// New to get an Engine with the default verbs registered.
type Engine struct {
	mu    sync.RWMutex
	verbs map[string]Func
	cel   *celCache
}

// New returns an Engine with the default verbs registered
func New() *Engine {
	e := &Engine{
		verbs: make(map[string]Func),
		cel:   newCELCache(),
	}
	e.Add("to equal", unary(toEqual))
	e.Add("not to equal", unary(negate("to equal", toEqual)))
	e.Add("to be", unary(toBe))
	e.Add("not to be", unary(negate("to be", toBe)))
	e.Add("to be nil", nullary(toBeNil))
	e.Add("not to be nil", nullary(func(subject any) error {
		if isNil(subject) {
			return errors.New("expected value not to be nil")
		}
		return nil
	}))
	e.Add("to contain", unary(toContain))
	e.Add("not to contain", unary(negate("to contain", toContain)))
	e.Add("to match", unary(toMatch))
	e.Add("to have length", unary(toHaveLength))
	e.Add("to satisfy", e.toSatisfy)
	return e
}

// Add registers (or replaces) a verb on the Engine
func (e *Engine) Add(name string, fn Func) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.verbs[name] = fn
}

// Verbs returns the names of every registered verb, sorted
func (e *Engine) Verbs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.verbs))
	for name := range e.verbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Assert runs the verb with the given name against the subject value
func (e *Engine) Assert(ctx context.Context, subject any, name string, expected ...any) error {
	e.mu.RLock()
	fn, ok := e.verbs[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrUnknownVerb, name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, subject, expected)
}

// CmpOptions returns the go-cmp options used for structural equality: empty
// and nil collections are equal, and unexported fields are compared.
func CmpOptions() []cmp.Option {
	return []cmp.Option{
		cmpopts.EquateEmpty(),
		cmp.Exporter(func(reflect.Type) bool { return true }),
	}
}

////////////////////////////////////////////////////////////////////////////////

func unary(fn func(subject, expected any) error) Func {
	return func(_ context.Context, subject any, expected []any) error {
		if len(expected) != 1 {
			return fmt.Errorf("%w: want 1, got %d", ErrExpectedArity, len(expected))
		}
		return fn(subject, expected[0])
	}
}

func nullary(fn func(subject any) error) Func {
	return func(_ context.Context, subject any, expected []any) error {
		if len(expected) != 0 {
			return fmt.Errorf("%w: want 0, got %d", ErrExpectedArity, len(expected))
		}
		return fn(subject)
	}
}

func negate(name string, fn func(subject, expected any) error) func(subject, expected any) error {
	return func(subject, expected any) error {
		if fn(subject, expected) == nil {
			return fmt.Errorf("expected %+v not %s %+v", subject, name[len("to "):], expected)
		}
		return nil
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
