package verb

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// celCache keeps compiled CEL programs keyed by their source expression
type celCache struct {
	mu    sync.Mutex
	env   *cel.Env
	progs map[string]cel.Program
	err   error
}

func newCELCache() *celCache {
	env, err := cel.NewEnv(
		// the compared value is exposed as a dynamic value, so that maps, lists
		// and scalars can be inspected from the expression
		cel.Variable("value", cel.DynType),
	)
	return &celCache{env: env, err: err, progs: make(map[string]cel.Program)}
}

func (c *celCache) program(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	if prog, ok := c.progs[expr]; ok {
		return prog, nil
	}
	ast, iss := c.env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	checked, iss2 := c.env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return nil, iss2.Err()
	}
	prog, err := c.env.Program(checked)
	if err != nil {
		return nil, err
	}
	c.progs[expr] = prog
	return prog, nil
}

func (c *celCache) eval(ctx context.Context, expr string, subject any) error {
	prog, err := c.program(expr)
	if err != nil {
		return fmt.Errorf("invalid expression %q: %w", expr, err)
	}
	out, _, err := prog.ContextEval(ctx, map[string]any{"value": subject})
	if err != nil {
		return fmt.Errorf("expression %q could not be evaluated on %+v: %w", expr, subject, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return fmt.Errorf("expression %q returned %T, expecting a bool", expr, out.Value())
	}
	if !b {
		return fmt.Errorf("expected %+v to satisfy %q", subject, expr)
	}
	return nil
}

// toSatisfy accepts a predicate function or a CEL expression that refers to
// the compared value as `value`
func (e *Engine) toSatisfy(ctx context.Context, subject any, expected []any) error {
	if len(expected) != 1 {
		return fmt.Errorf("%w: want 1, got %d", ErrExpectedArity, len(expected))
	}
	switch pred := expected[0].(type) {
	case func(any) bool:
		if !pred(subject) {
			return fmt.Errorf("expected %+v to satisfy predicate", subject)
		}
		return nil
	case func(any) error:
		if err := pred(subject); err != nil {
			return fmt.Errorf("expected %+v to satisfy predicate: %w", subject, err)
		}
		return nil
	case string:
		return e.cel.eval(ctx, pred, subject)
	default:
		return fmt.Errorf("expected a predicate or an expression, got %T", expected[0])
	}
}
