package ev

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Unit is a single comparison of a matching pass: one event value gets
// compared with the shared verb against its expected value.
type Unit struct {
	Verb        string
	Expected    any
	HasExpected bool
}

// SplitUnits derives the comparison units of a flat expectation list of shape
// [verb, expected_1, ..., expected_N]. Every unit shares the verb and takes
// one expected value, in order. A list holding only the verb derives a single
// unit without an expected value. The input slice is never modified.
func SplitUnits(flat []any) ([]Unit, error) {
	if len(flat) == 0 {
		return nil, newContractViolation("match", "expectation is empty", ErrMissingVerb)
	}
	verbName, ok := flat[0].(string)
	if !ok || verbName == "" {
		return nil, newContractViolation(
			"match", fmt.Sprintf("first expectation value has type %T", flat[0]), ErrMissingVerb,
		)
	}

	if len(flat) == 1 {
		return []Unit{{Verb: verbName}}, nil
	}

	units := make([]Unit, 0, len(flat)-1)
	for _, expected := range flat[1:] {
		units = append(units, Unit{Verb: verbName, Expected: expected, HasExpected: true})
	}
	return units, nil
}

// Match compares every captured value with the comparison unit at the same
// position. The number of captured values and units must be the same,
// otherwise a *LengthMismatch is returned and no comparison runs.
//
// Comparisons run concurrently; when some of them fail a *MatchError is
// returned, its primary failure being the one with the lowest position.
func Match(ctx context.Context, engine Engine, captured []any, flat []any) error {
	units, err := SplitUnits(flat)
	if err != nil {
		return err
	}

	if len(captured) != len(units) {
		return &LengthMismatch{captured: len(captured), expected: len(units)}
	}

	failures := make([]*ComparisonFailure, len(units))

	var group errgroup.Group
	for i, u := range units {
		i, u := i, u
		group.Go(func() error {
			failures[i] = runUnit(ctx, engine, i+1, captured[i], u)
			if failures[i] != nil {
				return failures[i]
			}
			return nil
		})
	}

	if group.Wait() == nil {
		return nil
	}

	// errgroup reports whichever failure finished first, report by position
	// instead
	acc := make([]*ComparisonFailure, 0, len(failures))
	for _, f := range failures {
		if f != nil {
			acc = append(acc, f)
		}
	}
	return &MatchError{failures: acc}
}

// runUnit executes a single comparison, a panic on the engine is reported as
// a failure of the unit
func runUnit(ctx context.Context, engine Engine, position int, value any, u Unit) (failure *ComparisonFailure) {
	defer func() {
		if p := recover(); p != nil {
			failure = &ComparisonFailure{
				position:    position,
				verb:        u.Verb,
				subject:     value,
				expected:    u.Expected,
				hasExpected: u.HasExpected,
				err:         fmt.Errorf("assertion panicked: %v", p),
			}
		}
	}()

	var err error
	if u.HasExpected {
		err = engine.Assert(ctx, value, u.Verb, u.Expected)
	} else {
		err = engine.Assert(ctx, value, u.Verb)
	}
	if err == nil {
		return nil
	}
	return &ComparisonFailure{
		position:    position,
		verb:        u.Verb,
		subject:     value,
		expected:    u.Expected,
		hasExpected: u.HasExpected,
		err:         err,
	}
}
