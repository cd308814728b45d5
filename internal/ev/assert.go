package ev

import (
	"context"
	"fmt"
	"reflect"
)

// Expectation is the trailing part of an event assertion: an assertion verb
// and the expected values given to it.
//
// In whole-list mode (built with Expect) Args must hold exactly one slice with
// every value of the event. In values mode (built with ExpectValues) Args holds
// one expected value per event value, each compared with the same verb.
type Expectation struct {
	Verb   string
	Args   []any
	Values bool
}

// Expect builds a whole-list Expectation
func Expect(verb string, args ...any) Expectation {
	return Expectation{Verb: verb, Args: args}
}

// ExpectValues builds a values mode Expectation
func ExpectValues(verb string, args ...any) Expectation {
	return Expectation{Verb: verb, Args: args, Values: true}
}

// flat returns the expectation as [verb, args...]
func (e Expectation) flat() []any {
	acc := make([]any, 0, len(e.Args)+1)
	acc = append(acc, e.Verb)
	return append(acc, e.Args...)
}

func (e Expectation) String() string {
	if e.Values {
		return fmt.Sprintf("values '%s' %+v", e.Verb, e.Args)
	}
	return fmt.Sprintf("'%s' %+v", e.Verb, e.Args)
}

// EventSpec describes one expected event of a multiple events assertion
type EventSpec struct {
	Args []any
}

////////////////////////////////////////////////////////////////////////////////

// AssertNth waits for the nth (1-based) firing on the channel of the subject
// and compares it against the expectation.
//
// The expectation shape is validated before subscribing to the subject.
func (acq *Acquirer) AssertNth(
	ctx context.Context,
	subject Subscribable,
	channel string,
	n int,
	exp Expectation,
) error {
	const op = "nth event"

	if subject == nil {
		return newContractViolation(op, "", ErrNilSubject)
	}
	if n < 1 {
		return newContractViolation(op, fmt.Sprintf("event number was %d", n), ErrInvalidCount)
	}
	if exp.Verb == "" {
		return newContractViolation(op, "", ErrMissingVerb)
	}

	var expected Record
	if !exp.Values {
		values, err := wholeListValues(op, exp)
		if err != nil {
			return err
		}
		expected = NewRecord(values...)
	}

	seen, err := acq.acquire(ctx, subject, channel, n)
	if err != nil {
		return err
	}

	// acquisition stops right at n events, so the nth one is the last
	ev, _ := seen.Last()

	if exp.Values {
		return Match(ctx, acq.settings.engine, ev.Args(), exp.flat())
	}
	return acq.compare(ctx, ev, exp.Verb, expected)
}

// AssertFirst is AssertNth for the first firing
func (acq *Acquirer) AssertFirst(ctx context.Context, subject Subscribable, channel string, exp Expectation) error {
	return acq.AssertNth(ctx, subject, channel, 1, exp)
}

// AssertSecond is AssertNth for the second firing
func (acq *Acquirer) AssertSecond(ctx context.Context, subject Subscribable, channel string, exp Expectation) error {
	return acq.AssertNth(ctx, subject, channel, 2, exp)
}

// AssertThird is AssertNth for the third firing
func (acq *Acquirer) AssertThird(ctx context.Context, subject Subscribable, channel string, exp Expectation) error {
	return acq.AssertNth(ctx, subject, channel, 3, exp)
}

// AssertAll waits for as many firings on the channel of the subject as events
// are listed in the expectation, and compares the whole list of captured
// events against them. An empty list asserts that nothing fires before the
// timeout.
//
// The single value of the expectation must be a slice whose entries are
// EventSpec, Record or map[string]any values with an "args" slice.
func (acq *Acquirer) AssertAll(
	ctx context.Context,
	subject Subscribable,
	channel string,
	exp Expectation,
) error {
	const op = "multiple events"

	if subject == nil {
		return newContractViolation(op, "", ErrNilSubject)
	}
	if exp.Verb == "" {
		return newContractViolation(op, "", ErrMissingVerb)
	}

	expected, err := expectedRecordSet(op, exp)
	if err != nil {
		return err
	}

	seen, err := acq.acquire(ctx, subject, channel, expected.Len())
	if err != nil {
		return err
	}

	return acq.compare(ctx, seen, exp.Verb, expected)
}

// AssertEventAt compares the event at the given (1-based) position of a
// captured set with a values mode comparison
func (acq *Acquirer) AssertEventAt(ctx context.Context, set RecordSet, index int, exp Expectation) error {
	return ForEvent(ctx, acq.settings.engine, set, index, exp.flat())
}

// ForEvent compares the event at the given (1-based) position of a captured
// set with the flat expectation [verb, expected_1, ..., expected_N]. An index
// beyond the set length reports an *IndexOutOfRange.
func ForEvent(ctx context.Context, engine Engine, set RecordSet, index int, flat []any) error {
	if index < 1 {
		return newContractViolation("event at index", fmt.Sprintf("index was %d", index), ErrInvalidCount)
	}
	ev, ok := set.At(index - 1)
	if !ok {
		return &IndexOutOfRange{index: index, length: set.Len()}
	}
	return Match(ctx, engine, ev.Args(), flat)
}

////////////////////////////////////////////////////////////////////////////////

// compare runs a single whole-value comparison on the engine
func (acq *Acquirer) compare(ctx context.Context, subject any, verbName string, expected any) error {
	err := acq.settings.engine.Assert(ctx, subject, verbName, expected)
	if err == nil {
		return nil
	}
	return &ComparisonFailure{
		verb:        verbName,
		subject:     subject,
		expected:    expected,
		hasExpected: true,
		err:         err,
	}
}

// wholeListValues returns the event values of a whole-list expectation
func wholeListValues(op string, exp Expectation) ([]any, error) {
	if len(exp.Args) != 1 {
		return nil, newContractViolation(
			op, fmt.Sprintf("expected 1 value, got %d", len(exp.Args)), ErrNotEventValues,
		)
	}
	values, ok := toSequence(exp.Args[0])
	if !ok {
		return nil, newContractViolation(
			op, fmt.Sprintf("value has type %T", exp.Args[0]), ErrNotEventValues,
		)
	}
	return values, nil
}

// expectedRecordSet builds the expected records of a multiple events
// expectation
func expectedRecordSet(op string, exp Expectation) (RecordSet, error) {
	if len(exp.Args) != 1 {
		return RecordSet{}, newContractViolation(
			op, fmt.Sprintf("expected 1 value, got %d", len(exp.Args)), ErrEventsNotArray,
		)
	}
	entries, ok := toSequence(exp.Args[0])
	if !ok {
		return RecordSet{}, newContractViolation(
			op, fmt.Sprintf("value has type %T", exp.Args[0]), ErrEventsNotArray,
		)
	}

	records := make([]Record, 0, len(entries))
	for i, entry := range entries {
		r, ok := toRecord(entry)
		if !ok {
			return RecordSet{}, newContractViolation(
				op, fmt.Sprintf("event %d has type %T", i+1, entry), ErrEventNotArray,
			)
		}
		records = append(records, r)
	}
	return newRecordSetFrom(records), nil
}

func toRecord(entry any) (Record, bool) {
	switch e := entry.(type) {
	case EventSpec:
		return NewRecord(e.Args...), true
	case *EventSpec:
		if e == nil {
			return Record{}, false
		}
		return NewRecord(e.Args...), true
	case Record:
		return e, true
	case *Record:
		if e == nil {
			return Record{}, false
		}
		return *e, true
	case map[string]any:
		args, ok := toSequence(e["args"])
		if !ok {
			return Record{}, false
		}
		return NewRecord(args...), true
	default:
		return Record{}, false
	}
}

// toSequence converts a slice or array of any element type into []any
func toSequence(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if values, ok := v.([]any); ok {
		return values, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		acc := make([]any, rv.Len())
		for i := range acc {
			acc[i] = rv.Index(i).Interface()
		}
		return acc, true
	default:
		return nil, false
	}
}
