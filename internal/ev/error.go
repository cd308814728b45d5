package ev

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotEventValues is reported when a record or a whole-list expectation
	// is not an array of event values
	ErrNotEventValues = errors.New("value supplied was not event values array")
	// ErrEventsNotArray is reported when a multiple events expectation is not an
	// array of events
	ErrEventsNotArray = errors.New("an array of events is expected")
	// ErrEventNotArray is reported when an entry of a multiple events
	// expectation does not carry an args array
	ErrEventNotArray = errors.New("each event must be specified as an array")
	// ErrMissingVerb is reported when an expectation has no assertion verb
	ErrMissingVerb = errors.New("expectation is missing an assertion verb")
	// ErrInvalidCount is reported when the requested number of events is out
	// of range
	ErrInvalidCount = errors.New("invalid number of events requested")
	// ErrNilSubject is reported when no subject is given to an assertion
	ErrNilSubject = errors.New("subject is not subscribable")

	// ErrEventNotSeen is reported when the required number of events did not
	// happen before the timeout
	ErrEventNotSeen = errors.New("expected event not seen prior to timeout")
	// ErrUnexpectedEvents is reported when no events were expected, but some
	// happened before the timeout
	ErrUnexpectedEvents = errors.New("saw unexpected events")

	// ErrMessageLonger is reported when an event carries more values than the
	// expectation defines
	ErrMessageLonger = errors.New("message was longer than expected definition")
	// ErrMessageShorter is reported when an event carries fewer values than the
	// expectation defines
	ErrMessageShorter = errors.New("message was shorter than expected definition")

	// ErrIndexNotSeen is reported when a captured set does not hold the
	// requested event
	ErrIndexNotSeen = errors.New("expected event was not seen")
)

// ErrKVs is an utility interface used to get key-values out of evassert errors
type ErrKVs interface {
	KVs() map[string]interface{}
}

// errExplain is an utility interface used to get a human-friendly message from
// an evassert error
type errExplain interface {
	explainLines() []string
}

////////////////////////////////////////////////////////////////////////////////

// ContractViolation is reported when an assertion is called with an
// expectation of the wrong shape. It is always reported before the subject
// gets subscribed.
type ContractViolation struct {
	op     string
	detail string
	err    error
}

func newContractViolation(op, detail string, err error) *ContractViolation {
	return &ContractViolation{op: op, detail: detail, err: err}
}

// Error returns an error message
func (err *ContractViolation) Error() string {
	return err.err.Error()
}

// Unwrap returns the sentinel error that classifies this violation
func (err *ContractViolation) Unwrap() error {
	return err.err
}

// KVs returns a metadata map for structured logging
func (err *ContractViolation) KVs() map[string]interface{} {
	acc := map[string]interface{}{
		"assertion.op":    err.op,
		"assertion.error": err.err.Error(),
	}
	if err.detail != "" {
		acc["assertion.detail"] = err.detail
	}
	return acc
}

func (err *ContractViolation) explainLines() []string {
	lines := []string{fmt.Sprintf("assertion '%s' was called incorrectly: %s", err.op, err.err)}
	if err.detail != "" {
		lines = append(lines, indentExplain(1, []string{err.detail})...)
	}
	return lines
}

////////////////////////////////////////////////////////////////////////////////

// TimeoutError is reported when an acquisition times out without reaching its
// target.
type TimeoutError struct {
	channel  string
	required int
	seen     RecordSet
	timeout  time.Duration
}

// Error returns an error message
func (err *TimeoutError) Error() string {
	return err.Unwrap().Error()
}

// Unwrap returns ErrUnexpectedEvents when no events were required, and
// ErrEventNotSeen otherwise
func (err *TimeoutError) Unwrap() error {
	if err.required == 0 {
		return ErrUnexpectedEvents
	}
	return ErrEventNotSeen
}

// Channel returns the channel the acquisition was listening to
func (err *TimeoutError) Channel() string {
	return err.channel
}

// Seen returns the events captured before the timeout
func (err *TimeoutError) Seen() RecordSet {
	return err.seen
}

// KVs returns a metadata map for structured logging
func (err *TimeoutError) KVs() map[string]interface{} {
	return map[string]interface{}{
		"acquisition.channel":  err.channel,
		"acquisition.required": err.required,
		"acquisition.seen":     err.seen.Len(),
		"acquisition.timeout":  err.timeout,
	}
}

func (err *TimeoutError) explainLines() []string {
	var lines []string
	if err.required == 0 {
		lines = append(lines, fmt.Sprintf(
			"expected no events on channel '%s', but saw %d within %v",
			err.channel, err.seen.Len(), err.timeout,
		))
	} else {
		lines = append(lines, fmt.Sprintf(
			"expected %d event(s) on channel '%s', but saw %d within %v",
			err.required, err.channel, err.seen.Len(), err.timeout,
		))
	}
	if err.seen.Len() > 0 {
		lines = append(lines, "seen events:")
		lines = append(lines, strings.Split(strings.TrimRight(err.seen.String(), "\n"), "\n")...)
	}
	return lines
}

////////////////////////////////////////////////////////////////////////////////

// CanceledError is reported when the context of an acquisition is done before
// the acquisition settles.
type CanceledError struct {
	channel  string
	required int
	seen     int
	cause    error
}

// Error returns an error message
func (err *CanceledError) Error() string {
	return fmt.Sprintf("acquisition on channel '%s' canceled: %v", err.channel, err.cause)
}

// Unwrap returns the context error
func (err *CanceledError) Unwrap() error {
	return err.cause
}

// KVs returns a metadata map for structured logging
func (err *CanceledError) KVs() map[string]interface{} {
	return map[string]interface{}{
		"acquisition.channel":  err.channel,
		"acquisition.required": err.required,
		"acquisition.seen":     err.seen,
		"acquisition.error":    err.cause,
	}
}

func (err *CanceledError) explainLines() []string {
	var header string
	if err.required == 0 {
		header = fmt.Sprintf(
			"acquisition on channel '%s' expecting no events was canceled after seeing %d",
			err.channel, err.seen,
		)
	} else {
		header = fmt.Sprintf(
			"acquisition on channel '%s' was canceled after seeing %d of %d event(s)",
			err.channel, err.seen, err.required,
		)
	}
	return append([]string{header}, indentExplain(1, errToExplain(err.cause))...)
}

////////////////////////////////////////////////////////////////////////////////

// LengthMismatch is reported when the number of values of an event does not
// match the number of comparisons of an expectation. No comparison runs when
// this error is reported.
type LengthMismatch struct {
	captured int
	expected int
}

// Error returns an error message
func (err *LengthMismatch) Error() string {
	return err.Unwrap().Error()
}

// Unwrap returns either ErrMessageLonger or ErrMessageShorter
func (err *LengthMismatch) Unwrap() error {
	if err.captured > err.expected {
		return ErrMessageLonger
	}
	return ErrMessageShorter
}

// KVs returns a metadata map for structured logging
func (err *LengthMismatch) KVs() map[string]interface{} {
	return map[string]interface{}{
		"match.captured": err.captured,
		"match.expected": err.expected,
	}
}

func (err *LengthMismatch) explainLines() []string {
	return []string{
		err.Error(),
		fmt.Sprintf("\tevent values: %d, expected values: %d", err.captured, err.expected),
	}
}

////////////////////////////////////////////////////////////////////////////////

// ComparisonFailure is reported when a single value comparison fails. Position
// is 1-based and follows the order of the event values.
type ComparisonFailure struct {
	position    int
	verb        string
	subject     any
	expected    any
	hasExpected bool
	err         error
}

// Error returns an error message
func (err *ComparisonFailure) Error() string {
	if err.position == 0 {
		return fmt.Sprintf("'%s' failed: %v", err.verb, err.err)
	}
	return fmt.Sprintf("value %d '%s' failed: %v", err.position, err.verb, err.err)
}

// Unwrap returns the error reported by the assertion engine
func (err *ComparisonFailure) Unwrap() error {
	return err.err
}

// Position returns the 1-based position of the compared value, 0 when the
// whole event was compared
func (err *ComparisonFailure) Position() int {
	return err.position
}

// KVs returns a metadata map for structured logging
func (err *ComparisonFailure) KVs() map[string]interface{} {
	acc := map[string]interface{}{
		"comparison.position": err.position,
		"comparison.verb":     err.verb,
		"comparison.subject":  err.subject,
		"comparison.error":    err.err,
	}
	if err.hasExpected {
		acc["comparison.expected"] = err.expected
	}
	return acc
}

func (err *ComparisonFailure) explainLines() []string {
	var header string
	if err.position == 0 {
		header = fmt.Sprintf("expected %+v '%s'", err.subject, err.verb)
	} else {
		header = fmt.Sprintf("expected value %d (%+v) '%s'", err.position, err.subject, err.verb)
	}
	if err.hasExpected {
		header = fmt.Sprintf("%s %+v", header, err.expected)
	}
	return append([]string{header}, indentExplain(1, errToExplain(err.err))...)
}

// MatchError aggregates the comparison failures of a single match. The primary
// failure is always the one with the lowest position.
type MatchError struct {
	failures []*ComparisonFailure
}

// Error returns the message of the primary failure
func (err *MatchError) Error() string {
	return err.failures[0].Error()
}

// Unwrap returns the primary failure
func (err *MatchError) Unwrap() error {
	return err.failures[0]
}

// Failures returns every comparison that failed, ordered by position
func (err *MatchError) Failures() []*ComparisonFailure {
	return append(err.failures[:0:0], err.failures...)
}

// KVs returns a metadata map for structured logging
func (err *MatchError) KVs() map[string]interface{} {
	acc := make(map[string]interface{})
	acc["match.failures"] = len(err.failures)
	for i, f := range err.failures {
		for k, v := range f.KVs() {
			acc[fmt.Sprintf("match.%d.%s", i, k)] = v
		}
	}
	return acc
}

func (err *MatchError) explainLines() []string {
	if len(err.failures) == 1 {
		return err.failures[0].explainLines()
	}
	lines := []string{fmt.Sprintf("%d comparisons failed:", len(err.failures))}
	for _, f := range err.failures {
		lines = append(lines, indentExplain(1, f.explainLines())...)
	}
	return lines
}

////////////////////////////////////////////////////////////////////////////////

// IndexOutOfRange is reported when a captured set is queried for an event it
// does not hold. Index is 1-based.
type IndexOutOfRange struct {
	index  int
	length int
}

// Error returns an error message
func (err *IndexOutOfRange) Error() string {
	return ErrIndexNotSeen.Error()
}

// Unwrap returns ErrIndexNotSeen
func (err *IndexOutOfRange) Unwrap() error {
	return ErrIndexNotSeen
}

// KVs returns a metadata map for structured logging
func (err *IndexOutOfRange) KVs() map[string]interface{} {
	return map[string]interface{}{
		"query.index":  err.index,
		"query.length": err.length,
	}
}

func (err *IndexOutOfRange) explainLines() []string {
	return []string{
		fmt.Sprintf("expected event %d was not seen, only %d event(s) were captured", err.index, err.length),
	}
}

////////////////////////////////////////////////////////////////////////////////

// ExplainError is a utility function that explains evassert errors in a
// human-friendly way. Defaults to a call to error.Error() if the underlying
// error does not come from the evassert library.
func ExplainError(err error) string {
	var errExp errExplain
	if errors.As(err, &errExp) {
		return strings.Join(errExp.explainLines(), "\n")
	}
	return err.Error()
}

func errToExplain(err error) []string {
	errLines := strings.Split(err.Error(), "\n")
	for i, l := range errLines {
		errLines[i] = fmt.Sprintf("> %s", l)
	}
	return errLines
}

func indentExplain(times int, ss []string) []string {
	indentPrefix := strings.Repeat("\t", times)
	for i, s := range ss {
		ss[i] = fmt.Sprintf("%s%s", indentPrefix, s)
	}
	return ss
}
