package evassert

import (
	"github.com/capatazlib/go-evassert/internal/ev"
	"github.com/capatazlib/go-evassert/internal/verb"
)

// ErrKVs is an utility interface used to get key-values out of evassert errors
//
// Since: 0.1.0
type ErrKVs = ev.ErrKVs

// ContractViolation is reported when an assertion gets an expectation of the
// wrong shape, before the subject is subscribed
//
// Since: 0.1.0
type ContractViolation = ev.ContractViolation

// TimeoutError is reported when an acquisition times out without reaching its
// target
//
// Since: 0.1.0
type TimeoutError = ev.TimeoutError

// CanceledError is reported when the context of an acquisition is done first
//
// Since: 0.1.0
type CanceledError = ev.CanceledError

// LengthMismatch is reported when an event and its expectation do not have
// the same number of values
//
// Since: 0.1.0
type LengthMismatch = ev.LengthMismatch

// ComparisonFailure is reported when a single comparison fails
//
// Since: 0.1.0
type ComparisonFailure = ev.ComparisonFailure

// MatchError aggregates the failures of a values comparison
//
// Since: 0.1.0
type MatchError = ev.MatchError

// IndexOutOfRange is reported when a captured set does not hold the queried
// event
//
// Since: 0.1.0
type IndexOutOfRange = ev.IndexOutOfRange

// Sentinel errors classifying the errors above, to be used with errors.Is
//
// Since: 0.1.0
var (
	ErrNotEventValues   = ev.ErrNotEventValues
	ErrEventsNotArray   = ev.ErrEventsNotArray
	ErrEventNotArray    = ev.ErrEventNotArray
	ErrMissingVerb      = ev.ErrMissingVerb
	ErrInvalidCount     = ev.ErrInvalidCount
	ErrNilSubject       = ev.ErrNilSubject
	ErrEventNotSeen     = ev.ErrEventNotSeen
	ErrUnexpectedEvents = ev.ErrUnexpectedEvents
	ErrMessageLonger    = ev.ErrMessageLonger
	ErrMessageShorter   = ev.ErrMessageShorter
	ErrIndexNotSeen     = ev.ErrIndexNotSeen
	ErrCaptureStopped   = ev.ErrCaptureStopped
	ErrUnknownVerb      = verb.ErrUnknownVerb
	ErrExpectedArity    = verb.ErrExpectedArity
)

// ExplainError is a utility function that explains evassert errors in a
// human-friendly way. Defaults to a call to error.Error() if the underlying
// error does not come from the evassert library.
//
// Since: 0.1.0
var ExplainError = ev.ExplainError
