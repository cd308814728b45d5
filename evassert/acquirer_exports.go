package evassert

import (
	"github.com/capatazlib/go-evassert/internal/ev"
	"github.com/capatazlib/go-evassert/internal/verb"
)

// Acquirer waits for firings on the channel of a subject and runs the event
// assertions
//
// Since: 0.1.0
type Acquirer = ev.Acquirer

// AcquirerOpt allows clients to tweak the behavior of an Acquirer
//
// Since: 0.1.0
type AcquirerOpt = ev.AcquirerOpt

// NewAcquirer returns an Acquirer configured with the given options
//
// Since: 0.1.0
var NewAcquirer = ev.NewAcquirer

// DefaultTimeout is the time an acquisition waits when no timeout is given
//
// Since: 0.1.0
const DefaultTimeout = ev.DefaultTimeout

// WithTimeout sets the time an acquisition waits for its events
//
// Since: 0.1.0
var WithTimeout = ev.WithTimeout

// WithLogger sets the logger used to report the lifecycle of acquisitions
//
// Since: 0.1.0
var WithLogger = ev.WithLogger

// WithMetrics sets the Prometheus metrics updated by acquisitions
//
// Since: 0.1.0
var WithMetrics = ev.WithMetrics

// WithEngine sets the assertion engine used to compare event values
//
// Since: 0.1.0
var WithEngine = ev.WithEngine

// Metrics holds the Prometheus collectors updated by acquisitions
//
// Since: 0.1.0
type Metrics = ev.Metrics

// NewMetrics builds the evassert collectors and registers them
//
// Since: 0.1.0
var NewMetrics = ev.NewMetrics

// LiveSet is the growing set of records of a passive capture
//
// Since: 0.1.0
type LiveSet = ev.LiveSet

// Expectation is the trailing part of an event assertion: a verb and its
// expected values
//
// Since: 0.1.0
type Expectation = ev.Expectation

// Expect builds a whole-list Expectation
//
// Since: 0.1.0
var Expect = ev.Expect

// ExpectValues builds a values mode Expectation
//
// Since: 0.1.0
var ExpectValues = ev.ExpectValues

// EventSpec describes one expected event of AssertAll
//
// Since: 0.1.0
type EventSpec = ev.EventSpec

// Match compares the captured values against a flat [verb, expected...] list
//
// Since: 0.1.0
var Match = ev.Match

// ForEvent compares the event at a 1-based position of a RecordSet against a
// flat [verb, expected...] list
//
// Since: 0.1.0
var ForEvent = ev.ForEvent

// Engine runs named comparison verbs
//
// Since: 0.1.0
type Engine = ev.Engine

// VerbEngine is the default Engine implementation
//
// Since: 0.1.0
type VerbEngine = verb.Engine

// VerbFunc is the signature of a verb registered on a VerbEngine
//
// Since: 0.1.0
type VerbFunc = verb.Func

// NewVerbEngine returns a VerbEngine with the default verbs registered
//
// Since: 0.1.0
var NewVerbEngine = verb.New
