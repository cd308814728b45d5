package evassert

import "github.com/capatazlib/go-evassert/internal/ev"

// Record is the immutable list of arguments delivered by a single firing
//
// Since: 0.1.0
type Record = ev.Record

// RecordSet is an ordered list of records, in arrival order
//
// Since: 0.1.0
type RecordSet = ev.RecordSet

// NewRecord builds a Record from the given arguments
//
// Since: 0.1.0
var NewRecord = ev.NewRecord

// NewRecordSet builds a RecordSet from Record (or *Record) values. Any other
// value is reported as a contract violation.
//
// Since: 0.1.0
var NewRecordSet = ev.NewRecordSet

// Listener receives the arguments of every firing on the channel it is
// subscribed to
//
// Since: 0.1.0
type Listener = ev.Listener

// NewListener wraps a callback in a Listener
//
// Since: 0.1.0
var NewListener = ev.NewListener

// Subscribable is the capability of an object that emits firings on named
// channels
//
// Since: 0.1.0
type Subscribable = ev.Subscribable
