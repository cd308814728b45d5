package evtest

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/capatazlib/go-evassert/internal/ev"
	"github.com/capatazlib/go-evassert/internal/verb"
)

////////////////////////////////////////////////////////////////////////////////

// RecordP represents a predicate function that allows us to assert properties
// of a Record captured from a subject
type RecordP interface {

	// Call will execute the logic of this record predicate
	Call(ev.Record) bool

	// Returns an string representation of this record predicate (for debugging
	// purposes)
	String() string
}

// AndP is a predicate that builds the conjunction of a group RecordP predicates
// (e.g. join RecordP predicates with &&)
type AndP struct {
	Preds []RecordP
}

// Call will try and verify that all it's grouped predicates return true, if any
// returns false, this predicate function will return false
func (p AndP) Call(r ev.Record) bool {
	for _, pred := range p.Preds {
		if !pred.Call(r) {
			return false
		}
	}
	return true
}

func (p AndP) String() string {
	acc := make([]string, 0, len(p.Preds))
	for _, pred := range p.Preds {
		acc = append(acc, pred.String())
	}
	return strings.Join(acc, " && ")
}

// OrP is a predicate that builds the adjunction of a group RecordP predicates
// (e.g. join RecordP predicates with ||). An empty OrP matches every record.
type OrP struct {
	Preds []RecordP
}

// Call will verify that at least one of it's grouped predicates returns true
func (p OrP) Call(r ev.Record) bool {
	if len(p.Preds) == 0 {
		return true
	}
	for _, pred := range p.Preds {
		if pred.Call(r) {
			return true
		}
	}
	return false
}

func (p OrP) String() string {
	acc := make([]string, 0, len(p.Preds))
	for _, pred := range p.Preds {
		acc = append(acc, pred.String())
	}
	return strings.Join(acc, " || ")
}

////////////////////////////////////////////////////////////////////////////////

// ArgsEqualP is a predicate that checks the record arguments are structurally
// equal to the given ones
type ArgsEqualP struct {
	Args []any
}

// Call will check the record has exactly the expected arguments
func (p ArgsEqualP) Call(r ev.Record) bool {
	return cmp.Equal(r.Args(), p.Args, verb.CmpOptions()...)
}

func (p ArgsEqualP) String() string {
	return fmt.Sprintf("args == %+v", p.Args)
}

// ArgP is a predicate that checks the argument at the given (0-based) index is
// structurally equal to a value
type ArgP struct {
	Index int
	Value any
}

// Call will check the record argument at the index
func (p ArgP) Call(r ev.Record) bool {
	arg, ok := r.Arg(p.Index)
	if !ok {
		return false
	}
	return cmp.Equal(arg, p.Value, verb.CmpOptions()...)
}

func (p ArgP) String() string {
	return fmt.Sprintf("args[%d] == %+v", p.Index, p.Value)
}

// LenP is a predicate that checks the number of arguments of a record
type LenP struct {
	Len int
}

// Call will check the record has the expected number of arguments
func (p LenP) Call(r ev.Record) bool {
	return r.Len() == p.Len
}

func (p LenP) String() string {
	return fmt.Sprintf("len(args) == %d", p.Len)
}
