package ev

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/capatazlib/go-evassert/internal/verb"
)

// Record is the ordered argument list delivered by one firing of a channel. A
// Record is immutable once built.
type Record struct {
	args []any
}

// NewRecord builds a Record holding a copy of the given arguments
func NewRecord(args ...any) Record {
	cp := make([]any, len(args))
	copy(cp, args)
	return Record{args: cp}
}

// Args returns a copy of the arguments of the firing, in delivery order
func (r Record) Args() []any {
	cp := make([]any, len(r.args))
	copy(cp, r.args)
	return cp
}

// Len returns the number of arguments delivered by the firing
func (r Record) Len() int {
	return len(r.args)
}

// Arg returns the argument at the given (0-based) position
func (r Record) Arg(i int) (any, bool) {
	if i < 0 || i >= len(r.args) {
		return nil, false
	}
	return r.args[i], true
}

// Equal reports whether two records carry structurally equal arguments
func (r Record) Equal(other Record) bool {
	return cmp.Equal(r.args, other.args, verb.CmpOptions()...)
}

func (r Record) String() string {
	return fmt.Sprintf("%+v", r.args)
}

// RecordSet is an ordered collection of Record values, the order being the
// arrival order of the firings.
type RecordSet struct {
	records []Record
}

// NewRecordSet builds a RecordSet out of the given items. Every item must be a
// Record (or a non-nil *Record), otherwise a ContractViolation is returned.
func NewRecordSet(items ...any) (RecordSet, error) {
	records := make([]Record, 0, len(items))
	for i, item := range items {
		switch r := item.(type) {
		case Record:
			records = append(records, r)
		case *Record:
			if r == nil {
				return RecordSet{}, newContractViolation(
					"record-set", fmt.Sprintf("item %d is a nil record", i), ErrNotEventValues,
				)
			}
			records = append(records, *r)
		default:
			return RecordSet{}, newContractViolation(
				"record-set", fmt.Sprintf("item %d has type %T", i, item), ErrNotEventValues,
			)
		}
	}
	return RecordSet{records: records}, nil
}

// newRecordSetFrom freezes the given records into a RecordSet without
// validation; the slice is owned by the returned value.
func newRecordSetFrom(records []Record) RecordSet {
	return RecordSet{records: records}
}

// Records returns a copy of the records in arrival order
func (rs RecordSet) Records() []Record {
	return append(rs.records[:0:0], rs.records...)
}

// Len returns the number of records in the set
func (rs RecordSet) Len() int {
	return len(rs.records)
}

// At returns the record at the given (0-based) position
func (rs RecordSet) At(i int) (Record, bool) {
	if i < 0 || i >= len(rs.records) {
		return Record{}, false
	}
	return rs.records[i], true
}

// Last returns the most recent record of the set
func (rs RecordSet) Last() (Record, bool) {
	return rs.At(len(rs.records) - 1)
}

// Equal reports whether both sets hold equal records in the same order
func (rs RecordSet) Equal(other RecordSet) bool {
	if len(rs.records) != len(other.records) {
		return false
	}
	for i, r := range rs.records {
		if !r.Equal(other.records[i]) {
			return false
		}
	}
	return true
}

func (rs RecordSet) String() string {
	return renderRecords(rs.records)
}

func renderRecords(records []Record) string {
	var builder strings.Builder
	for i, r := range records {
		builder.WriteString(fmt.Sprintf("  %3d: %s\n", i+1, r.String()))
	}
	return builder.String()
}
