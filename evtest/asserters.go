package evtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/capatazlib/go-evassert/internal/ev"
)

// verifyExactMatch is an utility function that checks the input slice of
// RecordP predicate match 1 to 1 with a given set of captured records.
func verifyExactMatch(preds []RecordP, given ev.RecordSet) error {
	if len(preds) != given.Len() {
		return fmt.Errorf(
			"expecting exact match, but length is not the same:\nwant: %d\ngiven: %d\nrecords:\n%s",
			len(preds),
			given.Len(),
			given.String(),
		)
	}
	for i, pred := range preds {
		r, _ := given.At(i)
		if !pred.Call(r) {
			return fmt.Errorf(
				"expecting exact match, but entry %d did not match:\ncriteria: %s\nrecord: %s\nrecords:\n%s",
				i+1,
				pred.String(),
				r.String(),
				given.String(),
			)
		}
	}
	return nil
}

// AssertExactMatch is an assertion that checks the input slice of RecordP
// predicate match 1 to 1 with a given set of captured records.
func AssertExactMatch(t *testing.T, rs ev.RecordSet, preds []RecordP) {
	t.Helper()
	err := verifyExactMatch(preds, rs)
	if err != nil {
		t.Error(err)
	}
}

// verifyPartialMatch is a utility function that matches (in order) a list of
// RecordP predicates to a list of captured records.
//
// The records need to match in order all the list of given predicates,
// however, there does not need to be a one to one match between the records
// and the predicates; it is ok to skip some records in between matches.
//
// This function returns all predicates that didn't match (in order) the given
// records. If the returned slice is empty, it means there was a succesful
// match.
func verifyPartialMatch(preds []RecordP, given []ev.Record) []RecordP {
	for len(preds) > 0 {
		// if we went through all the given records, we did not partially match
		if len(given) == 0 {
			return preds
		}

		// if predicate matches given, we move forward on both predicates and
		// given; otherwise we move forward only on given
		if preds[0].Call(given[0]) {
			preds = preds[1:]
		}
		given = given[1:]
	}

	return preds
}

// AssertPartialMatch is an assertion that matches in order a list of RecordP
// predicates to a set of captured records.
//
// The records need to match in the predicate order, but they do not need to
// be a one to one match (e.g. the record set may be longer than the
// predicates slice). This is useful when a subject fires many events and only
// a few of them matter to the test.
func AssertPartialMatch(t *testing.T, rs ev.RecordSet, preds []RecordP) {
	t.Helper()
	pendingPreds := verifyPartialMatch(preds, rs.Records())

	if len(pendingPreds) > 0 {
		pendingPredStrs := make([]string, 0, len(pendingPreds))
		for _, pred := range pendingPreds {
			pendingPredStrs = append(pendingPredStrs, pred.String())
		}

		t.Errorf(
			"Last match(es) didn't work - pending count: %d:\n%s\nInput records:\n%s",
			len(pendingPreds),
			strings.Join(pendingPredStrs, "\n"),
			rs.String(),
		)
	}
}
