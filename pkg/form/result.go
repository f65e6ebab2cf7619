package form

import "fmt"

// Outcome tags a submission Result.
type Outcome int

const (
	// OutcomeFailure means the action did not produce a record.
	OutcomeFailure Outcome = iota
	// OutcomeSuccess means the action created a record.
	OutcomeSuccess
	// OutcomeConflict means the record already existed and was returned.
	OutcomeConflict
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeConflict:
		return "conflict"
	default:
		return "failure"
	}
}

// Result is the tagged outcome of a remote action.
type Result struct {
	Outcome Outcome
	ID      string
	Record  any
	Reason  string
}

// Success wraps a newly created record.
func Success(id string, record any) Result {
	return Result{Outcome: OutcomeSuccess, ID: id, Record: record}
}

// Conflict wraps the existing record returned in place of a duplicate.
func Conflict(id string, record any) Result {
	return Result{Outcome: OutcomeConflict, ID: id, Record: record}
}

// Failure reports that no record is available.
func Failure(format string, args ...any) Result {
	return Result{Outcome: OutcomeFailure, Reason: fmt.Sprintf(format, args...)}
}

// HasRecord reports whether the result carries a record identifier the
// caller may navigate to.
func (r Result) HasRecord() bool {
	return r.Outcome != OutcomeFailure && r.ID != ""
}
