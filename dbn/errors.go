package dbn

import "errors"

// Error implements errors unique to loading and sampling a two-stage
// dynamic Bayesian network. It wraps an operation name and an underlying
// sentinel so callers can match on the sentinel with errors.Is.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	errUnknownParent     = errors.New("unknown parent reference")
	errCyclicGraph       = errors.New("parent graph is cyclic")
	errMissingCPTRow     = errors.New("missing CPT entry for parent assignment")
	errNoInitialDist     = errors.New("variable has no initial distribution")
	errMalformedCPT      = errors.New("malformed CPT row")
	errUnknownVariable   = errors.New("unknown variable")
	errUnknownSamplingFn = errors.New("unknown sampling order")
)

// IsMissingCPTEntry reports whether err indicates a runtime CPT lookup
// missed its key, which per the error handling design is a fatal
// model/data mismatch rather than a recoverable condition.
func IsMissingCPTEntry(err error) bool {
	return errors.Is(err, errMissingCPTRow)
}

// IsUnknownParent reports whether err indicates a load-time reference to
// an undeclared parent variable.
func IsUnknownParent(err error) bool {
	return errors.Is(err, errUnknownParent)
}

// IsCyclic reports whether err indicates the declared parent graph within
// a stage is not acyclic.
func IsCyclic(err error) bool {
	return errors.Is(err, errCyclicGraph)
}
