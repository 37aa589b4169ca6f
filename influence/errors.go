package influence

import "errors"

// Error implements errors unique to an influence predictor.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

var errUnknownVariable = errors.New("influence source variable unknown to predictor")

var errDimensionMismatch = errors.New("hidden state or input dimension mismatch")

var errNoModel = errors.New("no trained model loaded")

// IsDimensionMismatch reports whether err indicates a hidden-state or
// input vector of the wrong width was passed to a recurrent predictor.
func IsDimensionMismatch(err error) bool {
	if e, ok := err.(*Error); ok {
		err = e.Err
	}
	return err == errDimensionMismatch
}
