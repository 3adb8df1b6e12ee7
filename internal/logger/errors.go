package logger

import "errors"

// expectedError is implemented by errors that describe a rejected request
// rather than a fault.
type expectedError interface {
	Expected() bool
}

func isExpected(err error) bool {
	var e expectedError
	return errors.As(err, &e) && e.Expected()
}
