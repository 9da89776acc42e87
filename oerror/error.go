package oerror

import "fmt"

// Error is the error type returned by locomotion packages. It optionally wraps a cause so that callers
// can still match the underlying error with errors.Is and errors.As.
type Error struct {
	Err   string
	Cause error
}

// New returns a new Error with a message formatted from the given format and arguments. If the last
// argument is an error, it is kept as the cause of the returned error.
func New(format string, args ...any) *Error {
	e := &Error{Err: fmt.Sprintf(format, args...)}
	if len(args) > 0 {
		if cause, ok := args[len(args)-1].(error); ok {
			e.Cause = cause
		}
	}
	return e
}

func (e *Error) Error() string {
	return e.Err
}

func (e *Error) Unwrap() error {
	return e.Cause
}
