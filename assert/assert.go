package assert

import "github.com/oomph-ac/locomotion/oerror"

// Failure is the value an assertion panics with.
type Failure struct {
	err *oerror.Error
}

func (f *Failure) Error() string {
	return f.err.Error()
}

func (f *Failure) Unwrap() error {
	return f.err
}

// IsTrue panics with a *Failure describing the broken invariant if ok is false.
func IsTrue(ok bool, message string, args ...any) {
	if !ok {
		panic(&Failure{err: oerror.New("assertion failed: "+message, args...)})
	}
}
