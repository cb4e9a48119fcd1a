package gwutils

import (
	"github.com/gwparam/paramstore/engine/gwlog"
	"github.com/pkg/errors"
)

// RunPanicless calls f and logs a panic instead of propagating it
func RunPanicless(f func()) (panicked bool) {
	defer func() {
		if err := recover(); err != nil {
			gwlog.TraceError("%p panic: %v", f, err)
			panicked = true
		}
	}()

	f()
	return
}

// CatchPanic calls f and turns a panic into the returned error
func CatchPanic(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			gwlog.TraceError("recovered panic: %v", r)
			if e, ok := r.(error); ok {
				err = errors.Wrap(e, "panic")
			} else {
				err = errors.Errorf("panic: %v", r)
			}
		}
	}()
	return f()
}
