package interp

import (
	"pyvm/internal/frame"
	"pyvm/internal/object"
	"pyvm/internal/pyerr"
)

// loadMethod implements LOAD_METHOD (spec.md section 4.5): on the fast
// path it pushes the unbound method descriptor followed by self, so CALL
// can bind them without allocating a PyBoundMethod; otherwise it pushes the
// ordinary getattr result followed by a null sentinel in the self slot, so
// CALL's [callable, self|null, args...] stack shape is uniform either way.
func loadMethod(f *frame.Frame, name string) *pyerr.PyError {
	obj := f.Pop()
	descr, self, value, ok, err := object.LoadMethod(obj, name)
	if err != nil {
		return err
	}
	if ok {
		f.Push(descr)
		f.Push(self)
		return nil
	}
	f.Push(value)
	f.Push(nil)
	return nil
}
