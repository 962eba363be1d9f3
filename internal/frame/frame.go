// Package frame implements the execution frame and thread-state model
// bytecode.Code runs inside (spec.md section 3, component 4.6).
package frame

import (
	"github.com/google/uuid"

	"pyvm/internal/bytecode"
	"pyvm/internal/cell"
	"pyvm/internal/object"
	"pyvm/internal/pyerr"
)

// Frame is one activation of a Code object: its fast-locals array, value
// stack, instruction pointer, and the globals/builtins namespaces it was
// called with (spec.md section 4.6).
//
// Slot i of Fast holds a plain object.Object when Layout.Vars[i].Trait is
// VarPlain, or a *cell.Cell when the variable is VarCell/VarFree — the
// NEWLOCALS/OPTIMIZED split in spec.md section 4.6 governs only how a
// frame's locals are surfaced as a dict, not this internal representation.
type Frame struct {
	Code     *bytecode.Code
	Fast     []interface{}
	Stack    []object.Object
	IP       int
	Globals  object.Namespace
	Builtins object.Namespace

	// NameScope backs LOAD_NAME/STORE_NAME/DELETE_NAME, the dict-based
	// namespace non-optimized scopes (module and class bodies) use instead
	// of fast-locals slots (spec.md section 4.6's NEWLOCALS/OPTIMIZED
	// split — LOAD_FAST/STORE_FAST address Fast directly, LOAD_NAME and
	// friends address this map).
	NameScope object.Namespace

	// Back links to the caller, used to build CallStack frames for
	// pyerr.PyError.WithFrame when unwinding.
	Back *Frame
}

// New builds a Frame ready to begin execution at IP 0. It does not bind
// args/kwargs: the caller (internal/interp's call machinery) binds them to
// fast-local slots after New returns. New only allocates the cell/free-var
// scaffolding spec.md section 4.4 describes for MAKE_CELL/COPY_FREE_VARS.
func New(code *bytecode.Code, globals, builtins object.Namespace, closure []*cell.Cell) *Frame {
	fast := make([]interface{}, code.Layout.Size)
	for i, v := range code.Layout.Vars {
		if v.Trait == bytecode.VarCell {
			fast[i] = cell.New()
		}
	}
	for i, c := range closure {
		idx := code.Layout.FirstFreeIndex + i
		if idx < len(fast) {
			fast[idx] = c
		}
	}
	return &Frame{
		Code:      code,
		Fast:      fast,
		Globals:   globals,
		Builtins:  builtins,
		NameScope: object.Namespace{},
	}
}

// Push/Pop/Top manage the value stack; spec.md's invariant that the stack
// never underflows within a single correctly-compiled Code object is
// enforced by internal/interp, not here.
func (f *Frame) Push(v object.Object) { f.Stack = append(f.Stack, v) }

func (f *Frame) Pop() object.Object {
	n := len(f.Stack) - 1
	v := f.Stack[n]
	f.Stack = f.Stack[:n]
	return v
}

func (f *Frame) PopN(n int) []object.Object {
	start := len(f.Stack) - n
	out := make([]object.Object, n)
	copy(out, f.Stack[start:])
	f.Stack = f.Stack[:start]
	return out
}

func (f *Frame) Top() object.Object { return f.Stack[len(f.Stack)-1] }

func (f *Frame) StackLen() int { return len(f.Stack) }

// Locals lazily materializes this frame's fast-locals array as a real
// PyDict (spec.md section 4.6's "Frame-locals materialization", the
// f_locals()/locals() surface). Built on demand rather than kept in sync
// continuously, since most frames never have it observed.
func (f *Frame) Locals() *object.PyDict {
	d := object.NewDict()
	for i, v := range f.Code.Layout.Vars {
		if v.Trait == bytecode.VarFree && i >= f.Code.Layout.FirstFreeIndex {
			continue
		}
		slot := f.Fast[i]
		var val object.Object
		switch s := slot.(type) {
		case nil:
			continue
		case *cell.Cell:
			inner, full := s.Get()
			if !full {
				continue
			}
			val, _ = inner.(object.Object)
		case object.Object:
			val = s
		}
		if val != nil {
			d.Set(object.NewStr(v.Name), val)
		}
	}
	return d
}

// LoadDeref/StoreDeref/DeleteDeref implement LOAD_DEREF/STORE_DEREF/
// DELETE_DEREF over a cell slot (spec.md section 4.4).
func (f *Frame) LoadDeref(idx int) (object.Object, *pyerr.PyError) {
	c := f.Fast[idx].(*cell.Cell)
	v, full := c.Get()
	if !full {
		info := f.Code.Layout.Vars[idx]
		if info.Trait == bytecode.VarFree {
			return nil, pyerr.New(pyerr.NameError,
				"cannot access free variable '%s' where it is not associated with a value in enclosing scope", info.Name)
		}
		return nil, pyerr.New(pyerr.UnboundLocalError,
			"cannot access local variable '%s' where it is not associated with a value", info.Name)
	}
	return v.(object.Object), nil
}

func (f *Frame) StoreDeref(idx int, v object.Object) {
	f.Fast[idx].(*cell.Cell).Set(v)
}

func (f *Frame) DeleteDeref(idx int) *pyerr.PyError {
	if !f.Fast[idx].(*cell.Cell).Delete() {
		name := f.Code.Layout.Vars[idx].Name
		return pyerr.New(pyerr.NameError, "free variable '%s' referenced before assignment in enclosing scope", name)
	}
	return nil
}

// LoadFast/StoreFast/DeleteFast implement LOAD_FAST/STORE_FAST/
// DELETE_FAST over a plain (non-cell) slot.
func (f *Frame) LoadFast(idx int) (object.Object, *pyerr.PyError) {
	v, ok := f.Fast[idx].(object.Object)
	if !ok || v == nil {
		name := f.Code.Layout.Vars[idx].Name
		return nil, pyerr.New(pyerr.UnboundLocalError, "local variable '%s' referenced before assignment", name)
	}
	return v, nil
}

func (f *Frame) StoreFast(idx int, v object.Object) { f.Fast[idx] = v }

func (f *Frame) DeleteFast(idx int) *pyerr.PyError {
	if f.Fast[idx] == nil {
		name := f.Code.Layout.Vars[idx].Name
		return pyerr.New(pyerr.UnboundLocalError, "local variable '%s' referenced before assignment", name)
	}
	f.Fast[idx] = nil
	return nil
}

// ThreadState is the per-thread execution context: its own frame stack,
// rooted at a stable process-lifetime identity (spec.md section 4.6,
// "Frame/thread-state model"). google/uuid gives ID a value independent
// of the *ThreadState pointer; `pyvm run --workers N` prints it beside
// each goroutine's result.
type ThreadState struct {
	ID     uuid.UUID
	Frames []*Frame
}

func NewThreadState() *ThreadState {
	return &ThreadState{ID: uuid.New()}
}

func (ts *ThreadState) Push(f *Frame) {
	if n := len(ts.Frames); n > 0 {
		f.Back = ts.Frames[n-1]
	}
	ts.Frames = append(ts.Frames, f)
}

func (ts *ThreadState) Pop() *Frame {
	n := len(ts.Frames) - 1
	f := ts.Frames[n]
	ts.Frames = ts.Frames[:n]
	return f
}

func (ts *ThreadState) Current() *Frame {
	if len(ts.Frames) == 0 {
		return nil
	}
	return ts.Frames[len(ts.Frames)-1]
}
