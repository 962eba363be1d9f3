package interp

import (
	"pyvm/internal/bytecode"
	"pyvm/internal/cell"
	"pyvm/internal/frame"
	"pyvm/internal/object"
	"pyvm/internal/pyerr"
)

func init() {
	// Breaks the object <-> frame <-> interp import cycle: object.Call
	// needs to run a user-defined function's Frame, which requires this
	// package; this package already imports object for Object/Type, so
	// object cannot import interp back. See DESIGN.md.
	object.UserFunctionCaller = callPyFunction
}

func callPyFunction(fn *object.PyFunction, args []object.Object, kwargs map[string]object.Object) (object.Object, *pyerr.PyError) {
	f := frame.New(fn.CodeObj.Code, fn.Globals, fn.Builtins, fn.Closure)
	if err := bindArgs(f, fn, args, kwargs); err != nil {
		return nil, err
	}
	ts := frame.NewThreadState()
	return Run(ts, f)
}

// bindArgs binds positional/keyword call arguments to a fresh frame's
// fast-locals slots, applying defaults/kwdefaults for parameters the
// caller omitted (spec.md section 4.7's call-argument binding).
//
// A parameter's slot may have VarCell trait (it's captured by a nested
// closure), in which case frame.New already replaced fast[i] with an
// empty *cell.Cell; storeFastOrCell below binds into the cell rather than
// overwriting it with a plain value, per spec.md section 4.4.
func bindArgs(f *frame.Frame, fn *object.PyFunction, args []object.Object, kwargs map[string]object.Object) *pyerr.PyError {
	layout := f.Code.Layout
	nparams := layout.ArgCount

	consumed := make(map[string]bool, len(kwargs))
	for i := 0; i < nparams; i++ {
		name := layout.Vars[i].Name
		switch {
		case i < len(args):
			storeFastOrCell(f, i, args[i])
		case kwargs != nil && kwargs[name] != nil:
			storeFastOrCell(f, i, kwargs[name])
			consumed[name] = true
		default:
			if d, ok := defaultFor(fn, name, i, nparams); ok {
				storeFastOrCell(f, i, d)
			} else {
				return pyerr.New(pyerr.TypeError, "%s() missing required positional argument: '%s'", fn.Name, name)
			}
		}
	}
	for k := range kwargs {
		if !consumed[k] {
			found := false
			for i := 0; i < nparams; i++ {
				if layout.Vars[i].Name == k {
					found = true
					break
				}
			}
			if !found {
				return pyerr.New(pyerr.TypeError, "%s() got an unexpected keyword argument '%s'", fn.Name, k)
			}
		}
	}
	return nil
}

// storeFastOrCell binds v into parameter slot i, going through the cell
// (STORE_DEREF-style) when that slot's trait is VarCell rather than
// clobbering the cell frame.New already installed there with a plain value.
func storeFastOrCell(f *frame.Frame, i int, v object.Object) {
	if f.Code.Layout.Vars[i].Trait == bytecode.VarCell {
		f.StoreDeref(i, v)
		return
	}
	f.StoreFast(i, v)
}

func defaultFor(fn *object.PyFunction, name string, idx, nparams int) (object.Object, bool) {
	if fn.KwDefaults != nil {
		if v, ok, _ := fn.KwDefaults.Get(object.NewStr(name)); ok {
			return v, true
		}
	}
	if fn.Defaults != nil {
		offset := idx - (nparams - len(fn.Defaults.Items))
		if offset >= 0 && offset < len(fn.Defaults.Items) {
			return fn.Defaults.Items[offset], true
		}
	}
	return nil, false
}

// execCall implements CALL (spec.md section 4.7). The stack holds either
// [callable, null, arg1..argN] (an ordinary PUSH_NULL-preceded call) or
// [descr, self, arg1..argN] (the LOAD_METHOD fast path); n is the count
// of arg1..argN only. The trailing len(kwNames) of those are keyword
// arguments, matched positionally against kwNames (KW_NAMES's operand).
func execCall(f *frame.Frame, n int, kwNames []string) (object.Object, *pyerr.PyError) {
	positional := f.PopN(n)
	selfOrNull := f.Pop()
	callable := f.Pop()

	var args []object.Object
	if selfOrNull != nil {
		args = append([]object.Object{selfOrNull}, positional...)
	} else {
		args = positional
	}

	var kwargs map[string]object.Object
	if len(kwNames) > 0 {
		kwargs = make(map[string]object.Object, len(kwNames))
		split := len(args) - len(kwNames)
		for i, name := range kwNames {
			kwargs[name] = args[split+i]
		}
		args = args[:split]
	}

	return object.Call(callable, args, kwargs)
}

func execCallFunctionEx(f *frame.Frame, arg int) (object.Object, *pyerr.PyError) {
	var kwargs map[string]object.Object
	if arg&1 != 0 {
		kwdict, err := assertStack[*object.PyDict](f.Pop(), bytecode.CALL_FUNCTION_EX)
		if err != nil {
			return nil, err
		}
		kwargs = make(map[string]object.Object, kwdict.Len())
		for _, k := range kwdict.OrderedKeys() {
			v, _, _ := kwdict.Get(k)
			name, err := assertStack[object.PyStr](k, bytecode.CALL_FUNCTION_EX)
			if err != nil {
				return nil, err
			}
			kwargs[name.Val] = v
		}
	}
	argsTuple, err := assertStack[*object.PyTuple](f.Pop(), bytecode.CALL_FUNCTION_EX)
	if err != nil {
		return nil, err
	}
	callable := f.Pop()
	return object.Call(callable, argsTuple.Items, kwargs)
}

// execMakeFunction implements MAKE_FUNCTION's bitmask-driven stack
// popping (spec.md section 4.7), matching CPython 3.11's pop order: code
// object, then (if present) closure, annotations, kwdefaults, defaults.
func execMakeFunction(f *frame.Frame, flags int) *pyerr.PyError {
	codeObj, err := assertStack[*object.PyCodeObj](f.Pop(), bytecode.MAKE_FUNCTION)
	if err != nil {
		return err
	}

	var closureCells []*cell.Cell
	var annotations *object.PyDict
	var kwdefaults *object.PyDict
	var defaults *object.PyTuple

	if flags&0x08 != 0 {
		closureTuple, err := assertStack[*object.PyTuple](f.Pop(), bytecode.MAKE_FUNCTION)
		if err != nil {
			return err
		}
		closureCells = make([]*cell.Cell, len(closureTuple.Items))
		for i, it := range closureTuple.Items {
			c, err := assertStack[*cell.Cell](it, bytecode.MAKE_FUNCTION)
			if err != nil {
				return err
			}
			closureCells[i] = c
		}
	}
	if flags&0x04 != 0 {
		v, err := assertStack[*object.PyDict](f.Pop(), bytecode.MAKE_FUNCTION)
		if err != nil {
			return err
		}
		annotations = v
	}
	if flags&0x02 != 0 {
		v, err := assertStack[*object.PyDict](f.Pop(), bytecode.MAKE_FUNCTION)
		if err != nil {
			return err
		}
		kwdefaults = v
	}
	if flags&0x01 != 0 {
		v, err := assertStack[*object.PyTuple](f.Pop(), bytecode.MAKE_FUNCTION)
		if err != nil {
			return err
		}
		defaults = v
	}

	fn := &object.PyFunction{
		Name:        codeObj.Code.QualName,
		CodeObj:     codeObj,
		Globals:     f.Globals,
		Builtins:    f.Builtins,
		Defaults:    defaults,
		KwDefaults:  kwdefaults,
		Annotations: annotations,
		Closure:     closureCells,
	}
	f.Push(fn)
	return nil
}
