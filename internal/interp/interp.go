// Package interp implements the dispatch loop that executes a Frame's
// instruction words (spec.md section 4.6), the VM core every other
// component of this module exists to serve.
package interp

import (
	"pyvm/internal/bytecode"
	"pyvm/internal/cell"
	"pyvm/internal/frame"
	"pyvm/internal/numeric"
	"pyvm/internal/object"
	"pyvm/internal/pyerr"
)

// assertStack converts a failed type assertion on a stack operand into a
// SystemError instead of a panic — malformed BUILD_CONST_KEY_MAP keys
// (spec.md section 7) and the same class of mismatch elsewhere in this
// switch are host-detectable failures, not host crashes.
func assertStack[T any](v object.Object, op bytecode.OpCode) (T, *pyerr.PyError) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, pyerr.New(pyerr.SystemError, "%s: malformed operand, expected %T, got %T", op, zero, v)
	}
	return t, nil
}

// fetch decodes the instruction at f.IP, chaining any EXTENDED_ARG words
// that precede it into a wider argument (spec.md section 4.6). f.IP is
// left pointing at the word after the (non-EXTENDED_ARG) instruction.
func fetch(f *frame.Frame) (bytecode.OpCode, int) {
	extended := 0
	for {
		word := f.Code.Words[f.IP]
		op, argByte := bytecode.DecodeWord(word)
		f.IP++
		if op != bytecode.EXTENDED_ARG {
			return op, extended<<8 | int(argByte)
		}
		extended = extended<<8 | int(argByte)
	}
}

// Run executes f to completion and returns its RETURN_VALUE result. It
// pushes f onto ts for the duration; nested user-function calls
// (internal/object's UserFunctionCaller hook, callPyFunction) run on a
// fresh ThreadState of their own rather than on ts.
func Run(ts *frame.ThreadState, f *frame.Frame) (result object.Object, rerr *pyerr.PyError) {
	ts.Push(f)
	defer ts.Pop()

	var kwNames []string
	var curOp bytecode.OpCode

	// Converts an unexpected host panic (a nil dereference, a failed type
	// assertion this loop didn't guard, an index out of range) into an
	// InternalError instead of crashing the process, per spec.md 4.8.
	defer func() {
		if r := recover(); r != nil {
			rerr = pyerr.WrapInternal(r, curOp.String(), f.IP)
		}
	}()

	for {
		if f.IP >= f.Code.Len() {
			return nil, pyerr.New(pyerr.SystemError, "%s: instruction pointer ran off the end of the code", f.Code.QualName)
		}
		op, arg := fetch(f)
		curOp = op

		switch op {
		case bytecode.NOP, bytecode.RESUME, bytecode.CACHE:
			// no-ops in this host: RESUME/CACHE exist upstream for
			// interpreter-internal bookkeeping (signal checks, adaptive
			// specialization) that this VM doesn't implement.

		case bytecode.LOAD_CONST:
			f.Push(constToObject(f.Code.Constants[arg]))

		case bytecode.LOAD_FAST:
			v, err := f.LoadFast(arg)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(v)

		case bytecode.STORE_FAST:
			f.StoreFast(arg, f.Pop())

		case bytecode.DELETE_FAST:
			if err := f.DeleteFast(arg); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.LOAD_CLOSURE:
			f.Push(f.Fast[arg].(*cell.Cell)) // pushed as an opaque cell handle for MAKE_FUNCTION's closure operand

		case bytecode.PUSH_NULL:
			f.Push(nil)

		case bytecode.MAKE_CELL:
			// fast[arg] may already hold a raw value placed there by
			// argument binding (spec.md section 4.4: "MAKE_CELL i replaces
			// fast[i], possibly holding an initial value from argument
			// passing"); wrap it instead of discarding it.
			switch existing := f.Fast[arg].(type) {
			case *cell.Cell:
				// already a cell (frame.New pre-created it for this
				// VarCell slot); nothing to do.
			case nil:
				f.Fast[arg] = cell.New()
			default:
				f.Fast[arg] = cell.NewWithValue(existing)
			}

		case bytecode.COPY_FREE_VARS:
			// closure cells are installed into their slots by frame.New;
			// this opcode is a no-op here since that wiring already
			// happened at frame construction instead of at IP 0.

		case bytecode.LOAD_DEREF:
			v, err := f.LoadDeref(arg)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(v)

		case bytecode.STORE_DEREF:
			f.StoreDeref(arg, f.Pop())

		case bytecode.DELETE_DEREF:
			if err := f.DeleteDeref(arg); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.LOAD_NAME:
			v, err := loadName(f, arg)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(v)

		case bytecode.STORE_NAME:
			storeName(f, arg, f.Pop())

		case bytecode.DELETE_NAME:
			if err := deleteName(f, arg); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.LOAD_GLOBAL:
			v, err := loadGlobal(f, arg)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(v)

		case bytecode.LOAD_ATTR:
			v, err := object.GetAttr(f.Pop(), f.Code.Names[arg])
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(v)

		case bytecode.STORE_ATTR:
			obj := f.Pop()
			val := f.Pop()
			if err := object.SetAttr(obj, f.Code.Names[arg], val); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.DELETE_ATTR:
			if err := object.DelAttr(f.Pop(), f.Code.Names[arg]); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.LOAD_METHOD:
			if err := loadMethod(f, f.Code.Names[arg]); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.UNARY_NEGATIVE:
			v := f.Pop()
			r, err := numeric.Unary(v.Type().Slots.Neg, v)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(r)

		case bytecode.UNARY_INVERT:
			v := f.Pop()
			r, err := numeric.Unary(v.Type().Slots.Invert, v)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(r)

		case bytecode.BINARY_OP:
			w := f.Pop()
			v := f.Pop()
			r, err := numeric.BinaryOp(bytecode.NumericOp(arg), v, w)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(r)

		case bytecode.BINARY_SUBSCR:
			key := f.Pop()
			container := f.Pop()
			slot := container.Type().Slots.GetItem
			if slot == nil {
				return nil, withFrame(pyerr.New(pyerr.TypeError, "'%s' object is not subscriptable", container.Type().Name), f, op)
			}
			v, err := slot(container, key)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(v)

		case bytecode.STORE_SUBSCR:
			key := f.Pop()
			container := f.Pop()
			val := f.Pop()
			slot := container.Type().Slots.SetItem
			if slot == nil {
				return nil, withFrame(pyerr.New(pyerr.TypeError, "'%s' object does not support item assignment", container.Type().Name), f, op)
			}
			if err := slot(container, key, val); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.DELETE_SUBSCR:
			key := f.Pop()
			container := f.Pop()
			slot := container.Type().Slots.DelItem
			if slot == nil {
				return nil, withFrame(pyerr.New(pyerr.TypeError, "'%s' object doesn't support item deletion", container.Type().Name), f, op)
			}
			if err := slot(container, key); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.COMPARE_OP:
			w := f.Pop()
			v := f.Pop()
			r, err := numeric.Compare(bytecode.CompareOp(arg), v, w)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(r)

		case bytecode.IS_OP:
			w := f.Pop()
			v := f.Pop()
			same := v == w
			if arg != 0 {
				same = !same
			}
			f.Push(object.Bool(same))

		case bytecode.CONTAINS_OP:
			container := f.Pop()
			item := f.Pop()
			ok, err := numeric.Contains(container, item)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			if arg != 0 {
				ok = !ok
			}
			f.Push(object.Bool(ok))

		case bytecode.BUILD_TUPLE:
			items := f.PopN(arg)
			f.Push(object.NewTuple(items))

		case bytecode.BUILD_LIST:
			items := f.PopN(arg)
			f.Push(object.NewList(items))

		case bytecode.BUILD_MAP:
			d := object.NewDict()
			pairs := f.PopN(arg * 2)
			for i := 0; i < len(pairs); i += 2 {
				if err := d.Set(pairs[i], pairs[i+1]); err != nil {
					return nil, withFrame(err, f, op)
				}
			}
			f.Push(d)

		case bytecode.BUILD_CONST_KEY_MAP:
			keysTuple, kerr := assertStack[*object.PyTuple](f.Pop(), op)
			if kerr != nil {
				return nil, withFrame(kerr, f, op)
			}
			vals := f.PopN(arg)
			d := object.NewDict()
			for i, k := range keysTuple.Items {
				if err := d.Set(k, vals[i]); err != nil {
					return nil, withFrame(err, f, op)
				}
			}
			f.Push(d)

		case bytecode.LIST_APPEND:
			v := f.Pop()
			target, terr := assertStack[*object.PyList](f.Stack[len(f.Stack)-arg], op)
			if terr != nil {
				return nil, withFrame(terr, f, op)
			}
			target.Append(v)

		case bytecode.LIST_EXTEND:
			v := f.Pop()
			target, terr := assertStack[*object.PyList](f.Stack[len(f.Stack)-arg], op)
			if terr != nil {
				return nil, withFrame(terr, f, op)
			}
			items, err := iterableToSlice(v)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			target.Extend(items)

		case bytecode.LIST_TO_TUPLE:
			l, lerr := assertStack[*object.PyList](f.Pop(), op)
			if lerr != nil {
				return nil, withFrame(lerr, f, op)
			}
			f.Push(object.NewTuple(l.Items))

		case bytecode.DICT_UPDATE:
			v, verr := assertStack[*object.PyDict](f.Pop(), op)
			if verr != nil {
				return nil, withFrame(verr, f, op)
			}
			target, terr := assertStack[*object.PyDict](f.Stack[len(f.Stack)-arg], op)
			if terr != nil {
				return nil, withFrame(terr, f, op)
			}
			if err := target.Merge(v, true, nil); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.DICT_MERGE:
			v, verr := assertStack[*object.PyDict](f.Pop(), op)
			if verr != nil {
				return nil, withFrame(verr, f, op)
			}
			target, terr := assertStack[*object.PyDict](f.Stack[len(f.Stack)-arg], op)
			if terr != nil {
				return nil, withFrame(terr, f, op)
			}
			onDup := func(key object.Object) *pyerr.PyError {
				r, _ := object.Repr(key)
				return pyerr.New(pyerr.TypeError, "got multiple values for keyword argument %s", r)
			}
			if err := target.Merge(v, false, onDup); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.UNPACK_SEQUENCE:
			if err := unpackSequence(f, arg); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.UNPACK_EX:
			before := arg & 0xFF
			after := (arg >> 8) & 0xFF
			if err := unpackEx(f, before, after); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.GET_ITER:
			v := f.Pop()
			slot := v.Type().Slots.Iter
			if slot == nil {
				return nil, withFrame(pyerr.New(pyerr.TypeError, "'%s' object is not iterable", v.Type().Name), f, op)
			}
			it, err := slot(v)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(it)

		case bytecode.FOR_ITER:
			it := f.Top()
			slot := it.Type().Slots.Next
			v, err := slot(it)
			if err != nil {
				if err.Is(pyerr.StopIterationErr) {
					f.Pop()
					f.IP += arg
					continue
				}
				return nil, withFrame(err, f, op)
			}
			f.Push(v)

		case bytecode.JUMP_FORWARD:
			f.IP += arg

		case bytecode.JUMP_BACKWARD, bytecode.JUMP_BACKWARD_NO_INTERRUPT, bytecode.JUMP_BACKWARD_QUICK:
			f.IP -= arg

		case bytecode.POP_JUMP_FORWARD_IF_TRUE:
			if truthy, err := truthyOrErr(f, f.Pop()); err != nil {
				return nil, withFrame(err, f, op)
			} else if truthy {
				f.IP += arg
			}

		case bytecode.POP_JUMP_FORWARD_IF_FALSE:
			if truthy, err := truthyOrErr(f, f.Pop()); err != nil {
				return nil, withFrame(err, f, op)
			} else if !truthy {
				f.IP += arg
			}

		case bytecode.POP_JUMP_FORWARD_IF_NONE:
			if f.Pop() == object.None {
				f.IP += arg
			}

		case bytecode.POP_JUMP_FORWARD_IF_NOT_NONE:
			if f.Pop() != object.None {
				f.IP += arg
			}

		case bytecode.POP_JUMP_BACKWARD_IF_TRUE:
			if truthy, err := truthyOrErr(f, f.Pop()); err != nil {
				return nil, withFrame(err, f, op)
			} else if truthy {
				f.IP -= arg
			}

		case bytecode.POP_JUMP_BACKWARD_IF_FALSE:
			if truthy, err := truthyOrErr(f, f.Pop()); err != nil {
				return nil, withFrame(err, f, op)
			} else if !truthy {
				f.IP -= arg
			}

		case bytecode.POP_JUMP_BACKWARD_IF_NONE:
			if f.Pop() == object.None {
				f.IP -= arg
			}

		case bytecode.POP_JUMP_BACKWARD_IF_NOT_NONE:
			if f.Pop() != object.None {
				f.IP -= arg
			}

		case bytecode.JUMP_IF_TRUE_OR_POP:
			truthy, err := truthyOrErr(f, f.Top())
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			if truthy {
				f.IP += arg
			} else {
				f.Pop()
			}

		case bytecode.JUMP_IF_FALSE_OR_POP:
			truthy, err := truthyOrErr(f, f.Top())
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			if !truthy {
				f.IP += arg
			} else {
				f.Pop()
			}

		case bytecode.KW_NAMES:
			names := f.Code.Constants[arg].(*object.PyTuple)
			kwNames = make([]string, len(names.Items))
			for i, n := range names.Items {
				kwNames[i] = n.(object.PyStr).Val
			}

		case bytecode.PRECALL:
			// reserved for the two-step CALL family's adaptive-specialization
			// bookkeeping upstream; this VM resolves everything at CALL.

		case bytecode.CALL:
			result, err := execCall(f, arg, kwNames)
			kwNames = nil
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(result)

		case bytecode.CALL_FUNCTION_EX:
			result, err := execCallFunctionEx(f, arg)
			if err != nil {
				return nil, withFrame(err, f, op)
			}
			f.Push(result)

		case bytecode.MAKE_FUNCTION:
			if err := execMakeFunction(f, arg); err != nil {
				return nil, withFrame(err, f, op)
			}

		case bytecode.COPY:
			f.Push(f.Stack[len(f.Stack)-arg])

		case bytecode.RETURN_VALUE:
			return f.Pop(), nil

		default:
			return nil, withFrame(pyerr.New(pyerr.SystemError, "unimplemented opcode %s", op), f, op)
		}
	}
}

func constToObject(c interface{}) object.Object {
	if o, ok := c.(object.Object); ok {
		return o
	}
	panic("non-Object value in constant pool")
}

func truthyOrErr(f *frame.Frame, v object.Object) (bool, *pyerr.PyError) {
	t, err := object.Truthy(v)
	if err != nil {
		if pe, ok := err.(*pyerr.PyError); ok {
			return false, pe
		}
		return false, pyerr.New(pyerr.SystemError, "%v", err)
	}
	return t, nil
}

func withFrame(err *pyerr.PyError, f *frame.Frame, op bytecode.OpCode) *pyerr.PyError {
	return err.WithFrame(f.Code.QualName, op.String(), f.IP-1)
}

func iterableToSlice(v object.Object) ([]object.Object, *pyerr.PyError) {
	slot := v.Type().Slots.Iter
	if slot == nil {
		return nil, pyerr.New(pyerr.TypeError, "'%s' object is not iterable", v.Type().Name)
	}
	it, err := slot(v)
	if err != nil {
		return nil, err
	}
	next := it.Type().Slots.Next
	var out []object.Object
	for {
		v, err := next(it)
		if err != nil {
			if err.Is(pyerr.StopIterationErr) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, v)
	}
}

func unpackSequence(f *frame.Frame, n int) *pyerr.PyError {
	v := f.Pop()
	items, err := iterableToSlice(v)
	if err != nil {
		return err
	}
	if len(items) > n {
		return pyerr.New(pyerr.ValueError, "too many values to unpack (expected %d)", n)
	}
	if len(items) < n {
		return pyerr.New(pyerr.ValueError, "not enough values to unpack (expected %d, got %d)", n, len(items))
	}
	for i := n - 1; i >= 0; i-- {
		f.Push(items[i])
	}
	return nil
}

func unpackEx(f *frame.Frame, before, after int) *pyerr.PyError {
	v := f.Pop()
	items, err := iterableToSlice(v)
	if err != nil {
		return err
	}
	if len(items) < before+after {
		return pyerr.New(pyerr.ValueError, "not enough values to unpack")
	}
	head := items[:before]
	mid := items[before : len(items)-after]
	tail := items[len(items)-after:]
	for i := len(tail) - 1; i >= 0; i-- {
		f.Push(tail[i])
	}
	f.Push(object.NewList(mid))
	for i := len(head) - 1; i >= 0; i-- {
		f.Push(head[i])
	}
	return nil
}
