package object

import (
	"pyvm/internal/bytecode"
	"pyvm/internal/cell"
	"pyvm/internal/pyerr"
)

// Namespace is the map-backed representation of globals/builtins (spec.md
// section 3, "Function ... binds ... globals (a dict); builtins (a
// mapping)"). It is not itself a first-class Object; Frame.Locals()
// (section 3 "Frame-locals materialization") is what surfaces a
// namespace to Python code as a real PyDict, built lazily on request.
type Namespace map[string]Object

// PyCodeObj wraps a bytecode.Code so it can travel through the value
// stack as a constant (LOAD_CONST pushes one, MAKE_FUNCTION consumes it).
type PyCodeObj struct{ Code *bytecode.Code }

func (*PyCodeObj) Type() *Type { return CodeType }

func NewCodeObj(c *bytecode.Code) *PyCodeObj { return &PyCodeObj{c} }

// PyFunction is a function object bound to its defining globals/builtins,
// optional defaults/kwdefaults/annotations, and closure cells (spec.md
// section 3).
type PyFunction struct {
	Name        string
	CodeObj     *PyCodeObj
	Globals     Namespace
	Builtins    Namespace
	Defaults    *PyTuple
	KwDefaults  *PyDict
	Annotations *PyDict
	Closure     []*cell.Cell
}

func (*PyFunction) Type() *Type { return FunctionType }

// UserFunctionCaller is wired by internal/interp at init time: calling a
// PyFunction means building and running a Frame, which this package
// cannot do itself without an import cycle (object -> frame -> interp ->
// object). See DESIGN.md for the rationale.
var UserFunctionCaller func(fn *PyFunction, args []Object, kwargs map[string]Object) (Object, *pyerr.PyError)

func callUserFunction(fnObj Object, args []Object, kwargs map[string]Object) (Object, *pyerr.PyError) {
	fn := fnObj.(*PyFunction)
	if UserFunctionCaller == nil {
		return nil, pyerr.New(pyerr.SystemError, "no interpreter registered to call %s", fn.Name)
	}
	return UserFunctionCaller(fn, args, kwargs)
}

// PyBuiltinFunction wraps a Go function as a callable Python object,
// e.g. a type's method descriptors (str.upper) or free-standing builtins.
type PyBuiltinFunction struct {
	Name string
	Fn   func(args []Object, kwargs map[string]Object) (Object, *pyerr.PyError)
}

func (*PyBuiltinFunction) Type() *Type { return BuiltinFunctionType }

func NewBuiltinFunction(name string, fn func(args []Object, kwargs map[string]Object) (Object, *pyerr.PyError)) *PyBuiltinFunction {
	return &PyBuiltinFunction{Name: name, Fn: fn}
}

func callBuiltinFunction(fnObj Object, args []Object, kwargs map[string]Object) (Object, *pyerr.PyError) {
	return fnObj.(*PyBuiltinFunction).Fn(args, kwargs)
}

// PyBoundMethod is the "unbound callable + self" pair the LOAD_METHOD
// fast path materializes lazily, and what ordinary getattr on a method
// descriptor produces eagerly (spec.md section 4.5).
type PyBoundMethod struct {
	Func Object
	Self Object
}

func (*PyBoundMethod) Type() *Type { return BoundMethodType }

func NewBoundMethod(fn, self Object) *PyBoundMethod { return &PyBoundMethod{fn, self} }

func callBoundMethod(m Object, args []Object, kwargs map[string]Object) (Object, *pyerr.PyError) {
	bm := m.(*PyBoundMethod)
	full := append([]Object{bm.Self}, args...)
	return Call(bm.Func, full, kwargs)
}

// Call invokes any callable Object uniformly via its type's Call slot,
// the single entry point CALL/CALL_FUNCTION_EX ultimately reduce to
// (spec.md section 4.7).
func Call(fn Object, args []Object, kwargs map[string]Object) (Object, *pyerr.PyError) {
	slot := fn.Type().Slots.Call
	if slot == nil {
		return nil, pyerr.New(pyerr.TypeError, "'%s' object is not callable", fn.Type().Name)
	}
	return slot(fn, args, kwargs)
}
