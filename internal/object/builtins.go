package object

import (
	"fmt"

	"pyvm/internal/bytecode"
	"pyvm/internal/pyerr"
)

// Builtin type objects, constructed once at package init and shared for
// the process lifetime (spec.md section 3: "exactly one Type instance per
// Python type exists for the process's lifetime").
var (
	ObjectType             *Type
	TypeType               *Type
	NoneType               *Type
	NotImplementedType     *Type
	BoolType               *Type
	IntType                *Type
	FloatType              *Type
	StrType                *Type
	TupleType              *Type
	ListType               *Type
	DictType               *Type
	FunctionType           *Type
	BuiltinFunctionType    *Type
	CodeType               *Type
	BoundMethodType        *Type
	SeqIteratorType        *Type
)

func noneRepr(Object) (Object, *pyerr.PyError)    { return NewStr("None"), nil }
func noneBool(Object) (bool, *pyerr.PyError)      { return false, nil }
func notImplRepr(Object) (Object, *pyerr.PyError) { return NewStr("NotImplemented"), nil }

func seqRepr(items []Object, open, close string) (string, *pyerr.PyError) {
	s := open
	for i, it := range items {
		if i > 0 {
			s += ", "
		}
		r, err := Repr(it)
		if err != nil {
			return "", err
		}
		s += r
	}
	if len(items) == 1 && open == "(" {
		s += ","
	}
	return s + close, nil
}

func tupleRepr(v Object) (Object, *pyerr.PyError) {
	s, err := seqRepr(v.(*PyTuple).Items, "(", ")")
	if err != nil {
		return nil, err
	}
	return NewStr(s), nil
}

func listRepr(v Object) (Object, *pyerr.PyError) {
	s, err := seqRepr(v.(*PyList).Items, "[", "]")
	if err != nil {
		return nil, err
	}
	return NewStr(s), nil
}

func dictRepr(v Object) (Object, *pyerr.PyError) {
	d := v.(*PyDict)
	s := "{"
	for i, k := range d.OrderedKeys() {
		if i > 0 {
			s += ", "
		}
		kr, err := Repr(k)
		if err != nil {
			return nil, err
		}
		val, _, _ := d.Get(k)
		vr, err := Repr(val)
		if err != nil {
			return nil, err
		}
		s += kr + ": " + vr
	}
	return NewStr(s + "}"), nil
}

// Repr implements repr(obj) via the type's Repr slot, falling back to a Go
// format of the type name for representations that don't define one.
func Repr(obj Object) (string, *pyerr.PyError) {
	if slot := obj.Type().Slots.Repr; slot != nil {
		r, err := slot(obj)
		if err != nil {
			return "", err
		}
		return r.(PyStr).Val, nil
	}
	return fmt.Sprintf("<%s object>", obj.Type().Name), nil
}

func funcRepr(v Object) (Object, *pyerr.PyError) {
	return NewStr(fmt.Sprintf("<function %s>", v.(*PyFunction).Name)), nil
}

func builtinFuncRepr(v Object) (Object, *pyerr.PyError) {
	return NewStr(fmt.Sprintf("<built-in function %s>", v.(*PyBuiltinFunction).Name)), nil
}

func typeRepr(v Object) (Object, *pyerr.PyError) {
	return NewStr(fmt.Sprintf("<class '%s'>", v.(*Type).Name)), nil
}

func init() {
	ObjectType = NewType("object", nil, SlotTable{}, nil)

	TypeType = NewType("type", ObjectType, SlotTable{Repr: typeRepr}, nil)

	NoneType = NewType("NoneType", ObjectType, SlotTable{
		Repr: noneRepr, Str: noneRepr, Bool: noneBool,
	}, nil)

	NotImplementedType = NewType("NotImplementedType", ObjectType, SlotTable{
		Repr: notImplRepr, Str: notImplRepr,
	}, nil)

	intSlots := SlotTable{
		Neg: intNeg, Invert: intInvert, Bool: intBool, Repr: intRepr, Str: intRepr,
	}
	for op := bytecode.NumericOp(0); op < bytecode.NB_INPLACE_ADD; op++ {
		intSlots.Binary[op] = numBinary(op)
	}
	for op := bytecode.CompareOp(0); int(op) < len(intSlots.Compare); op++ {
		intSlots.Compare[op] = numCompare(op)
	}
	IntType = NewType("int", ObjectType, intSlots, nil)

	BoolType = NewType("bool", IntType, SlotTable{
		Bool: intBool, Repr: boolRepr, Str: boolRepr,
	}, nil)

	floatSlots := SlotTable{
		Neg: floatNeg, Bool: floatBool, Repr: floatRepr, Str: floatRepr,
	}
	for op := bytecode.NumericOp(0); op < bytecode.NB_INPLACE_ADD; op++ {
		floatSlots.Binary[op] = numBinary(op)
	}
	for op := bytecode.CompareOp(0); int(op) < len(floatSlots.Compare); op++ {
		floatSlots.Compare[op] = numCompare(op)
	}
	FloatType = NewType("float", ObjectType, floatSlots, nil)

	strSlots := SlotTable{
		Len: strLen, GetItem: strGetItem, Contains: strContains,
		Repr: strRepr, Str: strStr, Iter: strIter,
	}
	strSlots.Binary[bytecode.NB_ADD] = strAdd
	for op := bytecode.CompareOp(0); int(op) < len(strSlots.Compare); op++ {
		strSlots.Compare[op] = strCompare(op)
	}
	StrType = NewType("str", ObjectType, strSlots, map[string]*AttrEntry{
		"upper": NewMethodDescriptor(NewBuiltinFunction("upper", strUpperMethod)),
		"lower": NewMethodDescriptor(NewBuiltinFunction("lower", strLowerMethod)),
	})

	TupleType = NewType("tuple", ObjectType, SlotTable{
		Len: tupleLen, GetItem: tupleGetItem, Contains: tupleContains,
		Repr: tupleRepr, Iter: tupleIter,
	}, nil)

	ListType = NewType("list", ObjectType, SlotTable{
		Len: listLen, GetItem: listGetItem, SetItem: listSetItem, DelItem: listDelItem,
		Contains: listContains, Repr: listRepr, Iter: listIter,
	}, nil)

	DictType = NewType("dict", ObjectType, SlotTable{
		Len: dictLen, GetItem: dictGetItem, SetItem: dictSetItem, DelItem: dictDelItem,
		Contains: dictContains, Repr: dictRepr, Iter: dictIter,
	}, nil)

	FunctionType = NewType("function", ObjectType, SlotTable{
		Call: callUserFunction, Repr: funcRepr,
	}, nil)

	BuiltinFunctionType = NewType("builtin_function_or_method", ObjectType, SlotTable{
		Call: callBuiltinFunction, Repr: builtinFuncRepr,
	}, nil)

	CodeType = NewType("code", ObjectType, SlotTable{}, nil)

	BoundMethodType = NewType("method", ObjectType, SlotTable{
		Call: callBoundMethod,
	}, nil)

	SeqIteratorType = NewType("iterator", ObjectType, SlotTable{
		Next: seqIterNext, Iter: selfIter,
	}, nil)
}
