package object

import (
	"strings"

	"pyvm/internal/bytecode"
	"pyvm/internal/pyerr"
)

// PyStr is Python's str, backed by a Go string (already immutable UTF-8,
// a reasonable host substitute for CPython's own immutable unicode object).
type PyStr struct{ Val string }

func (PyStr) Type() *Type { return StrType }

func NewStr(s string) Object { return PyStr{s} }

func strAdd(v, w Object) (Object, *pyerr.PyError) {
	a, ok1 := v.(PyStr)
	b, ok2 := w.(PyStr)
	if !ok1 || !ok2 {
		return NotImplementedObj, nil
	}
	return NewStr(a.Val + b.Val), nil
}

func strLen(v Object) (int, *pyerr.PyError) {
	s := v.(PyStr)
	return len([]rune(s.Val)), nil
}

func strGetItem(v, key Object) (Object, *pyerr.PyError) {
	s := v.(PyStr)
	idx, err := IndexFromObject(key)
	if err != nil {
		return nil, err
	}
	runes := []rune(s.Val)
	n := int64(len(runes))
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return nil, pyerr.New(pyerr.IndexError, "string index out of range")
	}
	return NewStr(string(runes[idx])), nil
}

func strContains(container, item Object) (bool, *pyerr.PyError) {
	c := container.(PyStr)
	i, ok := item.(PyStr)
	if !ok {
		return false, pyerr.New(pyerr.TypeError, "'in <string>' requires string as left operand, not %s", item.Type().Name)
	}
	return strings.Contains(c.Val, i.Val), nil
}

func strRepr(v Object) (Object, *pyerr.PyError) {
	s := v.(PyStr)
	return NewStr("'" + s.Val + "'"), nil
}

func strStr(v Object) (Object, *pyerr.PyError) {
	return v, nil
}

func strCompare(op bytecode.CompareOp) BinarySlot {
	return func(v, w Object) (Object, *pyerr.PyError) {
		a, ok1 := v.(PyStr)
		b, ok2 := w.(PyStr)
		if !ok1 || !ok2 {
			return NotImplementedObj, nil
		}
		switch op {
		case bytecode.CMP_EQ:
			return Bool(a.Val == b.Val), nil
		case bytecode.CMP_NE:
			return Bool(a.Val != b.Val), nil
		case bytecode.CMP_LT:
			return Bool(a.Val < b.Val), nil
		case bytecode.CMP_LE:
			return Bool(a.Val <= b.Val), nil
		case bytecode.CMP_GT:
			return Bool(a.Val > b.Val), nil
		case bytecode.CMP_GE:
			return Bool(a.Val >= b.Val), nil
		}
		return NotImplementedObj, nil
	}
}

// strUpperMethod backs the "ab".upper() scenario from spec.md section 8
// scenario 5: a method descriptor on StrType, invoked through the
// LOAD_METHOD fast path with no intermediate bound-method allocation.
var strMethodCallCount int // test-only counter, observed by the LOAD_METHOD scenario test

func strUpperMethod(args []Object, _ map[string]Object) (Object, *pyerr.PyError) {
	strMethodCallCount++
	self := args[0].(PyStr)
	return NewStr(strings.ToUpper(self.Val)), nil
}

func strLowerMethod(args []Object, _ map[string]Object) (Object, *pyerr.PyError) {
	self := args[0].(PyStr)
	return NewStr(strings.ToLower(self.Val)), nil
}

// StrMethodCallCount reports how many times a str method descriptor
// (currently only upper) has been invoked, for tests asserting the
// LOAD_METHOD fast path calls through without extra allocation-driven
// indirection.
func StrMethodCallCount() int { return strMethodCallCount }
