package object

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/dustin/go-humanize"

	"pyvm/internal/bytecode"
	"pyvm/internal/pyerr"
)

// PyInt is the small-integer representation of Python's int type.
type PyInt struct{ Val int64 }

func (PyInt) Type() *Type { return IntType }

// PyBigInt is int's arbitrary-precision representation, used once a
// small-int operation would overflow int64 (spec.md section 3,
// "multi-representation types").
type PyBigInt struct{ Val *big.Int }

func (PyBigInt) Type() *Type { return IntType }

func NewInt(v int64) Object { return PyInt{v} }

func NewBigInt(v *big.Int) Object {
	if v.IsInt64() {
		return PyInt{v.Int64()}
	}
	return PyBigInt{v}
}

// PyFloat is Python's float, always a host float64.
type PyFloat struct{ Val float64 }

func (PyFloat) Type() *Type { return FloatType }

func NewFloat(v float64) Object { return PyFloat{v} }

// asIntLike treats PyBool as the int it is in Python (bool subclasses
// int: True == 1, False == 0), so arithmetic on booleans falls through
// to ordinary integer arithmetic.
func asIntLike(o Object) (int64, bool) {
	switch v := o.(type) {
	case PyInt:
		return v.Val, true
	case PyBool:
		if v.Val {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func bigOf(o Object) *big.Int {
	if i, ok := asIntLike(o); ok {
		return big.NewInt(i)
	}
	if v, ok := o.(PyBigInt); ok {
		return v.Val
	}
	return nil
}

func floatOf(o Object) (float64, bool) {
	if i, ok := asIntLike(o); ok {
		return float64(i), true
	}
	switch v := o.(type) {
	case PyBigInt:
		f := new(big.Float).SetInt(v.Val)
		r, _ := f.Float64()
		return r, true
	case PyFloat:
		return v.Val, true
	}
	return 0, false
}

// IndexFromObject converts obj to a host int, as required by sequence
// subscript and length operations. A PyBigInt that doesn't fit in int64
// raises OverflowError with the magnitude rendered by go-humanize, the
// "numeric overflow to a narrower representation" case from spec.md
// section 7.
func IndexFromObject(obj Object) (int64, *pyerr.PyError) {
	switch v := obj.(type) {
	case PyInt:
		return v.Val, nil
	case PyBool:
		if v.Val {
			return 1, nil
		}
		return 0, nil
	case PyBigInt:
		if v.Val.IsInt64() {
			return v.Val.Int64(), nil
		}
		return 0, pyerr.New(pyerr.OverflowError, "cannot fit %s into an index-sized integer", humanize.BigComma(v.Val))
	}
	return 0, pyerr.New(pyerr.TypeError, "'%s' object cannot be interpreted as an integer", obj.Type().Name)
}

func addOverflows(a, b int64) bool {
	sum := a + b
	return ((a ^ sum) & (b ^ sum)) < 0
}

func mulOverflows(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	r := a * b
	return r/b != a
}

func intBinaryOp(op bytecode.NumericOp, a, b int64) (Object, *pyerr.PyError) {
	switch op {
	case bytecode.NB_ADD:
		if addOverflows(a, b) {
			return NewBigInt(new(big.Int).Add(big.NewInt(a), big.NewInt(b))), nil
		}
		return NewInt(a + b), nil
	case bytecode.NB_SUBTRACT:
		if addOverflows(a, -b) && b != math.MinInt64 {
			return NewBigInt(new(big.Int).Sub(big.NewInt(a), big.NewInt(b))), nil
		}
		if b == math.MinInt64 {
			return NewBigInt(new(big.Int).Sub(big.NewInt(a), big.NewInt(b))), nil
		}
		return NewInt(a - b), nil
	case bytecode.NB_MULTIPLY:
		if mulOverflows(a, b) {
			return NewBigInt(new(big.Int).Mul(big.NewInt(a), big.NewInt(b))), nil
		}
		return NewInt(a * b), nil
	case bytecode.NB_FLOOR_DIVIDE:
		if b == 0 {
			return nil, pyerr.New(pyerr.ValueError, "integer division or modulo by zero")
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return NewInt(q), nil
	case bytecode.NB_REMAINDER:
		if b == 0 {
			return nil, pyerr.New(pyerr.ValueError, "integer division or modulo by zero")
		}
		m := a % b
		if m != 0 && ((a < 0) != (b < 0)) {
			m += b
		}
		return NewInt(m), nil
	case bytecode.NB_TRUE_DIVIDE:
		if b == 0 {
			return nil, pyerr.New(pyerr.ValueError, "division by zero")
		}
		return NewFloat(float64(a) / float64(b)), nil
	case bytecode.NB_POWER:
		if b < 0 {
			return NewFloat(math.Pow(float64(a), float64(b))), nil
		}
		return NewBigInt(new(big.Int).Exp(big.NewInt(a), big.NewInt(b), nil)), nil
	case bytecode.NB_LSHIFT:
		if b < 0 {
			return nil, pyerr.New(pyerr.ValueError, "negative shift count")
		}
		return NewBigInt(new(big.Int).Lsh(big.NewInt(a), uint(b))), nil
	case bytecode.NB_RSHIFT:
		if b < 0 {
			return nil, pyerr.New(pyerr.ValueError, "negative shift count")
		}
		return NewInt(a >> uint(b)), nil
	case bytecode.NB_AND:
		return NewInt(a & b), nil
	case bytecode.NB_OR:
		return NewInt(a | b), nil
	case bytecode.NB_XOR:
		return NewInt(a ^ b), nil
	}
	return NotImplementedObj, nil
}

func bigBinaryOp(op bytecode.NumericOp, a, b *big.Int) (Object, *pyerr.PyError) {
	switch op {
	case bytecode.NB_ADD:
		return NewBigInt(new(big.Int).Add(a, b)), nil
	case bytecode.NB_SUBTRACT:
		return NewBigInt(new(big.Int).Sub(a, b)), nil
	case bytecode.NB_MULTIPLY:
		return NewBigInt(new(big.Int).Mul(a, b)), nil
	case bytecode.NB_FLOOR_DIVIDE:
		if b.Sign() == 0 {
			return nil, pyerr.New(pyerr.ValueError, "integer division or modulo by zero")
		}
		q, m := new(big.Int), new(big.Int)
		q.DivMod(a, b, m)
		return NewBigInt(q), nil
	case bytecode.NB_REMAINDER:
		if b.Sign() == 0 {
			return nil, pyerr.New(pyerr.ValueError, "integer division or modulo by zero")
		}
		m := new(big.Int).Mod(a, b)
		return NewBigInt(m), nil
	case bytecode.NB_TRUE_DIVIDE:
		if b.Sign() == 0 {
			return nil, pyerr.New(pyerr.ValueError, "division by zero")
		}
		fa, fb := new(big.Float).SetInt(a), new(big.Float).SetInt(b)
		r, _ := new(big.Float).Quo(fa, fb).Float64()
		return NewFloat(r), nil
	case bytecode.NB_AND:
		return NewBigInt(new(big.Int).And(a, b)), nil
	case bytecode.NB_OR:
		return NewBigInt(new(big.Int).Or(a, b)), nil
	case bytecode.NB_XOR:
		return NewBigInt(new(big.Int).Xor(a, b)), nil
	case bytecode.NB_LSHIFT:
		if b.Sign() < 0 {
			return nil, pyerr.New(pyerr.ValueError, "negative shift count")
		}
		return NewBigInt(new(big.Int).Lsh(a, uint(b.Int64()))), nil
	case bytecode.NB_RSHIFT:
		if b.Sign() < 0 {
			return nil, pyerr.New(pyerr.ValueError, "negative shift count")
		}
		return NewBigInt(new(big.Int).Rsh(a, uint(b.Int64()))), nil
	case bytecode.NB_POWER:
		if b.Sign() < 0 {
			fa, _ := new(big.Float).SetInt(a).Float64()
			fb, _ := new(big.Float).SetInt(b).Float64()
			return NewFloat(math.Pow(fa, fb)), nil
		}
		return NewBigInt(new(big.Int).Exp(a, b, nil)), nil
	}
	return NotImplementedObj, nil
}

func floatBinaryOp(op bytecode.NumericOp, a, b float64) (Object, *pyerr.PyError) {
	switch op {
	case bytecode.NB_ADD:
		return NewFloat(a + b), nil
	case bytecode.NB_SUBTRACT:
		return NewFloat(a - b), nil
	case bytecode.NB_MULTIPLY:
		return NewFloat(a * b), nil
	case bytecode.NB_TRUE_DIVIDE:
		if b == 0 {
			return nil, pyerr.New(pyerr.ValueError, "float division by zero")
		}
		return NewFloat(a / b), nil
	case bytecode.NB_FLOOR_DIVIDE:
		if b == 0 {
			return nil, pyerr.New(pyerr.ValueError, "float floor division by zero")
		}
		return NewFloat(math.Floor(a / b)), nil
	case bytecode.NB_REMAINDER:
		if b == 0 {
			return nil, pyerr.New(pyerr.ValueError, "float modulo")
		}
		return NewFloat(math.Mod(a, b)), nil
	case bytecode.NB_POWER:
		return NewFloat(math.Pow(a, b)), nil
	}
	return NotImplementedObj, nil
}

func intNeg(v Object) (Object, *pyerr.PyError) {
	switch n := v.(type) {
	case PyInt:
		if n.Val == math.MinInt64 {
			return NewBigInt(new(big.Int).Neg(big.NewInt(n.Val))), nil
		}
		return NewInt(-n.Val), nil
	case PyBool:
		if n.Val {
			return NewInt(-1), nil
		}
		return NewInt(0), nil
	case PyBigInt:
		return NewBigInt(new(big.Int).Neg(n.Val)), nil
	}
	return nil, pyerr.New(pyerr.TypeError, "bad operand type for unary -: '%s'", v.Type().Name)
}

func intInvert(v Object) (Object, *pyerr.PyError) {
	i, ok := asIntLike(v)
	if ok {
		return NewInt(^i), nil
	}
	if b, ok := v.(PyBigInt); ok {
		return NewBigInt(new(big.Int).Not(b.Val)), nil
	}
	return nil, pyerr.New(pyerr.TypeError, "bad operand type for unary ~: '%s'", v.Type().Name)
}

func floatNeg(v Object) (Object, *pyerr.PyError) {
	return NewFloat(-v.(PyFloat).Val), nil
}

func intBool(v Object) (bool, *pyerr.PyError) {
	switch n := v.(type) {
	case PyInt:
		return n.Val != 0, nil
	case PyBool:
		return n.Val, nil
	case PyBigInt:
		return n.Val.Sign() != 0, nil
	}
	return true, nil
}

func floatBool(v Object) (bool, *pyerr.PyError) {
	return v.(PyFloat).Val != 0, nil
}

func intRepr(v Object) (Object, *pyerr.PyError) {
	switch n := v.(type) {
	case PyInt:
		return NewStr(strconv.FormatInt(n.Val, 10)), nil
	case PyBigInt:
		return NewStr(n.Val.String()), nil
	}
	return nil, pyerr.New(pyerr.SystemError, "intRepr on non-int %T", v)
}

func boolRepr(v Object) (Object, *pyerr.PyError) {
	if v.(PyBool).Val {
		return NewStr("True"), nil
	}
	return NewStr("False"), nil
}

func floatRepr(v Object) (Object, *pyerr.PyError) {
	return NewStr(fmt.Sprintf("%g", v.(PyFloat).Val)), nil
}

// numCompare is IntType/FloatType's Compare[op] entry, resolving the pair's
// representation the same way numBinary does before comparing.
func numCompare(op bytecode.CompareOp) BinarySlot {
	return func(v, w Object) (Object, *pyerr.PyError) {
		_, vIsFloat := v.(PyFloat)
		_, wIsFloat := w.(PyFloat)
		var cmp int
		switch {
		case vIsFloat || wIsFloat:
			fv, ok1 := floatOf(v)
			fw, ok2 := floatOf(w)
			if !ok1 || !ok2 {
				return NotImplementedObj, nil
			}
			switch {
			case fv < fw:
				cmp = -1
			case fv > fw:
				cmp = 1
			default:
				cmp = 0
			}
		default:
			vb, vIsBig := v.(PyBigInt)
			wb, wIsBig := w.(PyBigInt)
			if vIsBig || wIsBig {
				a, b := bigOf(v), bigOf(w)
				if vIsBig {
					a = vb.Val
				}
				if wIsBig {
					b = wb.Val
				}
				if a == nil || b == nil {
					return NotImplementedObj, nil
				}
				cmp = a.Cmp(b)
			} else {
				vi, ok1 := asIntLike(v)
				wi, ok2 := asIntLike(w)
				if !ok1 || !ok2 {
					return NotImplementedObj, nil
				}
				switch {
				case vi < wi:
					cmp = -1
				case vi > wi:
					cmp = 1
				default:
					cmp = 0
				}
			}
		}
		switch op {
		case bytecode.CMP_LT:
			return Bool(cmp < 0), nil
		case bytecode.CMP_LE:
			return Bool(cmp <= 0), nil
		case bytecode.CMP_EQ:
			return Bool(cmp == 0), nil
		case bytecode.CMP_NE:
			return Bool(cmp != 0), nil
		case bytecode.CMP_GT:
			return Bool(cmp > 0), nil
		case bytecode.CMP_GE:
			return Bool(cmp >= 0), nil
		}
		return NotImplementedObj, nil
	}
}

// numBinary is IntType/FloatType's forward Binary[op] entry. It resolves
// the pair's host representation (small/big int, float) and dispatches to
// the matching concrete routine, implementing the "multi-representation
// type" resolution spec.md section 9 calls for.
func numBinary(op bytecode.NumericOp) BinarySlot {
	return func(v, w Object) (Object, *pyerr.PyError) {
		_, vIsFloat := v.(PyFloat)
		_, wIsFloat := w.(PyFloat)
		if vIsFloat || wIsFloat {
			fv, ok1 := floatOf(v)
			fw, ok2 := floatOf(w)
			if !ok1 || !ok2 {
				return NotImplementedObj, nil
			}
			return floatBinaryOp(op, fv, fw)
		}
		vb, vIsBig := v.(PyBigInt)
		wb, wIsBig := w.(PyBigInt)
		if vIsBig || wIsBig {
			var a, b *big.Int
			if vIsBig {
				a = vb.Val
			} else {
				a = bigOf(v)
			}
			if wIsBig {
				b = wb.Val
			} else {
				b = bigOf(w)
			}
			if a == nil || b == nil {
				return NotImplementedObj, nil
			}
			return bigBinaryOp(op, a, b)
		}
		vi, ok1 := asIntLike(v)
		wi, ok2 := asIntLike(w)
		if !ok1 || !ok2 {
			return NotImplementedObj, nil
		}
		return intBinaryOp(op, vi, wi)
	}
}
