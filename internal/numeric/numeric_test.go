package numeric

import (
	"testing"

	"pyvm/internal/bytecode"
	"pyvm/internal/object"
	"pyvm/internal/pyerr"
)

func TestBinaryOpIntAdd(t *testing.T) {
	r, err := BinaryOp(bytecode.NB_ADD, object.NewInt(1), object.NewInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.(object.PyInt).Val; got != 3 {
		t.Fatalf("1 + 2 = %d, want 3", got)
	}
}

func TestBinaryOpUnsupportedRaisesTypeError(t *testing.T) {
	_, err := BinaryOp(bytecode.NB_ADD, object.NewInt(1), object.NewStr("x"))
	if err == nil {
		t.Fatal("expected a TypeError, got nil")
	}
	if err.Kind != pyerr.TypeError {
		t.Fatalf("err.Kind = %v, want TypeError", err.Kind)
	}
}

// subNum is a minimal object.Object whose Type is a subclass of IntType
// overriding NB_ADD's reflected slot, to exercise BinaryOp's
// subclass-priority rule: the right operand's reflected slot is tried
// before the left operand's forward slot when the right operand's type is
// a proper subclass of the left's.
type subNum struct{ v int64 }

func (subNum) Type() *object.Type { return subIntType }

var subIntType = object.NewType("subint", object.IntType, object.SlotTable{}, nil)

func TestBinaryOpSubclassReflectedWinsOverForward(t *testing.T) {
	called := ""
	subIntType.Slots.RBinary[bytecode.NB_ADD] = func(v, w object.Object) (object.Object, *pyerr.PyError) {
		called = "reflected"
		return object.NewStr("reflected-result"), nil
	}
	defer func() { subIntType.Slots.RBinary[bytecode.NB_ADD] = nil }()

	r, err := BinaryOp(bytecode.NB_ADD, object.NewInt(1), subNum{2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != "reflected" {
		t.Fatal("reflected slot was not invoked before the forward slot")
	}
	if got := r.(object.PyStr).Val; got != "reflected-result" {
		t.Fatalf("result = %q, want \"reflected-result\"", got)
	}
}

func TestCompareFallsBackToIdentityForEq(t *testing.T) {
	a := object.NewInstance(object.ObjectType)
	b := object.NewInstance(object.ObjectType)

	r, err := Compare(bytecode.CMP_EQ, a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != object.True {
		t.Fatal("a == a should be True via identity fallback")
	}

	r, err = Compare(bytecode.CMP_EQ, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != object.False {
		t.Fatal("a == b (distinct instances) should be False via identity fallback")
	}
}

func TestCompareIntGTAndLT(t *testing.T) {
	r, err := Compare(bytecode.CMP_GT, object.NewInt(1), object.NewInt(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != object.False {
		t.Fatal("1 > 5 should be False")
	}
	r, err = Compare(bytecode.CMP_LT, object.NewInt(1), object.NewInt(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != object.True {
		t.Fatal("1 < 5 should be True")
	}
}

func TestContainsOnTuple(t *testing.T) {
	tup := object.NewTuple([]object.Object{object.NewInt(1), object.NewInt(2)})

	ok, err := Contains(tup, object.NewInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("2 in (1, 2) should be true")
	}

	ok, err = Contains(tup, object.NewInt(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("3 in (1, 2) should be false")
	}
}
