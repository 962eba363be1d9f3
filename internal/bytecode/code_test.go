package bytecode

import "testing"

func TestEncodeDecodeWordRoundTrip(t *testing.T) {
	word := EncodeWord(LOAD_CONST, 0xAB)
	op, arg := DecodeWord(word)
	if op != LOAD_CONST {
		t.Fatalf("op = %v, want LOAD_CONST", op)
	}
	if arg != 0xAB {
		t.Fatalf("arg = %d, want 0xAB", arg)
	}
}

func TestAddConstantAppendsAndIndexes(t *testing.T) {
	c := NewCode("<test>")
	i0 := c.AddConstant(1)
	i1 := c.AddConstant("two")
	if i0 != 0 || i1 != 1 {
		t.Fatalf("indices = %d, %d, want 0, 1", i0, i1)
	}
	if len(c.Constants) != 2 {
		t.Fatalf("len(Constants) = %d, want 2", len(c.Constants))
	}
}

func TestAddNameInterns(t *testing.T) {
	c := NewCode("<test>")
	i0 := c.AddName("x")
	i1 := c.AddName("y")
	i2 := c.AddName("x")
	if i0 != 0 || i1 != 1 {
		t.Fatalf("first two names = %d, %d, want 0, 1", i0, i1)
	}
	if i2 != i0 {
		t.Fatalf("repeated name got new index %d, want %d", i2, i0)
	}
	if len(c.Names) != 2 {
		t.Fatalf("len(Names) = %d, want 2", len(c.Names))
	}
}

func TestWriteWordAndDebugAt(t *testing.T) {
	c := NewCode("<test>")
	c.WriteWord(LOAD_FAST, 1, DebugInfo{Line: 7})
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if got := c.DebugAt(0).Line; got != 7 {
		t.Fatalf("DebugAt(0).Line = %d, want 7", got)
	}
	if got := c.DebugAt(99); got != (DebugInfo{}) {
		t.Fatalf("DebugAt(out of range) = %+v, want zero value", got)
	}
}

func TestNumericOpStringUsesNonInPlaceSpelling(t *testing.T) {
	if got := NB_INPLACE_ADD.String(); got != "+" {
		t.Fatalf("NB_INPLACE_ADD.String() = %q, want %q", got, "+")
	}
	if got := NB_SUBTRACT.String(); got != "-" {
		t.Fatalf("NB_SUBTRACT.String() = %q, want %q", got, "-")
	}
}

func TestNumericOpIsInPlace(t *testing.T) {
	if NB_ADD.IsInPlace() {
		t.Fatal("NB_ADD.IsInPlace() = true, want false")
	}
	if !NB_INPLACE_ADD.IsInPlace() {
		t.Fatal("NB_INPLACE_ADD.IsInPlace() = false, want true")
	}
	if NB_INPLACE_XOR.NonInPlace() != NB_XOR {
		t.Fatalf("NB_INPLACE_XOR.NonInPlace() = %v, want NB_XOR", NB_INPLACE_XOR.NonInPlace())
	}
}

func TestCompareOpString(t *testing.T) {
	cases := map[CompareOp]string{
		CMP_LT: "<", CMP_LE: "<=", CMP_EQ: "==", CMP_NE: "!=", CMP_GT: ">", CMP_GE: ">=",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", op, got, want)
		}
	}
}
