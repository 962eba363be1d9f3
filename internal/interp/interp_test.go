package interp

import (
	"testing"

	"pyvm/internal/asm"
	"pyvm/internal/bytecode"
	"pyvm/internal/demo"
	"pyvm/internal/frame"
	"pyvm/internal/object"
	"pyvm/internal/pyerr"
)

func runProgram(t *testing.T, name string) object.Object {
	t.Helper()
	prog := demo.Lookup(name)
	if prog == nil {
		t.Fatalf("no demo program named %q", name)
	}
	f := frame.New(prog.Build(), object.Namespace{}, object.Namespace{}, nil)
	ts := frame.NewThreadState()
	result, err := Run(ts, f)
	if err != nil {
		t.Fatalf("running %q: %v", name, err)
	}
	return result
}

func TestArithScenario(t *testing.T) {
	r := runProgram(t, "arith")
	if got := r.(object.PyInt).Val; got != 7 {
		t.Fatalf("arith result = %d, want 7 (1 + 2 * 3)", got)
	}
}

func TestForLoopScenario(t *testing.T) {
	r := runProgram(t, "forloop")
	if got := r.(object.PyInt).Val; got != 6 {
		t.Fatalf("forloop result = %d, want 6 (1 + 2 + 3)", got)
	}
}

func TestClosureScenario(t *testing.T) {
	r := runProgram(t, "closure")
	if got := r.(object.PyInt).Val; got != 15 {
		t.Fatalf("closure result = %d, want 15 (10 + 5)", got)
	}
}

func TestUnpackScenario(t *testing.T) {
	r := runProgram(t, "unpack")
	if got := r.(object.PyInt).Val; got != 6 {
		t.Fatalf("unpack result = %d, want 6 (1 + 2 + 3)", got)
	}
}

func TestMethodScenarioUsesLoadMethodFastPath(t *testing.T) {
	before := object.StrMethodCallCount()
	r := runProgram(t, "method")
	if got := r.(object.PyStr).Val; got != "HELLO" {
		t.Fatalf("method result = %q, want \"HELLO\"", got)
	}
	if got := object.StrMethodCallCount(); got != before+1 {
		t.Fatalf("StrMethodCallCount increased by %d, want 1 (no extra bound-method allocation overhead)", got-before)
	}
}

// TestParamCaptureClosureScenario pins down the bindArgs/MAKE_CELL
// interaction: outer's only parameter is captured by a nested closure, so
// its fast-locals slot has VarCell trait but must still receive the call
// argument (spec.md section 4.4).
func TestParamCaptureClosureScenario(t *testing.T) {
	r := runProgram(t, "paramclosure")
	if got := r.(object.PyInt).Val; got != 7 {
		t.Fatalf("paramclosure result = %d, want 7 (the captured argument)", got)
	}
}

// TestMakeCellPreservesPriorFastValue exercises MAKE_CELL's contract
// directly: "MAKE_CELL i followed immediately by LOAD_DEREF i yields the
// value that was in fast[i] before the MAKE_CELL" (spec.md section 8).
// The slot is declared VarPlain so frame.New leaves fast[0] as a plain
// value rather than pre-creating a cell, forcing MAKE_CELL to wrap
// whatever STORE_FAST already put there.
func TestMakeCellPreservesPriorFastValue(t *testing.T) {
	a := asm.New("<makecell>")
	a.SetLayout(bytecode.Layout{
		Size: 1,
		Vars: []bytecode.VarInfo{{Name: "x", Trait: bytecode.VarPlain}},
	})
	forty2 := a.AddConstant(object.NewInt(42))
	a.Emit(bytecode.LOAD_CONST, forty2)
	a.Emit(bytecode.STORE_FAST, 0)
	a.Emit(bytecode.MAKE_CELL, 0)
	a.Emit(bytecode.LOAD_DEREF, 0)
	a.Emit(bytecode.RETURN_VALUE, 0)
	code := a.Finish()

	f := frame.New(code, object.Namespace{}, object.Namespace{}, nil)
	ts := frame.NewThreadState()
	r, err := Run(ts, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.(object.PyInt).Val; got != 42 {
		t.Fatalf("result = %d, want 42 (the value stored before MAKE_CELL)", got)
	}
}

// TestMalformedBuildConstKeyMapRaisesSystemError exercises spec.md
// section 7's named failure case: BUILD_CONST_KEY_MAP expects a tuple of
// keys under the values on the stack; a mismatched operand must raise
// SystemError rather than panic the dispatch loop.
func TestMalformedBuildConstKeyMapRaisesSystemError(t *testing.T) {
	a := asm.New("<badkeymap>")
	notATuple := a.AddConstant(object.NewInt(1))
	value := a.AddConstant(object.NewInt(2))
	a.Emit(bytecode.LOAD_CONST, value)
	a.Emit(bytecode.LOAD_CONST, notATuple)
	a.Emit(bytecode.BUILD_CONST_KEY_MAP, 1)
	a.Emit(bytecode.RETURN_VALUE, 0)
	code := a.Finish()

	f := frame.New(code, object.Namespace{}, object.Namespace{}, nil)
	ts := frame.NewThreadState()
	_, err := Run(ts, f)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if err.Kind != pyerr.SystemError {
		t.Fatalf("err.Kind = %v, want SystemError", err.Kind)
	}
}

// TestExtendedArgChaining builds a LOAD_CONST with a 300-entry constant
// pool so the real argument only fits after one EXTENDED_ARG word, and
// checks the dispatch loop's fetch() reconstructs it correctly end to end.
func TestExtendedArgChaining(t *testing.T) {
	a := asm.New("<extarg>")
	var last int
	for i := 0; i < 300; i++ {
		last = a.AddConstant(object.NewInt(int64(i)))
	}
	a.Emit(bytecode.LOAD_CONST, last)
	a.Emit(bytecode.RETURN_VALUE, 0)
	code := a.Finish()

	f := frame.New(code, object.Namespace{}, object.Namespace{}, nil)
	ts := frame.NewThreadState()
	r, err := Run(ts, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.(object.PyInt).Val; got != 299 {
		t.Fatalf("result = %d, want 299 (the 300th interned constant)", got)
	}
}

// TestJumpForwardThenBackwardRoundTrip exercises a tiny loop assembled
// directly (rather than via internal/demo) to pin down JUMP_FORWARD's and
// JUMP_BACKWARD's delta arithmetic against the dispatch loop's actual
// fetch()/IP sequencing.
func TestJumpForwardThenBackwardRoundTrip(t *testing.T) {
	a := asm.New("<loop>")
	a.SetLayout(bytecode.Layout{
		Size: 1,
		Vars: []bytecode.VarInfo{{Name: "i", Trait: bytecode.VarPlain}},
	})
	zero := a.AddConstant(object.NewInt(0))
	three := a.AddConstant(object.NewInt(3))
	one := a.AddConstant(object.NewInt(1))

	top := asm.NewLabel()
	done := asm.NewLabel()

	a.Emit(bytecode.LOAD_CONST, zero)
	a.Emit(bytecode.STORE_FAST, 0) // i = 0

	a.Bind(top)
	a.Emit(bytecode.LOAD_FAST, 0)
	a.Emit(bytecode.LOAD_CONST, three)
	a.Emit(bytecode.COMPARE_OP, int(bytecode.CMP_LT)) // i < 3
	a.EmitJumpForward(bytecode.POP_JUMP_FORWARD_IF_FALSE, done)

	a.Emit(bytecode.LOAD_FAST, 0)
	a.Emit(bytecode.LOAD_CONST, one)
	a.Emit(bytecode.BINARY_OP, int(bytecode.NB_ADD))
	a.Emit(bytecode.STORE_FAST, 0) // i += 1
	a.EmitJumpBackward(bytecode.JUMP_BACKWARD, top)

	a.Bind(done)
	a.Emit(bytecode.LOAD_FAST, 0)
	a.Emit(bytecode.RETURN_VALUE, 0)
	code := a.Finish()

	f := frame.New(code, object.Namespace{}, object.Namespace{}, nil)
	ts := frame.NewThreadState()
	r, err := Run(ts, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.(object.PyInt).Val; got != 3 {
		t.Fatalf("result = %d, want 3", got)
	}
}
