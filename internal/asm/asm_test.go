package asm

import (
	"testing"

	"pyvm/internal/bytecode"
)

func TestEmitSingleByteArg(t *testing.T) {
	a := New("<test>")
	a.Emit(bytecode.LOAD_CONST, 5)
	code := a.Finish()
	if code.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", code.Len())
	}
	op, arg := bytecode.DecodeWord(code.Words[0])
	if op != bytecode.LOAD_CONST || arg != 5 {
		t.Fatalf("decoded (%v, %d), want (LOAD_CONST, 5)", op, arg)
	}
}

// TestEmitWideArgChainsExtendedArg mirrors the dispatch loop's own
// fetch() reconstruction: one EXTENDED_ARG word carrying the high byte,
// then the real instruction carrying the low byte.
func TestEmitWideArgChainsExtendedArg(t *testing.T) {
	a := New("<test>")
	a.Emit(bytecode.LOAD_CONST, 300)
	code := a.Finish()
	if code.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (one EXTENDED_ARG + the instruction)", code.Len())
	}
	op0, arg0 := bytecode.DecodeWord(code.Words[0])
	if op0 != bytecode.EXTENDED_ARG {
		t.Fatalf("Words[0] op = %v, want EXTENDED_ARG", op0)
	}
	op1, arg1 := bytecode.DecodeWord(code.Words[1])
	if op1 != bytecode.LOAD_CONST {
		t.Fatalf("Words[1] op = %v, want LOAD_CONST", op1)
	}
	reconstructed := int(arg0)<<8 | int(arg1)
	if reconstructed != 300 {
		t.Fatalf("reconstructed arg = %d, want 300", reconstructed)
	}
}

func TestForwardJumpDeltaLandsPastSkippedWord(t *testing.T) {
	a := New("<test>")
	label := NewLabel()
	a.EmitJumpForward(bytecode.JUMP_FORWARD, label) // word 0
	a.Emit(bytecode.NOP, 0)                         // word 1, to be skipped
	a.Bind(label)                                   // position 2
	code := a.Finish()

	_, arg := bytecode.DecodeWord(code.Words[0])
	ipAfterFetch := 1
	if ipAfterFetch+int(arg) != 2 {
		t.Fatalf("jump would land at %d, want 2", ipAfterFetch+int(arg))
	}
}

func TestBackwardJumpDeltaLandsOnBoundLabel(t *testing.T) {
	a := New("<test>")
	top := NewLabel()
	a.Bind(top)              // position 0
	a.Emit(bytecode.NOP, 0)  // word 0
	a.EmitJumpBackward(bytecode.JUMP_BACKWARD, top) // word 1
	code := a.Finish()

	_, arg := bytecode.DecodeWord(code.Words[1])
	ipAfterFetch := 2
	if ipAfterFetch-int(arg) != 0 {
		t.Fatalf("backward jump would land at %d, want 0", ipAfterFetch-int(arg))
	}
}

func TestAddConstantAndAddNamePassThrough(t *testing.T) {
	a := New("<test>")
	if idx := a.AddConstant(7); idx != 0 {
		t.Fatalf("AddConstant index = %d, want 0", idx)
	}
	if idx := a.AddName("x"); idx != 0 {
		t.Fatalf("AddName index = %d, want 0", idx)
	}
}
