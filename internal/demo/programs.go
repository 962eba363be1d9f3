// Package demo holds hand-assembled bytecode.Code sample programs that
// exercise the interpreter end to end, shared by cmd/pyvm's run/disasm
// subcommands and internal/repl.
package demo

import (
	"pyvm/internal/asm"
	"pyvm/internal/bytecode"
	"pyvm/internal/object"
)

// Program is one of the hand-assembled bytecode.Code objects pyvm's
// run/disasm subcommands and the REPL operate on. There is no
// source-level compiler in this tree (spec.md section 1 rules it out of
// scope), so these stand in for ".py files" the way the teacher's
// examples/*.sn scripts stand in for real Sentra programs.
type Program struct {
	Name        string
	Description string
	Build       func() *bytecode.Code
}

var Programs = []Program{
	{"arith", "1 + 2 * 3 via LOAD_CONST/BINARY_OP", buildArithProgram},
	{"forloop", "sum of a tuple via GET_ITER/FOR_ITER", buildForLoopProgram},
	{"closure", "a nested function closing over an outer local", buildClosureProgram},
	{"unpack", "a, b, c = (1, 2, 3) via UNPACK_SEQUENCE", buildUnpackProgram},
	{"method", "LOAD_METHOD fast path calling str.upper()", buildMethodProgram},
	{"paramclosure", "a parameter captured by a nested closure", buildParamClosureProgram},
}

// Lookup finds a Program by name, or nil if none matches.
func Lookup(name string) *Program {
	for i := range Programs {
		if Programs[i].Name == name {
			return &Programs[i]
		}
	}
	return nil
}

// buildArithProgram assembles: return 1 + 2 * 3. BINARY_OP's stack effect
// is [lhs, rhs] -> [lhs op rhs], so 1 is pushed first and left on the
// stack while 2*3 is computed on top of it.
func buildArithProgram() *bytecode.Code {
	a := asm.New("<arith>")
	one := a.AddConstant(object.NewInt(1))
	two := a.AddConstant(object.NewInt(2))
	three := a.AddConstant(object.NewInt(3))
	a.Emit(bytecode.LOAD_CONST, one)
	a.Emit(bytecode.LOAD_CONST, two)
	a.Emit(bytecode.LOAD_CONST, three)
	a.Emit(bytecode.BINARY_OP, int(bytecode.NB_MULTIPLY))
	a.Emit(bytecode.BINARY_OP, int(bytecode.NB_ADD))
	a.Emit(bytecode.RETURN_VALUE, 0)
	return a.Finish()
}

// buildForLoopProgram assembles: total = 0; for x in (1, 2, 3): total += x; return total
func buildForLoopProgram() *bytecode.Code {
	a := asm.New("<forloop>")
	a.SetLayout(bytecode.Layout{
		Size: 2,
		Vars: []bytecode.VarInfo{{Name: "total", Trait: bytecode.VarPlain}, {Name: "x", Trait: bytecode.VarPlain}},
	})
	zero := a.AddConstant(object.NewInt(0))
	one := a.AddConstant(object.NewInt(1))
	two := a.AddConstant(object.NewInt(2))
	three := a.AddConstant(object.NewInt(3))

	loopTop := asm.NewLabel()
	loopEnd := asm.NewLabel()

	a.Emit(bytecode.LOAD_CONST, zero)
	a.Emit(bytecode.STORE_FAST, 0) // total = 0

	a.Emit(bytecode.LOAD_CONST, one)
	a.Emit(bytecode.LOAD_CONST, two)
	a.Emit(bytecode.LOAD_CONST, three)
	a.Emit(bytecode.BUILD_TUPLE, 3)
	a.Emit(bytecode.GET_ITER, 0)

	a.Bind(loopTop)
	a.EmitJumpForward(bytecode.FOR_ITER, loopEnd)
	a.Emit(bytecode.STORE_FAST, 1) // x = <next>
	a.Emit(bytecode.LOAD_FAST, 0)
	a.Emit(bytecode.LOAD_FAST, 1)
	a.Emit(bytecode.BINARY_OP, int(bytecode.NB_INPLACE_ADD))
	a.Emit(bytecode.STORE_FAST, 0)
	a.EmitJumpBackward(bytecode.JUMP_BACKWARD, loopTop)

	a.Bind(loopEnd)
	a.Emit(bytecode.LOAD_FAST, 0)
	a.Emit(bytecode.RETURN_VALUE, 0)
	return a.Finish()
}

// buildClosureProgram assembles an outer function that binds x=10 in a
// cell, builds a nested function closing over it, calls the nested
// function, and returns its result (x + 5).
func buildClosureProgram() *bytecode.Code {
	inner := asm.New("<closure>.<locals>.inner")
	inner.SetLayout(bytecode.Layout{
		Size:           1,
		FreeCount:      1,
		FirstFreeIndex: 0,
		Vars:           []bytecode.VarInfo{{Name: "x", Trait: bytecode.VarFree}},
	})
	five := inner.AddConstant(object.NewInt(5))
	inner.Emit(bytecode.LOAD_DEREF, 0)
	inner.Emit(bytecode.LOAD_CONST, five)
	inner.Emit(bytecode.BINARY_OP, int(bytecode.NB_ADD))
	inner.Emit(bytecode.RETURN_VALUE, 0)
	innerCode := inner.Finish()

	outer := asm.New("<closure>")
	outer.SetLayout(bytecode.Layout{
		Size:      1,
		CellCount: 1,
		Vars:      []bytecode.VarInfo{{Name: "x", Trait: bytecode.VarCell}},
	})
	ten := outer.AddConstant(object.NewInt(10))
	innerConst := outer.AddConstant(object.NewCodeObj(innerCode))

	outer.Emit(bytecode.MAKE_CELL, 0)
	outer.Emit(bytecode.LOAD_CONST, ten)
	outer.Emit(bytecode.STORE_DEREF, 0)

	outer.Emit(bytecode.LOAD_CLOSURE, 0)
	outer.Emit(bytecode.BUILD_TUPLE, 1)
	outer.Emit(bytecode.LOAD_CONST, innerConst)
	outer.Emit(bytecode.MAKE_FUNCTION, 0x08) // closure only

	outer.Emit(bytecode.PUSH_NULL, 0)
	outer.Emit(bytecode.CALL, 0)
	outer.Emit(bytecode.RETURN_VALUE, 0)
	return outer.Finish()
}

// buildParamClosureProgram assembles:
//
//	def outer(x):
//	    def inner(): return x
//	    return inner
//	return outer(7)()
//
// outer's sole parameter x is captured by inner, so its fast-locals slot
// has VarCell trait even though it is also bound from the call argument —
// the case bindArgs/MAKE_CELL must cooperate on (spec.md section 4.4).
func buildParamClosureProgram() *bytecode.Code {
	inner := asm.New("<paramclosure>.<locals>.outer.<locals>.inner")
	inner.SetLayout(bytecode.Layout{
		Size:           1,
		FreeCount:      1,
		FirstFreeIndex: 0,
		Vars:           []bytecode.VarInfo{{Name: "x", Trait: bytecode.VarFree}},
	})
	inner.Emit(bytecode.LOAD_DEREF, 0)
	inner.Emit(bytecode.RETURN_VALUE, 0)
	innerCode := inner.Finish()

	outer := asm.New("<paramclosure>.<locals>.outer")
	outer.SetLayout(bytecode.Layout{
		Size:      1,
		ArgCount:  1,
		CellCount: 1,
		Vars:      []bytecode.VarInfo{{Name: "x", Trait: bytecode.VarCell}},
	})
	innerConst := outer.AddConstant(object.NewCodeObj(innerCode))

	outer.Emit(bytecode.MAKE_CELL, 0)
	outer.Emit(bytecode.LOAD_CLOSURE, 0)
	outer.Emit(bytecode.BUILD_TUPLE, 1)
	outer.Emit(bytecode.LOAD_CONST, innerConst)
	outer.Emit(bytecode.MAKE_FUNCTION, 0x08) // closure only
	outer.Emit(bytecode.RETURN_VALUE, 0)
	outerCode := outer.Finish()

	a := asm.New("<paramclosure>")
	outerConst := a.AddConstant(object.NewCodeObj(outerCode))
	seven := a.AddConstant(object.NewInt(7))

	a.Emit(bytecode.LOAD_CONST, outerConst)
	a.Emit(bytecode.MAKE_FUNCTION, 0)
	a.Emit(bytecode.PUSH_NULL, 0)
	a.Emit(bytecode.LOAD_CONST, seven)
	a.Emit(bytecode.CALL, 1) // outer(7) -> inner

	a.Emit(bytecode.PUSH_NULL, 0)
	a.Emit(bytecode.CALL, 0) // inner() -> 7
	a.Emit(bytecode.RETURN_VALUE, 0)
	return a.Finish()
}

// buildUnpackProgram assembles: a, b, c = (1, 2, 3); return a + b + c
func buildUnpackProgram() *bytecode.Code {
	a := asm.New("<unpack>")
	a.SetLayout(bytecode.Layout{
		Size: 3,
		Vars: []bytecode.VarInfo{
			{Name: "a", Trait: bytecode.VarPlain},
			{Name: "b", Trait: bytecode.VarPlain},
			{Name: "c", Trait: bytecode.VarPlain},
		},
	})
	one := a.AddConstant(object.NewInt(1))
	two := a.AddConstant(object.NewInt(2))
	three := a.AddConstant(object.NewInt(3))

	a.Emit(bytecode.LOAD_CONST, one)
	a.Emit(bytecode.LOAD_CONST, two)
	a.Emit(bytecode.LOAD_CONST, three)
	a.Emit(bytecode.BUILD_TUPLE, 3)
	a.Emit(bytecode.UNPACK_SEQUENCE, 3)
	// UNPACK_SEQUENCE leaves the first element on top of stack, so the
	// first STORE_FAST binds it.
	a.Emit(bytecode.STORE_FAST, 0)
	a.Emit(bytecode.STORE_FAST, 1)
	a.Emit(bytecode.STORE_FAST, 2)

	a.Emit(bytecode.LOAD_FAST, 0)
	a.Emit(bytecode.LOAD_FAST, 1)
	a.Emit(bytecode.BINARY_OP, int(bytecode.NB_ADD))
	a.Emit(bytecode.LOAD_FAST, 2)
	a.Emit(bytecode.BINARY_OP, int(bytecode.NB_ADD))
	a.Emit(bytecode.RETURN_VALUE, 0)
	return a.Finish()
}

// buildMethodProgram assembles: s = "hello"; return s.upper()
func buildMethodProgram() *bytecode.Code {
	a := asm.New("<method>")
	a.SetLayout(bytecode.Layout{
		Size: 1,
		Vars: []bytecode.VarInfo{{Name: "s", Trait: bytecode.VarPlain}},
	})
	hello := a.AddConstant(object.NewStr("hello"))
	upperName := a.AddName("upper")

	a.Emit(bytecode.LOAD_CONST, hello)
	a.Emit(bytecode.STORE_FAST, 0)
	a.Emit(bytecode.LOAD_FAST, 0)
	a.Emit(bytecode.LOAD_METHOD, upperName)
	a.Emit(bytecode.CALL, 0)
	a.Emit(bytecode.RETURN_VALUE, 0)
	return a.Finish()
}
