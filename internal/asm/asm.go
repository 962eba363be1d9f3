// Package asm assembles (opcode, argument) pairs into a bytecode.Code,
// standing in for the real compiler spec.md section 1 rules out of scope.
// Adapted from the teacher's internal/compiler, which walks an AST and
// emits one opcode at a time onto a Chunk; this does the same thing
// directly from (op, arg) pairs instead of an AST, plus EXTENDED_ARG
// chaining and forward/backward jump-label resolution the teacher's
// one-byte-argument compiler never needed.
package asm

import "pyvm/internal/bytecode"

// Label names a not-yet-known instruction offset, bound once its target
// position is emitted.
type Label struct {
	bound    bool
	position int
}

// NewLabel returns an unbound label for a forward or backward jump.
func NewLabel() *Label { return &Label{} }

type pendingJump struct {
	wordIndex int
	label     *Label
	backward  bool
}

// Assembler builds one bytecode.Code, tracking jump fixups and emitting
// EXTENDED_ARG words for any argument wider than a byte.
type Assembler struct {
	code    *bytecode.Code
	debug   bytecode.DebugInfo
	pending []pendingJump
}

func New(qualName string) *Assembler {
	return &Assembler{code: bytecode.NewCode(qualName)}
}

// SetDebug sets the DebugInfo attached to subsequently emitted words.
func (a *Assembler) SetDebug(d bytecode.DebugInfo) { a.debug = d }

// Pos returns the current instruction count, i.e. the word index the next
// Emit call will land on.
func (a *Assembler) Pos() int { return a.code.Len() }

// AddConstant appends val to the constant pool, for a subsequent
// LOAD_CONST's argument.
func (a *Assembler) AddConstant(val interface{}) int { return a.code.AddConstant(val) }

// AddName interns name in the name pool, for a subsequent LOAD_NAME/
// LOAD_GLOBAL/LOAD_ATTR/LOAD_METHOD argument.
func (a *Assembler) AddName(name string) int { return a.code.AddName(name) }

// SetLayout installs the fast-locals layout a program's LOAD_FAST/
// STORE_FAST/MAKE_CELL/LOAD_DEREF words address.
func (a *Assembler) SetLayout(layout bytecode.Layout) { a.code.Layout = layout }

// extendedArgBytes splits arg into big-endian bytes, dropping leading
// zero bytes but always keeping at least one (spec.md section 4.6's
// EXTENDED_ARG chaining, mirrored at assembly time).
func extendedArgBytes(arg int) []byte {
	if arg < 0 {
		arg = 0
	}
	b := []byte{byte(arg >> 24), byte(arg >> 16), byte(arg >> 8), byte(arg)}
	i := 0
	for i < 3 && b[i] == 0 {
		i++
	}
	return b[i:]
}

// Emit appends op with arg, splitting arg across leading EXTENDED_ARG
// words when it doesn't fit in one byte. Returns the word index of the
// final (non-EXTENDED_ARG) word.
func (a *Assembler) Emit(op bytecode.OpCode, arg int) int {
	bytes := extendedArgBytes(arg)
	for _, b := range bytes[:len(bytes)-1] {
		a.code.WriteWord(bytecode.EXTENDED_ARG, b, a.debug)
	}
	a.code.WriteWord(op, bytes[len(bytes)-1], a.debug)
	return a.code.Len() - 1
}

// Bind fixes label to the current position (the word about to be
// emitted). Jumps recorded against it are resolved later, by Finish.
func (a *Assembler) Bind(label *Label) {
	label.bound = true
	label.position = a.Pos()
}

// EmitJumpForward emits a JUMP_FORWARD-family op (op's argument measures
// forward from the instruction after this one) targeting label, which
// must be Bind-ed later at a position ahead of this one.
func (a *Assembler) EmitJumpForward(op bytecode.OpCode, label *Label) {
	idx := a.Emit(op, 0)
	a.pending = append(a.pending, pendingJump{wordIndex: idx, label: label, backward: false})
}

// EmitJumpBackward emits a JUMP_BACKWARD-family op targeting label, which
// must already be Bind-ed (backward jumps always target a known position).
func (a *Assembler) EmitJumpBackward(op bytecode.OpCode, label *Label) {
	idx := a.Emit(op, 0)
	a.pending = append(a.pending, pendingJump{wordIndex: idx, label: label, backward: true})
}

// Finish resolves all pending jumps and returns the assembled Code.
// Resolved deltas are assumed to fit a single byte — ample for the
// hand-assembled test programs this package exists for; a delta that
// doesn't fit indicates the test program is too large for this helper.
func (a *Assembler) Finish() *bytecode.Code {
	for _, pj := range a.pending {
		op, _ := bytecode.DecodeWord(a.code.Words[pj.wordIndex])
		var delta int
		if pj.backward {
			delta = pj.wordIndex - pj.label.position + 1
		} else {
			delta = pj.label.position - pj.wordIndex - 1
		}
		if delta < 0 {
			delta = 0
		}
		a.code.Words[pj.wordIndex] = bytecode.EncodeWord(op, byte(delta))
	}
	return a.code
}
