package object

import (
	"pyvm/internal/bytecode"
	"pyvm/internal/pyerr"
)

// Slot function shapes. A nil field means "this type (and, after
// inheritance merging, none of its bases) define this slot" — the tagged
// Slot::{Empty|Handle} variant spec.md section 9 asks for, made explicit
// instead of sentinel-valued. Binary slots return NotImplementedObj
// (not an error) to signal "try the other side", per spec.md section 4.3.
type (
	UnarySlot    func(v Object) (Object, *pyerr.PyError)
	BinarySlot   func(v, w Object) (Object, *pyerr.PyError)
	BoolSlot     func(v Object) (bool, *pyerr.PyError)
	LenSlot      func(v Object) (int, *pyerr.PyError)
	HashSlot     func(v Object) (int64, *pyerr.PyError)
	CallSlot     func(fn Object, args []Object, kwargs map[string]Object) (Object, *pyerr.PyError)
	GetAttrSlot  func(obj Object, name string) (Object, *pyerr.PyError)
	SetAttrSlot  func(obj Object, name string, val Object) *pyerr.PyError
	DelAttrSlot  func(obj Object, name string) *pyerr.PyError
	GetItemSlot  func(obj, key Object) (Object, *pyerr.PyError)
	SetItemSlot  func(obj, key, val Object) *pyerr.PyError
	DelItemSlot  func(obj, key Object) *pyerr.PyError
	ContainsSlot func(container, item Object) (bool, *pyerr.PyError)
	IterSlot     func(obj Object) (Object, *pyerr.PyError)
	NextSlot     func(obj Object) (Object, *pyerr.PyError) // returns StopIteration PyError when exhausted
)

// numBinaryOps is the number of non-in-place numeric operators
// (NB_ADD..NB_XOR in bytecode.NumericOp); the in-place table is the same
// size, one in-place variant per non-augmented operator.
const numBinaryOps = int(bytecode.NB_INPLACE_ADD)

// SlotTable is a type's method table (spec.md section 4.1). A Python type
// with several host representations (e.g. int as boxed-small/big) is
// handled by giving each representation's own concrete Go Add/etc.
// function a type switch internally rather than by a second table
// dimension here; resolution still happens once, at slot-lookup time, as
// section 9's "Multi-representation types" note asks.
type SlotTable struct {
	Neg, Invert, Abs, Index, ToInt, ToFloat, Iter, Next UnarySlot
	Repr, Str                                           UnarySlot // return a PyStr; see str.go helpers
	Hash                                                 HashSlot
	Bool                                                 BoolSlot
	Len                                                  LenSlot
	Call                                                 CallSlot
	GetAttribute                                         GetAttrSlot // overridable generic getattr; nil means "use the default algorithm" (spec.md 4.5)
	SetAttr                                              SetAttrSlot
	DelAttr                                               DelAttrSlot
	GetItem                                              GetItemSlot
	SetItem                                              SetItemSlot
	DelItem                                              DelItemSlot
	Contains                                             ContainsSlot

	Binary        [numBinaryOps]BinarySlot
	RBinary       [numBinaryOps]BinarySlot
	InplaceBinary [numBinaryOps]BinarySlot

	Compare [6]BinarySlot // indexed by bytecode.CompareOp
}

// mergeSlots returns a copy of child with every nil field filled in from
// base, implementing slot inheritance at type-construction time so call
// sites never need to walk the MRO (spec.md section 4.1's "MRO-resolved
// slot table").
func mergeSlots(child, base SlotTable) SlotTable {
	fill := func(dst *UnarySlot, src UnarySlot) {
		if *dst == nil {
			*dst = src
		}
	}
	fill(&child.Neg, base.Neg)
	fill(&child.Invert, base.Invert)
	fill(&child.Abs, base.Abs)
	fill(&child.Index, base.Index)
	fill(&child.ToInt, base.ToInt)
	fill(&child.ToFloat, base.ToFloat)
	fill(&child.Iter, base.Iter)
	fill(&child.Next, base.Next)
	fill(&child.Repr, base.Repr)
	fill(&child.Str, base.Str)
	if child.Hash == nil {
		child.Hash = base.Hash
	}
	if child.Bool == nil {
		child.Bool = base.Bool
	}
	if child.Len == nil {
		child.Len = base.Len
	}
	if child.Call == nil {
		child.Call = base.Call
	}
	if child.GetAttribute == nil {
		child.GetAttribute = base.GetAttribute
	}
	if child.SetAttr == nil {
		child.SetAttr = base.SetAttr
	}
	if child.DelAttr == nil {
		child.DelAttr = base.DelAttr
	}
	if child.GetItem == nil {
		child.GetItem = base.GetItem
	}
	if child.SetItem == nil {
		child.SetItem = base.SetItem
	}
	if child.DelItem == nil {
		child.DelItem = base.DelItem
	}
	if child.Contains == nil {
		child.Contains = base.Contains
	}
	for i := 0; i < numBinaryOps; i++ {
		if child.Binary[i] == nil {
			child.Binary[i] = base.Binary[i]
		}
		if child.RBinary[i] == nil {
			child.RBinary[i] = base.RBinary[i]
		}
		if child.InplaceBinary[i] == nil {
			child.InplaceBinary[i] = base.InplaceBinary[i]
		}
	}
	for i := range child.Compare {
		if child.Compare[i] == nil {
			child.Compare[i] = base.Compare[i]
		}
	}
	return child
}
