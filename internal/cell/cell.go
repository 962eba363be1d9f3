// Package cell implements the mutable single-slot container closures
// share between an enclosing and one or more enclosed frames (spec.md
// section 4.4).
package cell

import (
	"pyvm/internal/object"
	"pyvm/internal/pyerr"
)

// Cell holds a value of interface{} rather than object.Object to avoid a
// dependency cycle (object.PyFunction.Closure holds []*Cell, and Cell
// would otherwise need to import object for nothing but the interface
// type). Callers always store/retrieve object.Object values through it.
//
// Cell still implements object.Object itself (Type below): LOAD_CLOSURE
// and BUILD_TUPLE push/pack cells through the ordinary value stack on
// their way into MAKE_FUNCTION's closure operand (spec.md section 4.4),
// so a cell has to be a real object like CPython's own cell type.
type Cell struct {
	value interface{}
	full  bool
}

// CellType is the host equivalent of CPython's cell type: an object with
// no Python-visible attributes or operations beyond repr.
var CellType = object.NewType("cell", object.ObjectType, object.SlotTable{Repr: cellRepr}, nil)

func (c *Cell) Type() *object.Type { return CellType }

func cellRepr(o object.Object) (object.Object, *pyerr.PyError) {
	c := o.(*Cell)
	if !c.full {
		return object.NewStr("<cell [empty]>"), nil
	}
	return object.NewStr("<cell>"), nil
}

// New creates an empty cell (spec.md: "MAKE_CELL ... a fresh cell
// initialized to ... empty").
func New() *Cell { return &Cell{} }

// NewWithValue creates a cell already holding v, the MAKE_CELL case where
// fast[i] had an initial value from argument passing.
func NewWithValue(v interface{}) *Cell { return &Cell{value: v, full: true} }

// Get returns the held value and whether the cell is full.
func (c *Cell) Get() (interface{}, bool) { return c.value, c.full }

// Set stores v and marks the cell full (STORE_DEREF).
func (c *Cell) Set(v interface{}) {
	c.value = v
	c.full = true
}

// Delete empties the cell, returning whether it was full beforehand so
// DELETE_DEREF can raise when emptying an already-empty cell.
func (c *Cell) Delete() bool {
	wasFull := c.full
	c.value = nil
	c.full = false
	return wasFull
}
