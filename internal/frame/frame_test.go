package frame

import (
	"testing"

	"pyvm/internal/bytecode"
	"pyvm/internal/object"
	"pyvm/internal/pyerr"
)

func plainCode(vars ...string) *bytecode.Code {
	c := bytecode.NewCode("<test>")
	infos := make([]bytecode.VarInfo, len(vars))
	for i, v := range vars {
		infos[i] = bytecode.VarInfo{Name: v, Trait: bytecode.VarPlain}
	}
	c.Layout = bytecode.Layout{Size: len(vars), Vars: infos}
	return c
}

func TestLoadFastStoreFastRoundTrip(t *testing.T) {
	f := New(plainCode("x"), object.Namespace{}, object.Namespace{}, nil)
	f.StoreFast(0, object.NewInt(5))
	v, err := f.LoadFast(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(object.PyInt).Val != 5 {
		t.Fatalf("LoadFast = %v, want 5", v)
	}
}

func TestLoadFastUnboundRaisesUnboundLocalError(t *testing.T) {
	f := New(plainCode("x"), object.Namespace{}, object.Namespace{}, nil)
	_, err := f.LoadFast(0)
	if err == nil {
		t.Fatal("expected an error for an unbound local, got nil")
	}
	if err.Kind != pyerr.UnboundLocalError {
		t.Fatalf("err.Kind = %v, want UnboundLocalError", err.Kind)
	}
}

func TestDeleteFastThenLoadRaises(t *testing.T) {
	f := New(plainCode("x"), object.Namespace{}, object.Namespace{}, nil)
	f.StoreFast(0, object.NewInt(1))
	if err := f.DeleteFast(0); err != nil {
		t.Fatalf("unexpected error deleting: %v", err)
	}
	if _, err := f.LoadFast(0); err == nil {
		t.Fatal("expected an error loading a deleted local, got nil")
	}
}

func TestDeleteFastOnUnboundRaises(t *testing.T) {
	f := New(plainCode("x"), object.Namespace{}, object.Namespace{}, nil)
	if err := f.DeleteFast(0); err == nil {
		t.Fatal("expected an error deleting an already-unbound local, got nil")
	}
}

func cellCode(name string) *bytecode.Code {
	c := bytecode.NewCode("<test>")
	c.Layout = bytecode.Layout{
		Size:      1,
		CellCount: 1,
		Vars:      []bytecode.VarInfo{{Name: name, Trait: bytecode.VarCell}},
	}
	return c
}

func TestStoreDerefLoadDerefRoundTrip(t *testing.T) {
	f := New(cellCode("x"), object.Namespace{}, object.Namespace{}, nil)
	f.StoreDeref(0, object.NewInt(7))
	v, err := f.LoadDeref(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(object.PyInt).Val != 7 {
		t.Fatalf("LoadDeref = %v, want 7", v)
	}
}

func TestLoadDerefUnboundRaisesUnboundLocalError(t *testing.T) {
	f := New(cellCode("x"), object.Namespace{}, object.Namespace{}, nil)
	_, err := f.LoadDeref(0)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if err.Kind != pyerr.UnboundLocalError {
		t.Fatalf("err.Kind = %v, want UnboundLocalError", err.Kind)
	}
}

func TestDeleteDerefThenLoadRaisesNameError(t *testing.T) {
	f := New(cellCode("x"), object.Namespace{}, object.Namespace{}, nil)
	f.StoreDeref(0, object.NewInt(1))
	if err := f.DeleteDeref(0); err != nil {
		t.Fatalf("unexpected error deleting: %v", err)
	}
	_, err := f.LoadDeref(0)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

func TestLocalsMaterializesPlainAndCellSlotsButSkipsFreeVars(t *testing.T) {
	c := bytecode.NewCode("<test>")
	c.Layout = bytecode.Layout{
		Size:           3,
		CellCount:      1,
		FreeCount:      1,
		FirstFreeIndex: 2,
		Vars: []bytecode.VarInfo{
			{Name: "plain", Trait: bytecode.VarPlain},
			{Name: "cell", Trait: bytecode.VarCell},
			{Name: "free", Trait: bytecode.VarFree},
		},
	}
	f := New(c, object.Namespace{}, object.Namespace{}, nil)
	f.StoreFast(0, object.NewInt(1))
	f.StoreDeref(1, object.NewInt(2))
	// slot 2 (free) is left unbound by New(); Locals() must not look inside it.

	d := f.Locals()
	v, ok, err := d.Get(object.NewStr("plain"))
	if err != nil || !ok || v.(object.PyInt).Val != 1 {
		t.Fatalf("Locals()[plain] = (%v, %v), want (1, true)", v, ok)
	}
	v, ok, err = d.Get(object.NewStr("cell"))
	if err != nil || !ok || v.(object.PyInt).Val != 2 {
		t.Fatalf("Locals()[cell] = (%v, %v), want (2, true)", v, ok)
	}
	if _, ok, _ := d.Get(object.NewStr("free")); ok {
		t.Fatal("Locals() should not surface a free-var slot at or above FirstFreeIndex")
	}
}

func TestPushPopTopStackLen(t *testing.T) {
	f := New(plainCode(), object.Namespace{}, object.Namespace{}, nil)
	f.Push(object.NewInt(1))
	f.Push(object.NewInt(2))
	if f.StackLen() != 2 {
		t.Fatalf("StackLen() = %d, want 2", f.StackLen())
	}
	if f.Top().(object.PyInt).Val != 2 {
		t.Fatal("Top() should be the most recently pushed value")
	}
	popped := f.Pop()
	if popped.(object.PyInt).Val != 2 {
		t.Fatal("Pop() should return the most recently pushed value")
	}
	if f.StackLen() != 1 {
		t.Fatalf("StackLen() after Pop() = %d, want 1", f.StackLen())
	}
}

func TestPopN(t *testing.T) {
	f := New(plainCode(), object.Namespace{}, object.Namespace{}, nil)
	f.Push(object.NewInt(1))
	f.Push(object.NewInt(2))
	f.Push(object.NewInt(3))
	popped := f.PopN(2)
	if len(popped) != 2 || popped[0].(object.PyInt).Val != 2 || popped[1].(object.PyInt).Val != 3 {
		t.Fatalf("PopN(2) = %v, want [2, 3] in push order", popped)
	}
	if f.StackLen() != 1 {
		t.Fatalf("StackLen() after PopN = %d, want 1", f.StackLen())
	}
}

func TestThreadStatePushPopCurrentLinksBack(t *testing.T) {
	ts := NewThreadState()
	if ts.Current() != nil {
		t.Fatal("Current() on an empty ThreadState should be nil")
	}
	outer := New(plainCode(), object.Namespace{}, object.Namespace{}, nil)
	inner := New(plainCode(), object.Namespace{}, object.Namespace{}, nil)
	ts.Push(outer)
	ts.Push(inner)
	if ts.Current() != inner {
		t.Fatal("Current() should be the most recently pushed frame")
	}
	if inner.Back != outer {
		t.Fatal("Push() should link the new frame's Back to the previous top frame")
	}
	popped := ts.Pop()
	if popped != inner {
		t.Fatal("Pop() should return the frame Push() just added")
	}
	if ts.Current() != outer {
		t.Fatal("Current() after popping the inner frame should be the outer frame")
	}
}

func TestNewThreadStatesHaveDistinctIDs(t *testing.T) {
	ts1 := NewThreadState()
	ts2 := NewThreadState()
	if ts1.ID == ts2.ID {
		t.Fatal("two ThreadStates should not share a uuid")
	}
}
