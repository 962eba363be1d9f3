package cell

import "testing"

func TestNewCellStartsEmpty(t *testing.T) {
	c := New()
	if _, full := c.Get(); full {
		t.Fatal("New() cell reports full, want empty")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c := New()
	c.Set(42)
	v, full := c.Get()
	if !full {
		t.Fatal("Get() after Set() reports empty, want full")
	}
	if v != 42 {
		t.Fatalf("Get() = %v, want 42", v)
	}
}

func TestDeleteEmptiesAndReportsPriorState(t *testing.T) {
	c := New()
	if c.Delete() {
		t.Fatal("Delete() on an already-empty cell reported wasFull=true")
	}
	c.Set("x")
	if !c.Delete() {
		t.Fatal("Delete() on a full cell reported wasFull=false")
	}
	if _, full := c.Get(); full {
		t.Fatal("cell still full after Delete()")
	}
}

func TestNewWithValue(t *testing.T) {
	c := NewWithValue(7)
	v, full := c.Get()
	if !full || v != 7 {
		t.Fatalf("Get() = (%v, %v), want (7, true)", v, full)
	}
}

func TestCellIsAnObject(t *testing.T) {
	c := New()
	if c.Type() != CellType {
		t.Fatalf("Type() = %v, want CellType", c.Type())
	}
	if CellType.Name != "cell" {
		t.Fatalf("CellType.Name = %q, want \"cell\"", CellType.Name)
	}
}
