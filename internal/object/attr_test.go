package object

import (
	"testing"

	"pyvm/internal/pyerr"
)

func TestGetAttrDataDescriptorWinsOverInstanceDict(t *testing.T) {
	var stored Object = NewInt(0)
	cls := NewType("hasprop", ObjectType, SlotTable{}, map[string]*AttrEntry{
		"x": NewGetSetDescriptor(
			func(Object) (Object, *pyerr.PyError) { return stored, nil },
			func(_ Object, v Object) *pyerr.PyError { stored = v; return nil },
			nil,
		),
	})
	inst := NewInstance(cls)
	inst.Dict["x"] = NewInt(99) // would win if the descriptor weren't a data descriptor

	v, err := GetAttr(inst, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(PyInt).Val != 0 {
		t.Fatalf("GetAttr = %v, want the descriptor's value (0), not the shadowed instance dict entry", v)
	}
}

func TestGetAttrInstanceDictWinsOverNonDataDescriptor(t *testing.T) {
	cls := NewType("hasmethod", ObjectType, SlotTable{}, map[string]*AttrEntry{
		"greet": NewMethodDescriptor(NewBuiltinFunction("greet", func(args []Object, _ map[string]Object) (Object, *pyerr.PyError) {
			return NewStr("from class"), nil
		})),
	})
	inst := NewInstance(cls)
	inst.Dict["greet"] = NewStr("shadowed")

	v, err := GetAttr(inst, "greet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(PyStr).Val != "shadowed" {
		t.Fatalf("GetAttr = %v, want the instance dict's value to win over the method descriptor", v)
	}
}

func TestGetAttrMethodDescriptorBindsWhenUnshadowed(t *testing.T) {
	fn := NewBuiltinFunction("greet", func(args []Object, _ map[string]Object) (Object, *pyerr.PyError) {
		return NewStr("hi"), nil
	})
	cls := NewType("hasmethod2", ObjectType, SlotTable{}, map[string]*AttrEntry{
		"greet": NewMethodDescriptor(fn),
	})
	inst := NewInstance(cls)

	v, err := GetAttr(inst, "greet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bm, ok := v.(*PyBoundMethod)
	if !ok {
		t.Fatalf("GetAttr = %T, want *PyBoundMethod", v)
	}
	if bm.Func != Object(fn) || bm.Self != Object(inst) {
		t.Fatal("bound method did not capture the right func/self pair")
	}
}

func TestGetAttrMissingRaisesAttributeError(t *testing.T) {
	inst := NewInstance(ObjectType)
	_, err := GetAttr(inst, "nope")
	if err == nil {
		t.Fatal("expected AttributeError, got nil")
	}
	if err.Kind != pyerr.AttributeError {
		t.Fatalf("err.Kind = %v, want AttributeError", err.Kind)
	}
}

func TestLoadMethodFastPathSkipsBinding(t *testing.T) {
	before := StrMethodCallCount()
	descr, self, value, ok, err := LoadMethod(NewStr("hello"), "upper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("LoadMethod should report ok=true for an unshadowed method descriptor")
	}
	if value != nil {
		t.Fatal("fast path should leave value nil")
	}
	if self.(PyStr).Val != "hello" {
		t.Fatalf("self = %v, want the receiver", self)
	}
	res, callErr := Call(descr, []Object{self}, nil)
	if callErr != nil {
		t.Fatalf("unexpected error calling descr: %v", callErr)
	}
	if res.(PyStr).Val != "HELLO" {
		t.Fatalf("result = %v, want HELLO", res)
	}
	if got := StrMethodCallCount(); got != before+1 {
		t.Fatalf("StrMethodCallCount() = %d, want %d (exactly one invocation, no extra allocation path)", got, before+1)
	}
}

func TestLoadMethodFallsBackWhenShadowedByInstanceDict(t *testing.T) {
	cls := NewType("shadowcase", ObjectType, SlotTable{}, map[string]*AttrEntry{
		"greet": NewMethodDescriptor(NewBuiltinFunction("greet", func(args []Object, _ map[string]Object) (Object, *pyerr.PyError) {
			return NewStr("class"), nil
		})),
	})
	inst := NewInstance(cls)
	inst.Dict["greet"] = NewStr("instance")

	_, _, value, ok, err := LoadMethod(inst, "greet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("LoadMethod should not take the fast path when shadowed by the instance dict")
	}
	if value.(PyStr).Val != "instance" {
		t.Fatalf("value = %v, want the shadowing instance attribute", value)
	}
}
