package object

import (
	"fmt"
	"strings"

	"pyvm/internal/pyerr"
)

// PyTuple is Python's immutable tuple.
type PyTuple struct{ Items []Object }

func (*PyTuple) Type() *Type { return TupleType }

func NewTuple(items []Object) Object {
	cp := make([]Object, len(items))
	copy(cp, items)
	return &PyTuple{cp}
}

// PyList is Python's mutable list.
type PyList struct{ Items []Object }

func (*PyList) Type() *Type { return ListType }

func NewList(items []Object) *PyList {
	cp := make([]Object, len(items))
	copy(cp, items)
	return &PyList{cp}
}

func (l *PyList) Append(v Object) { l.Items = append(l.Items, v) }

func (l *PyList) Extend(items []Object) { l.Items = append(l.Items, items...) }

func seqLen(items []Object) (int, *pyerr.PyError) { return len(items), nil }

func normalizeIndex(raw int64, n int) (int, *pyerr.PyError) {
	idx := raw
	if idx < 0 {
		idx += int64(n)
	}
	if idx < 0 || idx >= int64(n) {
		return 0, pyerr.New(pyerr.IndexError, "index out of range")
	}
	return int(idx), nil
}

func tupleLen(v Object) (int, *pyerr.PyError) { return seqLen(v.(*PyTuple).Items) }
func listLen(v Object) (int, *pyerr.PyError)  { return seqLen(v.(*PyList).Items) }

func tupleGetItem(v, key Object) (Object, *pyerr.PyError) {
	t := v.(*PyTuple)
	i, err := IndexFromObject(key)
	if err != nil {
		return nil, err
	}
	idx, err := normalizeIndex(i, len(t.Items))
	if err != nil {
		return nil, err
	}
	return t.Items[idx], nil
}

func listGetItem(v, key Object) (Object, *pyerr.PyError) {
	l := v.(*PyList)
	i, err := IndexFromObject(key)
	if err != nil {
		return nil, err
	}
	idx, err := normalizeIndex(i, len(l.Items))
	if err != nil {
		return nil, err
	}
	return l.Items[idx], nil
}

func listSetItem(v, key, val Object) *pyerr.PyError {
	l := v.(*PyList)
	i, err := IndexFromObject(key)
	if err != nil {
		return err
	}
	idx, err := normalizeIndex(i, len(l.Items))
	if err != nil {
		return err
	}
	l.Items[idx] = val
	return nil
}

func listDelItem(v, key Object) *pyerr.PyError {
	l := v.(*PyList)
	i, err := IndexFromObject(key)
	if err != nil {
		return err
	}
	idx, err := normalizeIndex(i, len(l.Items))
	if err != nil {
		return err
	}
	l.Items = append(l.Items[:idx], l.Items[idx+1:]...)
	return nil
}

func seqContains(items []Object, item Object) (bool, *pyerr.PyError) {
	for _, v := range items {
		eq, err := richEqual(v, item)
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}

func listContains(c, item Object) (bool, *pyerr.PyError)  { return seqContains(c.(*PyList).Items, item) }
func tupleContains(c, item Object) (bool, *pyerr.PyError) { return seqContains(c.(*PyTuple).Items, item) }

// richEqual compares two objects for equality using a's EQ slot, falling
// back to identity when a defines none or it returns NotImplemented; b's
// slots are not consulted. Objects of different types compare unequal
// when a's type has no comparison slots.
func richEqual(a, b Object) (bool, *pyerr.PyError) {
	t := a.Type()
	if t != b.Type() {
		if fn := a.Type().Slots.Compare[0]; fn == nil {
			return false, nil
		}
	}
	if fn := a.Type().Slots.Compare[2]; fn != nil { // CMP_EQ
		res, err := fn(a, b)
		if err != nil {
			return false, err
		}
		if res != NotImplementedObj {
			return res.(PyBool).Val, nil
		}
	}
	return identical(a, b), nil
}

// identical implements "is": pointer equality for heap-allocated
// representations, value equality for the small value types that are
// reused from constant pools (PyInt/PyFloat/PyBool/PyStr).
func identical(a, b Object) bool {
	switch av := a.(type) {
	case PyInt:
		bv, ok := b.(PyInt)
		return ok && av.Val == bv.Val
	case PyFloat:
		bv, ok := b.(PyFloat)
		return ok && av.Val == bv.Val
	case PyBool:
		bv, ok := b.(PyBool)
		return ok && av.Val == bv.Val
	case PyStr:
		bv, ok := b.(PyStr)
		return ok && av.Val == bv.Val
	default:
		return a == b
	}
}

// ---- dict ----

// PyDict is Python's dict. Keys are restricted to the hashable value
// types this spec supports; hashKeyOf renders each into a comparable Go
// map key so PyDict doesn't need to reimplement open addressing.
type PyDict struct {
	order []string
	keys  map[string]Object
	vals  map[string]Object
}

func (*PyDict) Type() *Type { return DictType }

func NewDict() *PyDict {
	return &PyDict{keys: map[string]Object{}, vals: map[string]Object{}}
}

func hashKeyOf(o Object) (string, *pyerr.PyError) {
	switch v := o.(type) {
	case PyStr:
		return "s:" + v.Val, nil
	case PyInt:
		return fmt.Sprintf("i:%d", v.Val), nil
	case PyBigInt:
		return "i:" + v.Val.String(), nil
	case PyFloat:
		return fmt.Sprintf("f:%v", v.Val), nil
	case PyBool:
		if v.Val {
			return "i:1", nil
		}
		return "i:0", nil
	case pyNone:
		return "none", nil
	case *PyTuple:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			k, err := hashKeyOf(it)
			if err != nil {
				return "", err
			}
			parts[i] = k
		}
		return "t:(" + strings.Join(parts, ",") + ")", nil
	}
	return "", pyerr.New(pyerr.TypeError, "unhashable type: '%s'", o.Type().Name)
}

func (d *PyDict) Set(key, val Object) *pyerr.PyError {
	hk, err := hashKeyOf(key)
	if err != nil {
		return err
	}
	if _, exists := d.vals[hk]; !exists {
		d.order = append(d.order, hk)
	}
	d.keys[hk] = key
	d.vals[hk] = val
	return nil
}

func (d *PyDict) Get(key Object) (Object, bool, *pyerr.PyError) {
	hk, err := hashKeyOf(key)
	if err != nil {
		return nil, false, err
	}
	v, ok := d.vals[hk]
	return v, ok, nil
}

func (d *PyDict) Delete(key Object) *pyerr.PyError {
	hk, err := hashKeyOf(key)
	if err != nil {
		return err
	}
	if _, ok := d.vals[hk]; !ok {
		return pyerr.New(pyerr.KeyError, "%s", reprOf(key))
	}
	delete(d.vals, hk)
	delete(d.keys, hk)
	for i, k := range d.order {
		if k == hk {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

func (d *PyDict) Len() int { return len(d.order) }

// OrderedKeys returns keys in insertion order, matching CPython 3.7+ dict
// ordering guarantees (DICT_MERGE duplicate-order expectations).
func (d *PyDict) OrderedKeys() []Object {
	out := make([]Object, 0, len(d.order))
	for _, hk := range d.order {
		out = append(out, d.keys[hk])
	}
	return out
}

func (d *PyDict) Merge(other *PyDict, overwrite bool, onDup func(key Object) *pyerr.PyError) *pyerr.PyError {
	for _, k := range other.OrderedKeys() {
		v, _, err := other.Get(k)
		if err != nil {
			return err
		}
		if _, exists, _ := d.Get(k); exists {
			if !overwrite {
				if onDup != nil {
					if derr := onDup(k); derr != nil {
						return derr
					}
				}
				continue
			}
		}
		if err := d.Set(k, v); err != nil {
			return err
		}
	}
	return nil
}

func reprOf(o Object) string {
	switch v := o.(type) {
	case PyStr:
		return "'" + v.Val + "'"
	case PyInt:
		return fmt.Sprintf("%d", v.Val)
	default:
		return fmt.Sprintf("%v", o)
	}
}

func dictLen(v Object) (int, *pyerr.PyError) { return v.(*PyDict).Len(), nil }

func dictGetItem(v, key Object) (Object, *pyerr.PyError) {
	d := v.(*PyDict)
	val, ok, err := d.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pyerr.New(pyerr.KeyError, "%s", reprOf(key))
	}
	return val, nil
}

func dictSetItem(v, key, val Object) *pyerr.PyError {
	return v.(*PyDict).Set(key, val)
}

func dictDelItem(v, key Object) *pyerr.PyError {
	return v.(*PyDict).Delete(key)
}

func dictContains(c, item Object) (bool, *pyerr.PyError) {
	_, ok, err := c.(*PyDict).Get(item)
	return ok, err
}

// ---- iterators ----

// PySeqIterator iterates a list or tuple's Items slice by index, backing
// GET_ITER/FOR_ITER over both sequence representations.
type PySeqIterator struct {
	items []Object
	idx   int
}

func (*PySeqIterator) Type() *Type { return SeqIteratorType }

func newSeqIterator(items []Object) Object { return &PySeqIterator{items: items} }

func seqIterNext(v Object) (Object, *pyerr.PyError) {
	it := v.(*PySeqIterator)
	if it.idx >= len(it.items) {
		return nil, pyerr.New(pyerr.StopIteration, "")
	}
	val := it.items[it.idx]
	it.idx++
	return val, nil
}

func listIter(v Object) (Object, *pyerr.PyError)  { return newSeqIterator(v.(*PyList).Items), nil }
func tupleIter(v Object) (Object, *pyerr.PyError) { return newSeqIterator(v.(*PyTuple).Items), nil }
func dictIter(v Object) (Object, *pyerr.PyError)  { return newSeqIterator(v.(*PyDict).OrderedKeys()), nil }

func strIter(v Object) (Object, *pyerr.PyError) {
	s := v.(PyStr)
	runes := []rune(s.Val)
	items := make([]Object, len(runes))
	for i, r := range runes {
		items[i] = NewStr(string(r))
	}
	return newSeqIterator(items), nil
}

func selfIter(v Object) (Object, *pyerr.PyError) { return v, nil }
