package interp

import (
	"pyvm/internal/frame"
	"pyvm/internal/object"
	"pyvm/internal/pyerr"
)

// loadName implements LOAD_NAME: NameScope, then Globals, then Builtins
// (spec.md section 4.6's unoptimized-scope lookup chain).
func loadName(f *frame.Frame, nameIdx int) (object.Object, *pyerr.PyError) {
	name := f.Code.Names[nameIdx]
	if v, ok := f.NameScope[name]; ok {
		return v, nil
	}
	if f.NameScope == nil {
		return nil, pyerr.NoLocalsFound("loading", name)
	}
	if v, ok := f.Globals[name]; ok {
		return v, nil
	}
	if v, ok := f.Builtins[name]; ok {
		return v, nil
	}
	return nil, pyerr.New(pyerr.NameError, "name '%s' is not defined", name)
}

func storeName(f *frame.Frame, nameIdx int, v object.Object) {
	if f.NameScope == nil {
		f.NameScope = object.Namespace{}
	}
	f.NameScope[f.Code.Names[nameIdx]] = v
}

func deleteName(f *frame.Frame, nameIdx int) *pyerr.PyError {
	name := f.Code.Names[nameIdx]
	if f.NameScope == nil {
		return pyerr.NoLocalsFound("deleting", name)
	}
	if _, ok := f.NameScope[name]; !ok {
		return pyerr.New(pyerr.NameError, "name '%s' is not defined", name)
	}
	delete(f.NameScope, name)
	return nil
}

// loadGlobal implements LOAD_GLOBAL: Globals, then Builtins, skipping
// NameScope entirely (spec.md section 4.6).
func loadGlobal(f *frame.Frame, nameIdx int) (object.Object, *pyerr.PyError) {
	name := f.Code.Names[nameIdx]
	if v, ok := f.Globals[name]; ok {
		return v, nil
	}
	if v, ok := f.Builtins[name]; ok {
		return v, nil
	}
	return nil, pyerr.New(pyerr.NameError, "name '%s' is not defined", name)
}
