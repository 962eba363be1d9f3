package object

// Instance is implemented by any Object representation that carries a
// per-object attribute dict, the "obj's instance dict" step of the
// generic getattr algorithm (spec.md section 4.5).
type Instance interface {
	Object
	InstanceDict() map[string]Object
}

// PyInstance is a plain user-defined-class instance: a type pointer plus
// an instance dict. Builtin representations (PyInt, PyStr, ...) don't
// implement Instance at all, matching CPython's builtin types having no
// __dict__ unless the type opts in.
type PyInstance struct {
	Cls  *Type
	Dict map[string]Object
}

func (o *PyInstance) Type() *Type               { return o.Cls }
func (o *PyInstance) InstanceDict() map[string]Object { return o.Dict }

func NewInstance(cls *Type) *PyInstance {
	return &PyInstance{Cls: cls, Dict: map[string]Object{}}
}
