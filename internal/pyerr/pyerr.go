// Package pyerr implements the exception families the dispatch loop raises,
// per spec.md section 7.
package pyerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the Python exception family a PyError belongs to.
type Kind string

const (
	NameError         Kind = "NameError"
	UnboundLocalError Kind = "UnboundLocalError" // subclass of NameError
	AttributeError    Kind = "AttributeError"
	TypeError         Kind = "TypeError"
	ValueError        Kind = "ValueError"
	OverflowError     Kind = "OverflowError"
	IndexError        Kind = "IndexError"
	KeyError          Kind = "KeyError"
	StopIteration     Kind = "StopIteration"
	SystemError       Kind = "SystemError"
	InternalError     Kind = "InternalError" // not a Python exception; see spec.md 4.8
)

// Frame is one entry of the call stack attached to a PyError as it
// propagates out of a frame, mirroring the teacher's StackFrame.
type Frame struct {
	Function string
	Opcode   string
	IP       int
}

// PyError is the error type every opcode handler and slot invocation raises.
type PyError struct {
	Kind      Kind
	Message   string
	CallStack []Frame
}

func (e *PyError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Kind, e.Message))
	for i := len(e.CallStack) - 1; i >= 0; i-- {
		f := e.CallStack[i]
		if f.Opcode != "" {
			sb.WriteString(fmt.Sprintf("\n  at %s (ip=%d, op=%s)", f.Function, f.IP, f.Opcode))
		} else {
			sb.WriteString(fmt.Sprintf("\n  at %s", f.Function))
		}
	}
	return sb.String()
}

// Is lets errors.Is match on Kind so callers can write
// errors.Is(err, pyerr.New(pyerr.KeyError, "")) without a type assertion.
func (e *PyError) Is(target error) bool {
	other, ok := target.(*PyError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// WithFrame appends a call-stack entry and returns e for chaining.
func (e *PyError) WithFrame(function, opcode string, ip int) *PyError {
	e.CallStack = append(e.CallStack, Frame{Function: function, Opcode: opcode, IP: ip})
	return e
}

func New(kind Kind, format string, args ...interface{}) *PyError {
	return &PyError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// StopIterationErr is a template for errors.Is-style matching against
// FOR_ITER's exhaustion signal: err.Is(StopIterationErr).
var StopIterationErr = &PyError{Kind: StopIteration}

// NoLocalsFound builds the SystemError raised when a name operation finds
// no locals mapping. The message has two placeholders, so both the action
// and the variable name appear in it.
func NoLocalsFound(action, name string) *PyError {
	return New(SystemError, fmt.Sprintf("no locals found when %s '%s'", action, name))
}

// WrapInternal wraps an unexpected host-language error (e.g. a recovered
// panic) as an InternalError tagged with the opcode/ip that was executing,
// using pkg/errors for the stack trace the teacher's own error type didn't
// carry.
func WrapInternal(cause interface{}, opcode string, ip int) *PyError {
	wrapped := errors.Wrapf(fmt.Errorf("%v", cause), "at ip=%d op=%s", ip, opcode)
	return &PyError{Kind: InternalError, Message: wrapped.Error()}
}
