// Package function implements Argon's function object and the calling
// convention described in spec.md §4.5: partial application, variadic
// and keyword arguments, method binding, native dispatch, and the
// generator resume protocol.
package function

import (
	"fmt"
	"sync"

	"github.com/argonlang/argon-rt/internal/code"
	"github.com/argonlang/argon-rt/internal/frame"
	"github.com/argonlang/argon-rt/value"
)

// Flags is the function object's flag word (spec.md §4.5).
type Flags uint16

const (
	Native Flags = 1 << iota
	Method
	Closure
	Variadic
	Kwargs
	Generator
	Async
	Recoverable
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Param describes one declared parameter for the native parameter
// checker: Name is descriptive, Types is the allowed set (empty means
// accept any type).
type Param struct {
	Name  string
	Types []*value.Type
}

// NativeFn is the Go-side implementation of a NATIVE function. Per
// spec.md §4.5 step 5, a (nil, nil) return means "nil with no panic";
// a (nil, err) return propagates err as the active panic.
type NativeFn func(args []value.Object) (value.Object, error)

// Function is Argon's function object.
type Function struct {
	value.Header

	Code   *code.Code // nil when Native
	Native NativeFn

	Name, QName, Doc string
	Params           []Param

	// Currying holds positional args captured by a prior partial
	// application; nil for a freshly-declared function.
	Currying []value.Object

	// Enclosed is this closure's captured variable list.
	Enclosed []value.Object

	// OwnerType is non-nil for a bound method.
	OwnerType *value.Type
	Globals   *value.Namespace

	Arity int
	Flags Flags

	genMu    sync.Mutex
	genFrame *frame.Frame
	genOwner uintptr // owning fiber address; 0 when not running
	exhausted bool

	// boundInstance is the receiver captured by Bind when a method
	// value is read off an instance (`obj.method`); it takes priority
	// over Dispatch's instance parameter.
	boundInstance value.Object
}

var TypeFunction = &value.Type{Name: "Function", QName: "function", Flags: value.FlagStruct}

func init() {
	TypeFunction.Slots = value.Slots{
		IsTrue: func(value.Object) bool { return true },
		Repr: func(o value.Object) (string, error) {
			return "<func " + o.(*Function).QName + ">", nil
		},
	}
}

// New constructs a bytecode-backed function.
func New(name, qname, doc string, c *code.Code, params []Param, arity int, flags Flags, globals *value.Namespace, enclosed []value.Object) *Function {
	return &Function{
		Header: value.NewHeader(TypeFunction, value.RefInline),
		Code:   c, Name: name, QName: qname, Doc: doc,
		Params: params, Arity: arity, Flags: flags,
		Globals: globals, Enclosed: enclosed,
	}
}

// NewNative constructs a native (Go-implemented) function.
func NewNative(name, qname, doc string, fn NativeFn, params []Param, arity int, flags Flags) *Function {
	return &Function{
		Header: value.NewHeader(TypeFunction, value.RefInline),
		Native: fn, Name: name, QName: qname, Doc: doc,
		Params: params, Arity: arity, Flags: flags | Native,
	}
}

// BindMethod returns a copy of f bound to an owning type, used when a
// struct's namespace installs its declared methods (spec.md §4.1).
func (f *Function) BindMethod(owner *value.Type) *Function {
	cp := *f
	cp.Header = value.NewHeader(TypeFunction, value.RefInline)
	cp.OwnerType = owner
	cp.Flags |= Method
	return &cp
}

// Bind returns a copy of f with instance captured as its receiver, the
// object produced by reading a METHOD-flagged function off an
// instance (`obj.method`), so a later call need not be told the
// receiver again.
func (f *Function) Bind(instance value.Object) *Function {
	cp := *f
	cp.Header = value.NewHeader(TypeFunction, value.RefInline)
	cp.boundInstance = instance
	return &cp
}

// withCurrying returns a copy of f with extra appended to its currying
// tuple — the object produced by a partial-application call.
func (f *Function) withCurrying(extra []value.Object) *Function {
	cp := *f
	cp.Header = value.NewHeader(TypeFunction, value.RefInline)
	cp.Currying = append(append([]value.Object{}, f.Currying...), extra...)
	return &cp
}

// Outcome is what Dispatch produces: exactly one of Value (a native
// result or a partial-application object) or Frame (a prepared
// activation record the evaluator must push and continue executing).
type Outcome struct {
	Value value.Object
	Frame *frame.Frame
}

// Dispatch implements the calling convention of spec.md §4.5. instance
// is non-nil for a bound method call; ownerFiber identifies the
// calling fiber, used for generator spin-lock ownership and as the new
// frame's panic GenID scope.
func Dispatch(f *Function, args []value.Object, kwargs *value.Dict, instance value.Object, ownerFiber uintptr) (Outcome, error) {
	if f.boundInstance != nil {
		instance = f.boundInstance
	}
	if f.Flags.Has(Generator) {
		return dispatchGenerator(f, args, ownerFiber)
	}

	all := args
	if len(f.Currying) > 0 {
		all = append(append([]value.Object{}, f.Currying...), args...)
	}
	n := len(all)

	if n < f.Arity {
		return Outcome{Value: f.withCurrying(args)}, nil
	}

	var variadicTail []value.Object
	if n > f.Arity {
		if !f.Flags.Has(Variadic) {
			return Outcome{}, errTypeArity(f, n)
		}
		variadicTail = all[f.Arity:]
		all = all[:f.Arity]
	}

	if kwargs != nil {
		if !f.Flags.Has(Kwargs) {
			for _, k := range kwargs.Keys() {
				ks, _ := value.Str(k)
				if !hasParam(f.Params, ks) {
					return Outcome{}, errTypeKwarg(f, ks)
				}
			}
		}
	}

	if f.Flags.Has(Native) {
		nativeArgs := all
		if variadicTail != nil {
			nativeArgs = append(append([]value.Object{}, all...), value.NewList(variadicTail...))
		}
		if err := checkParams(f.Params, nativeArgs); err != nil {
			return Outcome{}, err
		}
		res, err := f.Native(nativeArgs)
		if err != nil {
			return Outcome{}, err
		}
		if res == nil {
			res = value.NilValue
		}
		return Outcome{Value: res}, nil
	}

	nLocals := len(f.Code.Locals)
	fr := frame.New(f.Code, f.Globals, instance, f.Enclosed, ownerFiber)
	localIdx := 0
	if instance != nil {
		if localIdx < nLocals {
			fr.Locals[localIdx] = instance
			localIdx++
		}
	}
	for _, a := range all {
		if localIdx >= nLocals {
			break
		}
		fr.Locals[localIdx] = a
		localIdx++
	}
	if variadicTail != nil && localIdx < nLocals {
		fr.Locals[localIdx] = value.NewList(variadicTail...)
		localIdx++
	}
	if kwargs != nil && f.Flags.Has(Kwargs) && localIdx < nLocals {
		fr.Locals[localIdx] = kwargs
	}

	return Outcome{Frame: fr}, nil
}

// dispatchGenerator implements spec.md §4.5's generator protocol: the
// first call builds a floating frame and returns the function object
// itself; subsequent calls resume the stored frame, refusing reentry
// from a second fiber while one is already running it.
func dispatchGenerator(f *Function, args []value.Object, ownerFiber uintptr) (Outcome, error) {
	f.genMu.Lock()
	defer f.genMu.Unlock()

	if f.exhausted {
		return Outcome{}, value.NewError(value.KindExhaustedGenerator, "generator is exhausted", nil)
	}

	if f.genFrame == nil {
		nLocals := len(f.Code.Locals)
		fr := frame.New(f.Code, f.Globals, nil, f.Enclosed, ownerFiber)
		fr.Floating = true
		fr.Gen = f
		for i, a := range args {
			if i >= nLocals {
				break
			}
			fr.Locals[i] = a
		}
		f.genFrame = fr
		return Outcome{Value: f}, nil
	}

	if f.genOwner != 0 && f.genOwner != ownerFiber {
		return Outcome{}, value.NewError(value.KindRuntimeError, "generator is already running", nil)
	}
	f.genOwner = ownerFiber
	return Outcome{Frame: f.genFrame}, nil
}

// GenYielded records that f's generator frame suspended via YIELD:
// the frame is kept alive for the next resume, and the spin-lock is
// released so another call can re-enter.
func (f *Function) GenYielded() {
	f.genMu.Lock()
	f.genOwner = 0
	f.genMu.Unlock()
}

// GenExhausted marks f's generator complete: its stored frame is
// dropped and all further calls raise ExhaustedGeneratorError.
func (f *Function) GenExhausted() {
	f.genMu.Lock()
	f.genFrame = nil
	f.genOwner = 0
	f.exhausted = true
	f.genMu.Unlock()
}

func hasParam(params []Param, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

func checkParams(params []Param, args []value.Object) error {
	for i, p := range params {
		if i >= len(args) || len(p.Types) == 0 {
			continue
		}
		ok := false
		for _, t := range p.Types {
			if args[i].Type() == t {
				ok = true
				break
			}
		}
		if !ok {
			return errParamType(p, args[i])
		}
	}
	return nil
}

func errTypeArity(f *Function, n int) error {
	return value.NewError(value.KindTypeError,
		fmt.Sprintf("%s takes %d arguments but %d were given", f.QName, f.Arity, n), nil)
}

func errTypeKwarg(f *Function, name string) error {
	return value.NewError(value.KindTypeError,
		fmt.Sprintf("unexpected keyword argument '%s' for %s", name, f.QName), nil)
}

func errParamType(p Param, got value.Object) error {
	return value.NewError(value.KindTypeError,
		fmt.Sprintf("argument '%s' has unexpected type '%s'", p.Name, got.Type().Name), nil)
}
