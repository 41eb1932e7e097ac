package value

import "fmt"

// Error is the Argon Error object (spec.md §7): an interned atom
// naming the kind, a human-readable reason, and an optional detail
// dict for structured context. Every Error built in this module passes
// a nil detail; a NotImplementedError names its two types in Reason.
type Error struct {
	Header
	Kind   *Atom
	Reason string
	Detail *Dict
}

var TypeError = &Type{Name: "Error", QName: "error", Flags: FlagStruct}

func init() {
	TypeError.Slots = Slots{
		IsTrue: func(Object) bool { return true },
		Repr: func(o Object) (string, error) {
			e := o.(*Error)
			return fmt.Sprintf("%s: %s", e.Kind.String(), e.Reason), nil
		},
		Str: func(o Object) (string, error) { return TypeError.Slots.Repr(o) },
	}
}

// NewError constructs an Error object of the given kind.
func NewError(kind *Atom, reason string, detail *Dict) *Error {
	return &Error{Header: NewHeader(TypeError, RefInline), Kind: kind, Reason: reason, Detail: detail}
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind.String(), e.Reason) }

// Error kinds named by spec.md §7. Interned once at package init so
// every Error of the same kind shares the identical Atom.
var (
	KindOutOfMemory         = NewAtom("OutOfMemory")
	KindRuntimeError         = NewAtom("RuntimeError")
	KindTypeError            = NewAtom("TypeError")
	KindValueError           = NewAtom("ValueError")
	KindAttributeError       = NewAtom("AttributeError")
	KindAccessViolationError = NewAtom("AccessViolationError")
	KindUnassignableError    = NewAtom("UnassignableError")
	KindUndeclaredError      = NewAtom("UndeclaredError")
	KindOverflowError        = NewAtom("OverflowError")
	KindDivByZeroError       = NewAtom("DivByZeroError")
	KindKeyError             = NewAtom("KeyError")
	KindUnhashableError      = NewAtom("UnhashableError")
	KindNotImplementedError  = NewAtom("NotImplementedError")
	KindAssertionError       = NewAtom("AssertionError")
	KindModuleImportError    = NewAtom("ModuleImportError")
	KindExhaustedGenerator   = NewAtom("ExhaustedGeneratorError")
	KindOSError              = NewAtom("OSError")
	KindFileError            = NewAtom("FileError")
	KindPermissionDenied     = NewAtom("PermissionDeniedError")
	KindInterruptError       = NewAtom("InterruptError")
	KindTryAgainError        = NewAtom("TryAgainError")
	KindIsDirectoryError     = NewAtom("IsDirectoryError")
	KindBrokenPipeError      = NewAtom("BrokenPipeError")
	KindOperationError       = NewAtom("OperationError")
)

// kindError is a plain Go error carrying the Argon error kind it maps
// to, so the evaluator's native-call boundary (spec.md §4.5 step 5)
// can build the matching *Error object without re-parsing a message.
type kindError struct {
	kind   *Atom
	reason string
}

func (e *kindError) Error() string { return fmt.Sprintf("%s: %s", e.kind.String(), e.reason) }

// KindOf extracts the Argon error kind carried by err, defaulting to
// RuntimeError for an ordinary Go error with no attached kind.
func KindOf(err error) *Atom {
	if ke, ok := err.(*kindError); ok {
		return ke.kind
	}
	return KindRuntimeError
}

func newKindError(kind *Atom, format string, args ...any) error {
	return &kindError{kind: kind, reason: fmt.Sprintf(format, args...)}
}

func errTypef(format string, args ...any) error { return newKindError(KindTypeError, format, args...) }
func errValuef(format string, args ...any) error {
	return newKindError(KindValueError, format, args...)
}
func errOverflowf(format string, args ...any) error {
	return newKindError(KindOverflowError, format, args...)
}
func errKeyf(format string, args ...any) error { return newKindError(KindKeyError, format, args...) }
func errUnhashablef(format string, args ...any) error {
	return newKindError(KindUnhashableError, format, args...)
}
func errNotImplementedf(format string, args ...any) error {
	return newKindError(KindNotImplementedError, format, args...)
}
func errAttributef(format string, args ...any) error {
	return newKindError(KindAttributeError, format, args...)
}
func errAccessViolationf(format string, args ...any) error {
	return newKindError(KindAccessViolationError, format, args...)
}
func errUnassignablef(format string, args ...any) error {
	return newKindError(KindUnassignableError, format, args...)
}
func errUndeclaredf(format string, args ...any) error {
	return newKindError(KindUndeclaredError, format, args...)
}

// ErrorFromGo converts any Go error into an Argon Error object, using
// KindOf to recover a specific kind when the error originated inside
// this package, or RuntimeError otherwise.
func ErrorFromGo(err error) *Error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*Error); ok {
		return ae
	}
	return NewError(KindOf(err), err.Error(), nil)
}
