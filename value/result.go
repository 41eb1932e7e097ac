package value

import "fmt"

// Result is the discriminated value|error wrapper with a success bit
// (spec.md §3.3), the object-level counterpart to a Go (T, error) pair.
type Result struct {
	Header
	ok    bool
	value Object
	err   *Error
}

var TypeResult = &Type{Name: "Result", QName: "result", Flags: FlagStruct}

func Ok(v Object) *Result {
	return &Result{Header: NewHeader(TypeResult, RefInline), ok: true, value: v}
}

func Err(e *Error) *Result {
	return &Result{Header: NewHeader(TypeResult, RefInline), ok: false, err: e}
}

func (r *Result) IsOk() bool  { return r.ok }
func (r *Result) IsErr() bool { return !r.ok }

// Unwrap returns the success value, or the carried *Error as a Go error
// when r is a failure result.
func (r *Result) Unwrap() (Object, error) {
	if !r.ok {
		return nil, r.err
	}
	return r.value, nil
}

func init() {
	TypeResult.Slots = Slots{
		IsTrue: func(x Object) bool { return x.(*Result).ok },
		Repr: func(x Object) (string, error) {
			r := x.(*Result)
			if r.ok {
				s, err := Repr(r.value)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("ok(%s)", s), nil
			}
			s, err := Repr(r.err)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("err(%s)", s), nil
		},
	}
}
