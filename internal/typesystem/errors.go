package typesystem

import "fmt"

// UnifyErrorKind classifies a unification failure. Sites are attached by
// the lowering engine, which knows which node produced the constraint.
type UnifyErrorKind int

const (
	KindMismatch UnifyErrorKind = iota
	KindOccurs
)

// UnifyError is a recoverable unification failure.
type UnifyError struct {
	Kind     UnifyErrorKind
	Expected Type
	Found    Type
	Detail   string
}

func (e *UnifyError) Error() string {
	switch e.Kind {
	case KindOccurs:
		return fmt.Sprintf("infinite type: %s occurs in %s", e.Expected, e.Found)
	default:
		msg := fmt.Sprintf("cannot unify %s with %s", e.Expected, e.Found)
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
		return msg
	}
}

func errMismatch(expected, found Type, detail string) *UnifyError {
	return &UnifyError{Kind: KindMismatch, Expected: expected, Found: found, Detail: detail}
}

func errOccurs(tv TVar, in Type) *UnifyError {
	return &UnifyError{Kind: KindOccurs, Expected: tv, Found: in}
}
