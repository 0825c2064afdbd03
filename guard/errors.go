// Package guard: error taxonomy.
//
// Four semantic classes (plus lookup failures), modelled as one payload
// type unwrapping to per-class sentinels so callers use errors.Is:
//
//   - Programming — invariant violated; aborts the whole check.
//   - Env / Index — lookup failures; fatal, the walker's reduction
//     fallbacks do not recover from them.
//   - Other       — wrong-shape terms; the recoverable class.
//   - Guard       — the user-facing verdict.
//   - Timeout     — step budget or reduction fuel exhausted.
package guard

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/fixguard/reduce"
	"github.com/katalvlaran/fixguard/rtree"
	"github.com/katalvlaran/fixguard/term"
)

// Sentinel errors, one per error class.
var (
	// ErrProgramming marks a violated internal invariant (malformed tree,
	// branch that cannot be reached on well-formed input).
	ErrProgramming = errors.New("guard: internal invariant violated")

	// ErrEnv marks a failed global-environment lookup.
	ErrEnv = errors.New("guard: environment lookup failed")

	// ErrIndex marks an out-of-range index (constructor, argument, body).
	ErrIndex = errors.New("guard: index out of range")

	// ErrOther marks an ill-shaped term or a reducer refusal; this is the
	// class the walker's reduction fallbacks recover from.
	ErrOther = errors.New("guard: ill-shaped term")

	// ErrGuard is the user-facing failure: a recursive call is not
	// provably made on a smaller argument.
	ErrGuard = errors.New("guard: unguarded recursive call")

	// ErrTimeout is returned when the step budget or the reduction fuel
	// runs out.
	ErrTimeout = errors.New("guard: step budget exhausted")
)

// ErrKind discriminates the error classes of Error.
type ErrKind uint8

const (
	KindProgramming ErrKind = iota
	KindEnv
	KindIndex
	KindOther
	KindGuard
	KindTimeout
)

// Error is the structured checker error: a class, the location inside
// the checker, and a human-readable detail. Env errors carry the kernel
// name, Index errors the offending index.
type Error struct {
	Kind   ErrKind
	Name   term.KerName
	Idx    int
	Where  string
	Detail string
}

// Error renders "where: detail" prefixed by the class sentinel text.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Unwrap().Error(), e.Where, e.Detail)
}

// Unwrap maps the class to its sentinel, so errors.Is(err, ErrGuard)
// and friends work on any checker error.
func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindEnv:
		return ErrEnv
	case KindIndex:
		return ErrIndex
	case KindOther:
		return ErrOther
	case KindGuard:
		return ErrGuard
	case KindTimeout:
		return ErrTimeout
	default:
		return ErrProgramming
	}
}

func progErr(where, detail string) error {
	return &Error{Kind: KindProgramming, Where: where, Detail: detail}
}

func indexErr(where string, i int, detail string) error {
	return &Error{Kind: KindIndex, Idx: i, Where: where, Detail: detail}
}

func otherErr(where, detail string) error {
	return &Error{Kind: KindOther, Where: where, Detail: detail}
}

func guardErrAt(where, detail string) error {
	return &Error{Kind: KindGuard, Where: where, Detail: detail}
}

func timeoutErr(where string) error {
	return &Error{Kind: KindTimeout, Where: where, Detail: "budget exhausted"}
}

// recoverable reports whether the walker's reduction fallbacks may catch
// err and retry after reducing further. Guard verdicts and shape errors
// are retriable; Programming, Timeout and lookup failures are not.
func recoverable(err error) bool {
	return errors.Is(err, ErrGuard) || errors.Is(err, ErrOther)
}

// convertErr maps collaborator errors (reducer, environment, trees) into
// the checker's taxonomy. Checker errors pass through untouched.
func convertErr(where string, err error) error {
	var ge *Error
	if errors.As(err, &ge) {
		return err
	}
	switch {
	case errors.Is(err, reduce.ErrTimeout):
		return timeoutErr(where)
	case errors.Is(err, term.ErrNotFound):
		return &Error{Kind: KindEnv, Where: where, Detail: err.Error()}
	case errors.Is(err, rtree.ErrIllFormed):
		return &Error{Kind: KindProgramming, Where: where, Detail: err.Error()}
	default:
		// reduce.ErrShape, rtree.ErrIncompatible, term.ErrNotEnoughBinders
		// and anything unforeseen: wrong-shape input.
		return &Error{Kind: KindOther, Where: where, Detail: err.Error()}
	}
}
