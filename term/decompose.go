// Package term: syntactic binder decomposition (no reduction involved).
package term

import (
	"errors"
	"fmt"
)

// ErrNotEnoughBinders is returned when a decomposition needs more leading
// binders than the term has.
var ErrNotEnoughBinders = errors.New("term: not enough leading binders")

// DecomposeLamNAssum strips leading binders until exactly n lambdas have
// been consumed; let-bindings encountered on the way are collected but
// not counted. It returns the collected declarations (innermost first)
// and the remaining body. No reduction is performed.
func DecomposeLamNAssum(n int, t Term) ([]Decl, Term, error) {
	var decls []Decl
	cur := t
	for n > 0 {
		switch v := cur.(type) {
		case *Lambda:
			decls = append([]Decl{{Name: v.Name, Ty: v.Ty}}, decls...)
			cur = v.Body
			n--
		case *LetIn:
			decls = append([]Decl{{Name: v.Name, Ty: v.Ty, Val: v.Val}}, decls...)
			cur = v.Body
		default:
			return nil, nil, fmt.Errorf("DecomposeLamNAssum: %w", ErrNotEnoughBinders)
		}
	}

	return decls, cur, nil
}
