// Package reduce: binder decomposition and head-shape helpers used by the
// guardedness checker. These operate under reduction: binders hidden
// behind redexes are uncovered on demand.
package reduce

import (
	"fmt"

	"github.com/katalvlaran/fixguard/term"
)

// DecomposeProdAssum peels leading products and let-bindings off t,
// reducing as needed. Reduction is "try harder": heads are first reduced
// without ζ (lets preserved); when the head is neither a product nor a
// let, full reduction is attempted and, if it uncovers one, the loop
// reiterates. Returns the collected declarations (innermost first) and
// the final body.
func DecomposeProdAssum(env *term.Env, ctx term.Ctx, t term.Term, fuel *Fuel) ([]term.Decl, term.Term, error) {
	var decls []term.Decl
	local := ctx
	cur := t
	for {
		w, err := Whd(AllNoLet, env, local, cur, fuel)
		if err != nil {
			return nil, nil, err
		}
		switch v := w.(type) {
		case *term.Prod:
			d := term.Decl{Name: v.Name, Ty: v.Ty}
			decls = append([]term.Decl{d}, decls...)
			local = local.PushAssum(v.Name, v.Ty)
			cur = v.Body
		case *term.LetIn:
			d := term.Decl{Name: v.Name, Ty: v.Ty, Val: v.Val}
			decls = append([]term.Decl{d}, decls...)
			local = local.PushDef(v.Name, v.Val, v.Ty)
			cur = v.Body
		default:
			h, err := Whd(All, env, local, w, fuel)
			if err != nil {
				return nil, nil, err
			}
			switch h.(type) {
			case *term.Prod, *term.LetIn:
				cur = h
			default:
				return decls, w, nil
			}
		}
	}
}

// DecomposeLamAssum is the lambda analogue of DecomposeProdAssum: it
// peels leading lambdas and let-bindings under the same try-harder
// reduction discipline.
func DecomposeLamAssum(env *term.Env, ctx term.Ctx, t term.Term, fuel *Fuel) ([]term.Decl, term.Term, error) {
	var decls []term.Decl
	local := ctx
	cur := t
	for {
		w, err := Whd(AllNoLet, env, local, cur, fuel)
		if err != nil {
			return nil, nil, err
		}
		switch v := w.(type) {
		case *term.Lambda:
			d := term.Decl{Name: v.Name, Ty: v.Ty}
			decls = append([]term.Decl{d}, decls...)
			local = local.PushAssum(v.Name, v.Ty)
			cur = v.Body
		case *term.LetIn:
			d := term.Decl{Name: v.Name, Ty: v.Ty, Val: v.Val}
			decls = append([]term.Decl{d}, decls...)
			local = local.PushDef(v.Name, v.Val, v.Ty)
			cur = v.Body
		default:
			h, err := Whd(All, env, local, w, fuel)
			if err != nil {
				return nil, nil, err
			}
			switch h.(type) {
			case *term.Lambda, *term.LetIn:
				cur = h
			default:
				return decls, w, nil
			}
		}
	}
}

// HnfProdApps applies the product type t to args one at a time, reducing
// t to a product before each application. Fails with ErrShape when t
// does not expose enough products.
func HnfProdApps(env *term.Env, ctx term.Ctx, t term.Term, args []term.Term, fuel *Fuel) (term.Term, error) {
	cur := t
	for i, a := range args {
		w, err := WhdAll(env, ctx, cur, fuel)
		if err != nil {
			return nil, err
		}
		p, ok := w.(*term.Prod)
		if !ok {
			return nil, fmt.Errorf("HnfProdApps: argument %d: %w", i, ErrShape)
		}
		cur = term.Subst1(a, p.Body)
	}

	return cur, nil
}

// FindInductive reduces t to weak-head form and requires an inductive
// head, returning the inductive and its arguments.
func FindInductive(env *term.Env, ctx term.Ctx, t term.Term, fuel *Fuel) (term.Ind, []term.Term, error) {
	w, err := WhdAll(env, ctx, t, fuel)
	if err != nil {
		return term.Ind{}, nil, err
	}
	h, args := term.DecomposeApp(w)
	it, ok := h.(*term.IndT)
	if !ok {
		return term.Ind{}, nil, fmt.Errorf("FindInductive: head is not an inductive: %w", ErrShape)
	}

	return it.Ind, args, nil
}
