// Package guard: subterm inference — computing the SubtermSpec of an
// arbitrary term under a guard environment and a deferred-application
// stack.
package guard

import (
	"errors"

	"github.com/katalvlaran/fixguard/reduce"
	"github.com/katalvlaran/fixguard/term"
)

// subtermSpecif infers the subterm spec of t. The stack carries the
// specs of arguments that would be applied to t after surrounding
// matches reduce.
func (c *checker) subtermSpecif(g *guardEnv, st stack, t term.Term) (SubtermSpec, error) {
	if err := c.tick("subtermSpecif"); err != nil {
		return SubtermSpec{}, err
	}
	w, err := c.whdAll(g.ctx, t)
	if err != nil {
		return SubtermSpec{}, err
	}
	h, l := term.DecomposeApp(w)
	switch v := h.(type) {
	case *term.Rel:
		// Applying a variable cannot lose subterm status: the stack is
		// deliberately discarded.
		return g.lookup(v.Index), nil

	case *term.Case:
		return c.caseSubtermSpecif(g, st, v, l)

	case *term.Fix:
		return c.fixSubtermSpecif(g, st, v, l)

	case *term.Lambda:
		if len(l) != 0 {
			return SubtermSpec{}, progErr("subtermSpecif", "applied lambda after weak-head reduction")
		}
		hd, rest := extractStack(st)
		spec := NoSpec()
		if hd != nil {
			spec, err = c.stackElemSpecif(hd)
			if err != nil {
				return SubtermSpec{}, err
			}
		}

		return c.subtermSpecif(g.pushSpec(v.Name, v.Ty, spec), rest, v.Body)

	case *term.Proj:
		// The projected value is inferred with the same stack as the
		// outer context.
		spec, err := c.subtermSpecif(g, st, v.Val)
		if err != nil {
			return SubtermSpec{}, err
		}
		if spec.Kind != SubtermSpecKind {
			// Dead_code and Not_subterm pass through.
			return spec, nil
		}
		subt, err := term.DestSubterms(spec.Tree)
		if err != nil {
			return SubtermSpec{}, convertErr("subtermSpecif", err)
		}
		if len(subt) != 1 {
			return SubtermSpec{}, progErr("subtermSpecif", "projection on a non-record inductive")
		}
		if v.Arg < 0 || v.Arg >= len(subt[0]) {
			return SubtermSpec{}, indexErr("subtermSpecif", v.Arg, "projection field out of range")
		}

		return SpecOfTree(subt[0][v.Arg]), nil

	case *term.Evar:
		return SubtermSpec{}, otherErr("subtermSpecif", "existential variables are not supported")

	default:
		return NoSpec(), nil
	}
}

// caseSubtermSpecif infers the spec of a pattern match: the glb of the
// branch specs (each branch seeing its constructor-argument specs on the
// stack), restricted by the match return-type function.
func (c *checker) caseSubtermSpecif(g *guardEnv, st stack, v *term.Case, l []term.Term) (SubtermSpec, error) {
	stack2 := pushStackClosures(g, l, st)
	dspec, err := c.subtermSpecif(g, nil, v.Discr)
	if err != nil {
		return SubtermSpec{}, err
	}
	brSpecs, err := c.branchesSpecif(dspec, v)
	if err != nil {
		return SubtermSpec{}, err
	}
	specs := make([]SubtermSpec, len(v.Branches))
	for i, br := range v.Branches {
		s, err := c.subtermSpecif(g, pushStackArgs(brSpecs[i], stack2), br)
		if err != nil {
			return SubtermSpec{}, err
		}
		specs[i] = s
	}
	spec, err := specGlb(specs)
	if err != nil {
		return SubtermSpec{}, convertErr("caseSubtermSpecif", err)
	}

	return c.restrictSpecForMatch(g, spec, v.Rtf)
}

// fixSubtermSpecif infers the spec of a nested fixpoint. To show that
// fix f x := e is a subterm it suffices to show e is, assuming f itself
// is: the current fix is temporarily marked as a strict subterm of its
// inductive, which lets nested fixpoints recursing on their own argument
// be recognized as producing strict subterms.
func (c *checker) fixSubtermSpecif(g *guardEnv, st stack, v *term.Fix, l []term.Term) (SubtermSpec, error) {
	n := len(v.Defs)
	i := v.Index

	// The fix only produces subterms when its co-domain is inductive.
	decls, concl, err := reduce.DecomposeProdAssum(c.env, g.ctx, v.Defs[i].Ty, c.fuel)
	if err != nil {
		return SubtermSpec{}, convertErr("fixSubtermSpecif", err)
	}
	ind, _, ferr := reduce.FindInductive(c.env, g.ctx.PushDecls(decls), concl, c.fuel)
	if ferr != nil {
		if errors.Is(ferr, reduce.ErrShape) {
			return NoSpec(), nil
		}

		return SubtermSpec{}, convertErr("fixSubtermSpecif", ferr)
	}
	_, oib, err := c.env.LookupInd(ind)
	if err != nil {
		return SubtermSpec{}, convertErr("fixSubtermSpecif", err)
	}
	rectree := oib.Recargs

	names := make([]string, n)
	tys := make([]term.Term, n)
	for j, d := range v.Defs {
		names[j], tys[j] = d.Name, d.Ty
	}
	g2 := g.pushRecTypes(names, tys)
	g2 = g2.assignSpec(n-1-i, SubtermOf(Strict, rectree))

	decrArg := v.Defs[i].RecArg
	stack2 := pushStackClosures(g, l, st)
	sign, stripped, err := term.DecomposeLamNAssum(decrArg+1, v.Defs[i].Body)
	if err != nil {
		return SubtermSpec{}, convertErr("fixSubtermSpecif", err)
	}
	g3 := g2.pushDecls(sign, NoSpec())
	if len(stack2) >= decrArg+1 {
		sp, err := c.stackElemSpecif(stack2[decrArg])
		if err != nil {
			return SubtermSpec{}, err
		}
		g3 = g3.assignSpec(0, sp)
	}

	return c.subtermSpecif(g3, nil, stripped)
}

// branchesSpecif derives, from the discriminant's spec, the spec of each
// constructor-argument binder of each branch. Strictness comes from
// pattern matching: the arguments of a constructor matched against a
// loose subterm become strict subterms.
func (c *checker) branchesSpecif(dspec SubtermSpec, v *term.Case) ([][]SubtermSpec, error) {
	_, oib, err := c.env.LookupInd(v.Ind)
	if err != nil {
		return nil, convertErr("branchesSpecif", err)
	}
	if len(v.Branches) != len(oib.CtorNArgs) {
		return nil, indexErr("branchesSpecif", len(v.Branches), "branch count differs from constructor count")
	}

	var subt [][]*term.WfPaths
	if dspec.Kind == SubtermSpecKind {
		lab, err := term.DestRecarg(dspec.Tree)
		if err != nil {
			return nil, convertErr("branchesSpecif", err)
		}
		if lab.MatchesInd(v.Ind) {
			subt, err = term.DestSubterms(dspec.Tree)
			if err != nil {
				return nil, convertErr("branchesSpecif", err)
			}
			if len(subt) != len(v.Branches) {
				return nil, progErr("branchesSpecif", "recargs tree does not match the constructor count")
			}
		}
	}

	out := make([][]SubtermSpec, len(v.Branches))
	for k := range v.Branches {
		ar := oib.CtorNArgs[k]
		specs := make([]SubtermSpec, ar)
		switch {
		case dspec.Kind == DeadCodeSpec:
			for j := range specs {
				specs[j] = DeadSpec()
			}
		case subt != nil:
			if len(subt[k]) != ar {
				return nil, progErr("branchesSpecif", "recargs tree arity differs from constructor arity")
			}
			for j := range specs {
				specs[j] = SpecOfTree(subt[k][j])
			}
		default:
			for j := range specs {
				specs[j] = NoSpec()
			}
		}
		out[k] = specs
	}

	return out, nil
}

// restrictSpecForMatch restricts a match's inferred spec by its
// return-type function: for a dependent return type concluding in an
// inductive, the spec's tree is intersected with a fresh recargs
// approximation; a dependent return type of any other shape voids the
// spec.
func (c *checker) restrictSpecForMatch(g *guardEnv, spec SubtermSpec, rtf term.Term) (SubtermSpec, error) {
	if spec.Kind == NotSubtermSpecKind {
		return spec, nil
	}
	absDecls, body, err := reduce.DecomposeLamAssum(c.env, g.ctx, rtf, c.fuel)
	if err != nil {
		return SubtermSpec{}, convertErr("restrictSpecForMatch", err)
	}
	// Non-dependent return type: no restriction needed.
	if term.NoOccurBetween(0, len(absDecls), body) {
		return spec, nil
	}
	ctx2 := g.ctx.PushDecls(absDecls)
	arDecls, concl, err := reduce.DecomposeProdAssum(c.env, ctx2, body, c.fuel)
	if err != nil {
		return SubtermSpec{}, convertErr("restrictSpecForMatch", err)
	}
	ctx3 := ctx2.PushDecls(arDecls)
	w, err := c.whdAll(ctx3, concl)
	if err != nil {
		return SubtermSpec{}, err
	}
	h, args := term.DecomposeApp(w)
	it, ok := h.(*term.IndT)
	if !ok {
		return NoSpec(), nil
	}
	if spec.Kind == DeadCodeSpec {
		return spec, nil
	}
	approx, err := c.getRecargsApprox(ctx3, spec.Tree, it.Ind, args)
	if err != nil {
		return SubtermSpec{}, err
	}
	tree, err := term.InterWfPaths(spec.Tree, approx)
	if err != nil {
		return SubtermSpec{}, convertErr("restrictSpecForMatch", err)
	}

	return SubtermOf(spec.Size, tree), nil
}

// filterStackDomain aligns the stack with the products of the match
// return-type function: entries whose product co-domain is an inductive
// are refined by the recargs approximation; entries of any other
// co-domain, and entries beyond the return type's arity, lose their
// spec information.
func (c *checker) filterStackDomain(g *guardEnv, rtf term.Term, st stack) (stack, error) {
	absDecls, ar, err := reduce.DecomposeLamAssum(c.env, g.ctx, rtf, c.fuel)
	if err != nil {
		return nil, convertErr("filterStackDomain", err)
	}
	// A non-dependent return type constrains nothing.
	if term.NoOccurBetween(0, len(absDecls), ar) {
		return st, nil
	}
	ctx := g.ctx.PushDecls(absDecls)
	out := make(stack, 0, len(st))
	cur := ar
	for idx, elt := range st {
		w, err := c.whdAll(ctx, cur)
		if err != nil {
			return nil, err
		}
		pr, ok := w.(*term.Prod)
		if !ok {
			for range st[idx:] {
				out = append(out, sArg{spec: NoSpec()})
			}

			return out, nil
		}
		decls2, a2, err := reduce.DecomposeProdAssum(c.env, ctx, pr.Ty, c.fuel)
		if err != nil {
			return nil, convertErr("filterStackDomain", err)
		}
		ctx2 := ctx.PushDecls(decls2)
		w2, err := c.whdAll(ctx2, a2)
		if err != nil {
			return nil, err
		}
		h, args := term.DecomposeApp(w2)
		next := elt
		if it, ok := h.(*term.IndT); ok {
			sp, err := c.stackElemSpecif(elt)
			if err != nil {
				return nil, err
			}
			if sp.Kind == SubtermSpecKind {
				approx, err := c.getRecargsApprox(ctx2, sp.Tree, it.Ind, args)
				if err != nil {
					return nil, err
				}
				tree, err := term.InterWfPaths(sp.Tree, approx)
				if err != nil {
					return nil, convertErr("filterStackDomain", err)
				}
				next = sArg{spec: SubtermOf(sp.Size, tree)}
			}
		} else {
			next = sArg{spec: NoSpec()}
		}
		out = append(out, next)
		ctx = ctx.PushAssum(pr.Name, pr.Ty)
		cur = pr.Body
	}

	return out, nil
}
