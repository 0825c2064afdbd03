// Package guard: the guarded-recursion walker. checkRecCall traverses a
// fixpoint body, maintaining the guard environment and the deferred-
// application stack, verifying every recursive call, and falling back to
// weak-head reduction of matches, fixpoints, constants and projections
// when a direct check fails.
package guard

import "github.com/katalvlaran/fixguard/term"

// checkIsSubterm decides whether a spec justifies a recursive call whose
// decreasing argument must follow tree: strict subterms whose tree
// includes the expected one pass, dead code passes unconditionally.
func checkIsSubterm(s SubtermSpec, tree *term.WfPaths) bool {
	switch s.Kind {
	case SubtermSpecKind:
		return s.Size == Strict && term.InclWfPaths(tree, s.Tree)
	case DeadCodeSpec:
		return true
	default:
		return false
	}
}

// checkRecCall verifies that every recursive call inside t is guarded.
// The stack carries subterm information for the arguments t would
// receive once the surrounding matches reduce.
func (c *checker) checkRecCall(g *guardEnv, st stack, t term.Term) error {
	if err := c.tick("checkRecCall"); err != nil {
		return err
	}
	// Fast path: a term in which no fixpoint of the block occurs is
	// trivially guarded.
	if term.NoOccurBetween(g.relMinFix, c.numFixes(), t) {
		return nil
	}
	w, err := c.whdBetaIotaZeta(g.ctx, t)
	if err != nil {
		return err
	}
	h, l := term.DecomposeApp(w)
	switch v := h.(type) {
	case *term.Rel:
		return c.checkRel(g, st, v, l)
	case *term.Case:
		return c.checkCase(g, st, v, l)
	case *term.Fix:
		return c.checkFixTerm(g, st, v, l)
	case *term.Const:
		return c.checkConst(g, st, v, l)
	case *term.Lambda:
		if len(l) != 0 {
			return progErr("checkRecCall", "applied lambda after beta reduction")
		}
		if err := c.checkRecCall(g, nil, v.Ty); err != nil {
			return err
		}
		hd, rest := extractStack(st)
		spec := NoSpec()
		if hd != nil {
			spec, err = c.stackElemSpecif(hd)
			if err != nil {
				return err
			}
		}

		return c.checkRecCall(g.pushSpec(v.Name, v.Ty, spec), rest, v.Body)
	case *term.Prod:
		if len(l) != 0 {
			return progErr("checkRecCall", "applied product")
		}
		if err := c.checkRecCall(g, nil, v.Ty); err != nil {
			return err
		}

		return c.checkRecCall(g.pushSpec(v.Name, v.Ty, NoSpec()), nil, v.Body)
	case *term.CoFix:
		return c.checkCoFixTerm(g, v, l)
	case *term.IndT, *term.Construct:
		return c.checkAll(g, l)
	case *term.Proj:
		return c.checkProj(g, v, l)
	case *term.Sort:
		if len(l) != 0 {
			return progErr("checkRecCall", "applied sort")
		}

		return nil
	case *term.Var:
		return otherErr("checkRecCall", "named variables are not supported")
	case *term.Evar:
		return otherErr("checkRecCall", "existential variables are not supported")
	default:
		// App, LetIn and Cast cannot survive beta-iota-zeta reduction.
		return progErr("checkRecCall", "redex head after beta-iota-zeta reduction")
	}
}

// checkAll verifies a list of applicants, each under an empty stack.
func (c *checker) checkAll(g *guardEnv, l []term.Term) error {
	for _, a := range l {
		if err := c.checkApplicant(g, a); err != nil {
			return err
		}
	}

	return nil
}

// checkApplicant verifies one applicant. A bare reference to a tracked
// fixpoint is not judged here: it is being passed as data, and its
// eventual applications are verified through the deferred-application
// stack at the consumption sites (a constant receiving it is forcibly
// unfolded, see checkConst).
func (c *checker) checkApplicant(g *guardEnv, t term.Term) error {
	if c.isBareFixRef(g, t) {
		c.tr("checkApplicant: deferring bare fixpoint reference")

		return nil
	}

	return c.checkRecCall(g, nil, t)
}

// isBareFixRef reports whether t is, syntactically, a lone reference to
// one of the tracked fixpoints.
func (c *checker) isBareFixRef(g *guardEnv, t term.Term) bool {
	r, ok := t.(*term.Rel)

	return ok && r.Index >= g.relMinFix && r.Index < g.relMinFix+c.numFixes()
}

// anyBareFixRef reports whether any applicant is a bare tracked
// fixpoint reference.
func (c *checker) anyBareFixRef(g *guardEnv, l []term.Term) bool {
	for _, a := range l {
		if c.isBareFixRef(g, a) {
			return true
		}
	}

	return false
}

// checkRel handles a variable head. A variable pointing into the tracked
// fixpoint block is a recursive call: its decreasing argument must be a
// strict subterm of the expected recargs tree.
func (c *checker) checkRel(g *guardEnv, st stack, v *term.Rel, l []term.Term) error {
	nfi := c.numFixes()
	p := v.Index
	if p < g.relMinFix || p >= g.relMinFix+nfi {
		return c.checkAll(g, l)
	}
	if err := c.checkAll(g, l); err != nil {
		return err
	}
	// The block occupies relMinFix .. relMinFix+n-1, last fix innermost.
	glob := g.relMinFix + nfi - 1 - p
	np := c.recArgs[glob]
	stack2 := pushStackClosures(g, l, st)
	if len(stack2) <= np {
		return guardErrAt("checkRel", "partial application of a fixpoint: the decreasing argument is missing")
	}
	z := stack2[np]
	sp, err := c.stackElemSpecif(z)
	if err != nil {
		return err
	}
	if checkIsSubterm(sp, c.trees[glob]) {
		c.tr("checkRel: recursive call to fix %d ok (%s)", glob, sp)

		return nil
	}
	if _, isClosure := z.(sClosure); isClosure {
		return guardErrAt("checkRel", "recursive call on "+sp.String()+", not a strict subterm of the decreasing argument")
	}

	return guardErrAt("checkRel", "not enough information on the decreasing argument of a deferred application")
}

// checkCase optimistically checks a match in place; on a recoverable
// failure the discriminant is reduced further and, if a constructor
// appears, the whole match is re-checked in its reduced form.
func (c *checker) checkCase(g *guardEnv, st stack, v *term.Case, l []term.Term) error {
	err := func() error {
		if err := c.checkRecCall(g, nil, v.Rtf); err != nil {
			return err
		}
		if err := c.checkRecCall(g, nil, v.Discr); err != nil {
			return err
		}
		if err := c.checkAll(g, l); err != nil {
			return err
		}
		dspec, err := c.subtermSpecif(g, nil, v.Discr)
		if err != nil {
			return err
		}
		brSpecs, err := c.branchesSpecif(dspec, v)
		if err != nil {
			return err
		}
		stack2 := pushStackClosures(g, l, st)
		stack2, err = c.filterStackDomain(g, v.Rtf, stack2)
		if err != nil {
			return err
		}
		for k, br := range v.Branches {
			if err := c.checkRecCall(g, pushStackArgs(brSpecs[k], stack2), br); err != nil {
				return err
			}
		}

		return nil
	}()
	if err == nil || !recoverable(err) {
		return err
	}
	// Recovery: try hard to reduce the match away by uncovering a
	// constructor in the discriminant (unfolding constants too).
	d, rerr := c.whdAll(g.ctx, v.Discr)
	if rerr != nil {
		return rerr
	}
	if dh, _ := term.DecomposeApp(d); !isConstructHead(dh) {
		return err
	}
	c.tr("checkCase: retrying with iota-reducible discriminant")
	red := &term.Case{Ind: v.Ind, NPars: v.NPars, Rtf: v.Rtf, Discr: d, Branches: v.Branches}

	return c.checkRecCall(g, st, term.MkApp(red, l))
}

// checkFixTerm checks an inner fixpoint. The body of the focused
// component sees the spec of the applicant standing at its decreasing
// position; on a recoverable failure that applicant is reduced and, if a
// constructor appears, the fix application is re-checked.
func (c *checker) checkFixTerm(g *guardEnv, st stack, v *term.Fix, l []term.Term) error {
	decr := v.Defs[v.Index].RecArg
	err := func() error {
		if err := c.checkAll(g, l); err != nil {
			return err
		}
		for _, d := range v.Defs {
			if err := c.checkRecCall(g, nil, d.Ty); err != nil {
				return err
			}
		}
		names := make([]string, len(v.Defs))
		tys := make([]term.Term, len(v.Defs))
		for j, d := range v.Defs {
			names[j], tys[j] = d.Name, d.Ty
		}
		g2 := g.pushRecTypes(names, tys)
		stack2 := pushStackClosures(g, l, st)
		for j, d := range v.Defs {
			if j == v.Index && len(stack2) > decr {
				sp, err := c.stackElemSpecif(stack2[decr])
				if err != nil {
					return err
				}
				if err := c.checkNestedFixBody(g2, decr+1, sp, d.Body); err != nil {
					return err
				}
				continue
			}
			if err := c.checkRecCall(g2, nil, d.Body); err != nil {
				return err
			}
		}

		return nil
	}()
	if err == nil || !recoverable(err) {
		return err
	}
	if len(l) <= decr {
		return err
	}
	ra, rerr := c.whdAll(g.ctx, l[decr])
	if rerr != nil {
		return rerr
	}
	if rh, _ := term.DecomposeApp(ra); !isConstructHead(rh) {
		return err
	}
	c.tr("checkFixTerm: retrying with reduced decreasing argument")
	l2 := make([]term.Term, len(l))
	copy(l2, l)
	l2[decr] = ra

	return c.checkRecCall(g, st, term.MkApp(v, l2))
}

// checkNestedFixBody descends under decr lambdas, each pushed as
// non-recursive; once past them, the innermost binder (the decreasing
// argument) takes the given spec and the normal walk continues.
func (c *checker) checkNestedFixBody(g *guardEnv, decr int, spec SubtermSpec, body term.Term) error {
	if decr == 0 {
		return c.checkRecCall(g.assignSpec(0, spec), nil, body)
	}
	w, err := c.whdAll(g.ctx, body)
	if err != nil {
		return err
	}
	lam, ok := w.(*term.Lambda)
	if !ok {
		return progErr("checkNestedFixBody", "not enough abstractions in fixpoint body")
	}
	if err := c.checkRecCall(g, nil, lam.Ty); err != nil {
		return err
	}

	return c.checkNestedFixBody(g.pushSpec(lam.Name, lam.Ty, NoSpec()), decr-1, spec, lam.Body)
}

// checkConst checks a constant application; when the applicants fail the
// check directly, a transparent constant is unfolded and the application
// re-checked. A constant receiving a bare fixpoint reference is unfolded
// even when the applicant check succeeds, so the deferred calls hidden
// behind the constant become visible; an opaque constant cannot expose
// them and the application is rejected.
func (c *checker) checkConst(g *guardEnv, st stack, v *term.Const, l []term.Term) error {
	err := c.checkAll(g, l)
	if err != nil && !recoverable(err) {
		return err
	}
	if err == nil && !c.anyBareFixRef(g, l) {
		return nil
	}
	cb, lerr := c.env.LookupConstant(v.Name)
	if lerr != nil || cb.Body == nil {
		if err != nil {
			return err
		}

		return guardErrAt("checkConst",
			"fixpoint passed to the opaque constant "+string(v.Name))
	}
	c.tr("checkConst: retrying with %s unfolded", v.Name)

	return c.checkRecCall(g, st, term.MkApp(cb.Body, l))
}

// checkCoFixTerm checks applicants, the mutual types, and every body
// under the extended environment with empty stacks.
func (c *checker) checkCoFixTerm(g *guardEnv, v *term.CoFix, l []term.Term) error {
	if err := c.checkAll(g, l); err != nil {
		return err
	}
	names := make([]string, len(v.Defs))
	tys := make([]term.Term, len(v.Defs))
	for j, d := range v.Defs {
		if err := c.checkRecCall(g, nil, d.Ty); err != nil {
			return err
		}
		names[j], tys[j] = d.Name, d.Ty
	}
	g2 := g.pushRecTypes(names, tys)
	for _, d := range v.Defs {
		if err := c.checkRecCall(g2, nil, d.Body); err != nil {
			return err
		}
	}

	return nil
}

// checkProj checks a projection's applicants and inner value. On a
// recoverable failure the inner value is reduced; even when it uncovers
// a constructor the failure stands, because projection reduction is not
// implemented here.
func (c *checker) checkProj(g *guardEnv, v *term.Proj, l []term.Term) error {
	err := func() error {
		if err := c.checkAll(g, l); err != nil {
			return err
		}

		return c.checkRecCall(g, nil, v.Val)
	}()
	if err == nil || !recoverable(err) {
		return err
	}
	cval, rerr := c.whdAll(g.ctx, v.Val)
	if rerr != nil {
		return rerr
	}
	if ch, _ := term.DecomposeApp(cval); isConstructHead(ch) {
		c.tr("checkProj: constructor found but projection reduction is unavailable")
	}

	return err
}

func isConstructHead(t term.Term) bool {
	_, ok := t.(*term.Construct)

	return ok
}
