// Package guard: recursive-argument tree construction for nested
// inductives.
//
// A nested inductive such as
//
//	rtree A := rnode (list (rtree A))
//
// needs the container's tree (list's) instantiated against the outer
// tree: direct recursion labels of the container become nested (Imbr)
// labels, and the container's element positions are re-pointed at the
// outer inductive, so matching on the inner list yields rtree-shaped
// subterm information.
package guard

import (
	"github.com/katalvlaran/fixguard/reduce"
	"github.com/katalvlaran/fixguard/rtree"
	"github.com/katalvlaran/fixguard/term"
)

// raEntry is one binder of the recursive-argument environment: the
// recarg label of the binder and the tree its occurrences unfold to.
type raEntry struct {
	label term.Recarg
	tree  *term.WfPaths
}

// ienv pairs a local term context with its parallel recursive-argument
// environment. Binders without recursive meaning carry Norec entries;
// lookups past the list default to Norec.
type ienv struct {
	ctx term.Ctx
	ra  []raEntry
}

// pushVar binds one non-recursive assumption.
func (ie ienv) pushVar(name string, ty term.Term) ienv {
	ra := make([]raEntry, 0, len(ie.ra)+1)
	ra = append(ra, raEntry{label: term.NorecArg(), tree: term.MkNorec()})
	ra = append(ra, ie.ra...)

	return ienv{ctx: ie.ctx.PushAssum(name, ty), ra: ra}
}

// getRecargsApprox approximates the recargs tree of ind applied to args,
// pruned by the already-inferred tree: positions the tree already
// disallows are not traversed.
func (c *checker) getRecargsApprox(ctx term.Ctx, tree *term.WfPaths, ind term.Ind, args []term.Term) (*term.WfPaths, error) {
	return c.buildRecargsNested(ienv{ctx: ctx}, tree, ind, args)
}

// buildRecargs computes the tree of one constructor-argument type.
// Products are entered (their binders carry no recursion), bound
// variables unfold through the recursive-argument environment, and an
// inductive head matching the seed's root label starts a nested
// instantiation. Anything else is non-recursive.
func (c *checker) buildRecargs(ie ienv, seed *term.WfPaths, t term.Term) (*term.WfPaths, error) {
	if err := c.tick("buildRecargs"); err != nil {
		return nil, err
	}
	w, err := c.whdAll(ie.ctx, t)
	if err != nil {
		return nil, err
	}
	h, largs := term.DecomposeApp(w)
	switch v := h.(type) {
	case *term.Prod:
		if len(largs) != 0 {
			return nil, progErr("buildRecargs", "applied product after weak-head reduction")
		}

		return c.buildRecargs(ie.pushVar(v.Name, v.Ty), seed, v.Body)
	case *term.Rel:
		if v.Index < len(ie.ra) {
			return ie.ra[v.Index].tree, nil
		}
		// Free variables are allowed and non-recursive.
		return term.MkNorec(), nil
	case *term.IndT:
		lab, err := term.DestRecarg(seed)
		if err != nil {
			return nil, convertErr("buildRecargs", err)
		}
		if lab.MatchesInd(v.Ind) {
			return c.buildRecargsNested(ie, seed, v.Ind, largs)
		}

		return term.MkNorec(), nil
	default:
		return term.MkNorec(), nil
	}
}

// buildRecargsNested instantiates the (possibly mutual) block of ind as
// a nested occurrence: the mutual bodies are pushed as assumptions
// applied to the uniform parameters, sibling references unfold to fresh
// back-references, and each constructor's argument types are rebuilt
// against the seed's corresponding subtrees before tying the knot.
func (c *checker) buildRecargsNested(ie ienv, seed *term.WfPaths, ind term.Ind, largs []term.Term) (*term.WfPaths, error) {
	if err := c.tick("buildRecargsNested"); err != nil {
		return nil, err
	}
	// A seed that already disallows recursion stops the traversal.
	if term.IsNorec(seed) {
		return seed, nil
	}
	mib, err := c.env.LookupInductive(ind.Name)
	if err != nil {
		return nil, convertErr("buildRecargsNested", err)
	}
	ntypes := mib.NTypes()
	auxnpar := NumUniformParams(mib)
	nonrecpar := mib.NPars - auxnpar
	if len(largs) < auxnpar {
		return nil, otherErr("buildRecargsNested", "fewer arguments than uniform parameters")
	}
	lpar := largs[:auxnpar]

	// 1. Push the mutual bodies as assumptions instantiated with the
	// uniform parameters; body 0 is pushed first (outermost binder).
	ctx2 := ie.ctx
	for j := 0; j < ntypes; j++ {
		lparJ := make([]term.Term, len(lpar))
		for i, a := range lpar {
			lparJ[i] = term.Lift(j, a)
		}
		ty, err := reduce.HnfProdApps(c.env, ctx2, mib.Bodies[j].Arity, lparJ, c.fuel)
		if err != nil {
			return nil, convertErr("buildRecargsNested", err)
		}
		ctx2 = ctx2.PushAssum(mib.Bodies[j].Name, ty)
	}

	// 2. Extend the recursive-argument environment: dB i refers to body
	// ntypes-1-i, labelled as a nested occurrence unfolding to a fresh
	// back-reference; pre-existing entries are lifted past the binder.
	ra := make([]raEntry, 0, ntypes+len(ie.ra))
	for i := 0; i < ntypes; i++ {
		j := ntypes - 1 - i
		ra = append(ra, raEntry{
			label: term.ImbrArg(term.Ind{Name: ind.Name, Index: j}),
			tree:  rtree.MkParam[term.Recarg](0, j),
		})
	}
	for _, e := range ie.ra {
		ra = append(ra, raEntry{label: e.label, tree: rtree.Lift(1, e.tree)})
	}
	ie2 := ienv{ctx: ctx2, ra: ra}

	lparLift := make([]term.Term, len(lpar))
	for i, a := range lpar {
		lparLift[i] = term.Lift(ntypes, a)
	}

	// 3. Recursion limits: for a single body the seed itself; for a
	// genuinely mutual block the statically computed trees (nested
	// inductives with mutually recursive containers are not refined).
	seedSub := make([][][]*term.WfPaths, ntypes)
	if ntypes == 1 {
		s, err := term.DestSubterms(seed)
		if err != nil {
			return nil, convertErr("buildRecargsNested", err)
		}
		seedSub[0] = s
	} else {
		for j := range mib.Bodies {
			s, err := term.DestSubterms(mib.Bodies[j].Recargs)
			if err != nil {
				return nil, convertErr("buildRecargsNested", err)
			}
			seedSub[j] = s
		}
	}

	// 4. Rebuild each constructor's argument trees.
	paths := make([]*term.WfPaths, ntypes)
	for j := 0; j < ntypes; j++ {
		body := mib.Bodies[j]
		perCtor := make([][]*term.WfPaths, len(body.CtorTypes))
		for k, ct := range body.CtorTypes {
			if k >= len(seedSub[j]) {
				return nil, indexErr("buildRecargsNested", k, "constructor has no seed subtree")
			}
			// Abstract away the parameters: sibling references already
			// carry the uniform parameters through the extended env.
			abs := abstractMindLC(ntypes, auxnpar, ct)
			inst, err := reduce.HnfProdApps(c.env, ie2.ctx, abs, lparLift, c.fuel)
			if err != nil {
				return nil, convertErr("buildRecargsNested", err)
			}
			// Non-uniform parameters may not carry recursion: move them
			// into the context as Norec binders.
			ieC := ie2
			cur := inst
			for p := 0; p < nonrecpar; p++ {
				w, err := c.whdAll(ieC.ctx, cur)
				if err != nil {
					return nil, err
				}
				pr, ok := w.(*term.Prod)
				if !ok {
					return nil, otherErr("buildRecargsNested", "missing non-uniform parameter product")
				}
				ieC = ieC.pushVar(pr.Name, pr.Ty)
				cur = pr.Body
			}
			args, err := c.buildRecargsConstructors(ieC, seedSub[j][k], cur)
			if err != nil {
				return nil, err
			}
			perCtor[k] = args
		}
		paths[j] = term.MkPaths(term.ImbrArg(term.Ind{Name: ind.Name, Index: j}), perCtor)
	}

	// 5. Tie the knot and select the component that was asked for.
	family := rtree.MkRec(paths)
	if ind.Index < 0 || ind.Index >= len(family) {
		return nil, indexErr("buildRecargsNested", ind.Index, "inductive body out of range")
	}

	return family[ind.Index], nil
}

// buildRecargsConstructors processes a constructor type's argument
// products left to right, consuming one seed subtree per argument.
func (c *checker) buildRecargsConstructors(ie ienv, seeds []*term.WfPaths, ctorTy term.Term) ([]*term.WfPaths, error) {
	out := make([]*term.WfPaths, 0, len(seeds))
	cur := ctorTy
	for {
		if err := c.tick("buildRecargsConstructors"); err != nil {
			return nil, err
		}
		w, err := c.whdAll(ie.ctx, cur)
		if err != nil {
			return nil, err
		}
		h, largs := term.DecomposeApp(w)
		pr, ok := h.(*term.Prod)
		if !ok {
			return out, nil
		}
		if len(largs) != 0 {
			return nil, progErr("buildRecargsConstructors", "applied product after weak-head reduction")
		}
		if len(out) >= len(seeds) {
			return nil, indexErr("buildRecargsConstructors", len(out), "more constructor arguments than seed subtrees")
		}
		argTree, err := c.buildRecargs(ie, seeds[len(out)], pr.Ty)
		if err != nil {
			return nil, err
		}
		out = append(out, argTree)
		ie = ie.pushVar(pr.Name, pr.Ty)
		cur = pr.Body
	}
}

// abstractMindLC replaces the free sibling-body references of a
// constructor type with parameter-dropping abstractions, so that
// applying the type to the uniform parameters leaves sibling references
// pointing directly at the pushed body assumptions.
func abstractMindLC(ntypes, auxnpar int, ctorTy term.Term) term.Term {
	subs := make([]term.Term, ntypes)
	for k := 0; k < ntypes; k++ {
		inner := term.Term(&term.Rel{Index: k + auxnpar})
		for i := 0; i < auxnpar; i++ {
			inner = &term.Lambda{Name: "_", Ty: &term.Sort{}, Body: inner}
		}
		subs[k] = inner
	}

	return term.Subst(subs, ctorTy)
}
