// Package guard: the top-level fixpoint check.
package guard

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/fixguard/reduce"
	"github.com/katalvlaran/fixguard/term"
)

// CheckFix verifies that every body of a mutual fixpoint block only
// makes recursive calls on structurally smaller arguments. It returns
// nil when the whole block is guarded, and otherwise an error matched
// by one of the package sentinels — ErrGuard for the user-facing
// verdict, ErrTimeout when a budget runs out.
func CheckFix(env *term.Env, ctx term.Ctx, fix *term.Fix, opts ...Option) error {
	// 1. Apply options.
	o := DefaultOptions()
	var fn Option
	for _, fn = range opts {
		fn(&o)
	}

	// 2. Validate the block shape.
	if env == nil || fix == nil {
		return otherErr("CheckFix", "nil environment or fixpoint")
	}
	n := len(fix.Defs)
	if n == 0 {
		return otherErr("CheckFix", "empty fixpoint block")
	}
	if fix.Index < 0 || fix.Index >= n {
		return indexErr("CheckFix", fix.Index, "focused component out of range")
	}

	c := &checker{
		env:   env,
		fuel:  reduce.NewFuel(o.Fuel),
		steps: reduce.NewFuel(o.StepBudget),
		trace: o.Trace,
	}
	c.recArgs = make([]int, n)
	for i, d := range fix.Defs {
		c.recArgs[i] = d.RecArg
	}

	// 3. Locate the inductive each body recurses on, and the body below
	// its decreasing argument.
	inds, ctxs, bodies, err := c.inductiveOfMutFix(ctx, fix)
	if err != nil {
		return err
	}

	// 4. Fetch the expected recargs tree per body.
	c.trees = make([]*term.WfPaths, n)
	for i := range inds {
		_, oib, lerr := env.LookupInd(inds[i])
		if lerr != nil {
			return convertErr("CheckFix", lerr)
		}
		c.trees[i] = oib.Recargs
	}

	// 5. Walk every body: the decreasing argument starts as a loose
	// subterm of its own tree, the rest of the context carries no
	// subterm information.
	for i := range fix.Defs {
		c.tr("CheckFix: body %d (%s), decreasing on argument %d",
			i, fix.Defs[i].Name, c.recArgs[i])
		g := &guardEnv{
			ctx:       ctxs[i],
			relMinFix: c.recArgs[i] + 1,
			specs:     []SubtermSpec{SubtermOf(Loose, c.trees[i])},
		}
		if err := c.checkRecCall(g, nil, bodies[i]); err != nil {
			return fmt.Errorf("CheckFix: body %d (%s): %w", i, fix.Defs[i].Name, err)
		}
	}

	return nil
}

// inductiveOfMutFix walks, for each body, the lambdas up to and
// including the decreasing argument, verifying that no sibling fixpoint
// occurs in any argument type on the way and that the decreasing
// argument's type reduces to a finite (non-co-) inductive. It returns
// per body the inductive, the context below the decreasing binder, and
// the remaining body.
func (c *checker) inductiveOfMutFix(ctx term.Ctx, fix *term.Fix) ([]term.Ind, []term.Ctx, []term.Term, error) {
	n := len(fix.Defs)
	inds := make([]term.Ind, n)
	ctxs := make([]term.Ctx, n)
	bodies := make([]term.Term, n)
	for i, def := range fix.Defs {
		k := def.RecArg
		if k < 0 {
			return nil, nil, nil, indexErr("inductiveOfMutFix", k, "negative decreasing-argument index")
		}
		local := ctx
		cur := def.Body
		for depth := 0; depth <= k; depth++ {
			w, err := c.whdAll(local, cur)
			if err != nil {
				return nil, nil, nil, err
			}
			lam, ok := w.(*term.Lambda)
			if !ok {
				return nil, nil, nil, guardErrAt("inductiveOfMutFix",
					fmt.Sprintf("body %d: not enough abstractions before the decreasing argument", i))
			}
			// No recursive occurrence may appear in an argument type.
			if !term.NoOccurBetween(depth, n, lam.Ty) {
				return nil, nil, nil, guardErrAt("inductiveOfMutFix",
					fmt.Sprintf("body %d: recursive call in the type of argument %d", i, depth))
			}
			if depth < k {
				local = local.PushAssum(lam.Name, lam.Ty)
				cur = lam.Body
				continue
			}
			ind, _, ferr := reduce.FindInductive(c.env, local, lam.Ty, c.fuel)
			if ferr != nil {
				if errors.Is(ferr, reduce.ErrShape) {
					return nil, nil, nil, guardErrAt("inductiveOfMutFix",
						fmt.Sprintf("body %d: recursion not on an inductive type", i))
				}

				return nil, nil, nil, convertErr("inductiveOfMutFix", ferr)
			}
			mib, lerr := c.env.LookupInductive(ind.Name)
			if lerr != nil {
				return nil, nil, nil, convertErr("inductiveOfMutFix", lerr)
			}
			if !mib.Finite {
				return nil, nil, nil, guardErrAt("inductiveOfMutFix",
					fmt.Sprintf("body %d: recursion on a coinductive type", i))
			}
			inds[i] = ind
			ctxs[i] = local.PushAssum(lam.Name, lam.Ty)
			bodies[i] = lam.Body
		}
	}

	return inds, ctxs, bodies, nil
}
