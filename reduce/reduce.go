// Package reduce: the fuelled weak-head machine and its flag presets.
package reduce

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/fixguard/term"
)

var (
	// ErrTimeout is returned when the reduction fuel is exhausted.
	ErrTimeout = errors.New("reduce: fuel exhausted")

	// ErrShape is returned when a helper expected a term of a particular
	// head shape (a product, an inductive) and found something else.
	ErrShape = errors.New("reduce: term has unexpected shape")
)

// Flags selects which reduction rules the machine may fire.
type Flags struct {
	Beta  bool // (λx.b) a      → b[a]
	Iota  bool // match C args  → branch args
	Zeta  bool // let x:=v in b → b[v]
	Delta bool // unfold constants and let-bound variables
	Fix   bool // unfold fix when the decreasing argument is constructor-headed
	CoFix bool // unfold cofix under match
}

// Flag presets used throughout the checker.
var (
	// All is full weak-head reduction.
	All = Flags{Beta: true, Iota: true, Zeta: true, Delta: true, Fix: true, CoFix: true}

	// BetaIotaZeta reduces everything except constants.
	BetaIotaZeta = Flags{Beta: true, Iota: true, Zeta: true, Fix: true, CoFix: true}

	// AllNoLet is full weak-head reduction with let-bindings preserved.
	AllNoLet = Flags{Beta: true, Iota: true, Delta: true, Fix: true, CoFix: true}
)

// Fuel bounds the number of machine steps. The zero of remaining fuel
// aborts reduction with ErrTimeout. A nil *Fuel is unbounded.
type Fuel struct{ left int }

// NewFuel returns a budget of n machine steps.
func NewFuel(n int) *Fuel { return &Fuel{left: n} }

// Tick consumes one step.
func (f *Fuel) Tick() error {
	if f == nil {
		return nil
	}
	if f.left <= 0 {
		return ErrTimeout
	}
	f.left--

	return nil
}

// contractFix substitutes the block's own closures for the fixpoint
// binders of the focused body.
func contractFix(fx *term.Fix) term.Term {
	n := len(fx.Defs)
	sub := make([]term.Term, n)
	for k := 0; k < n; k++ {
		// Rel k refers to def n-1-k (the first def is the outermost binder).
		sub[k] = &term.Fix{Defs: fx.Defs, Index: n - 1 - k}
	}

	return term.Subst(sub, fx.Defs[fx.Index].Body)
}

// contractCoFix is the cofixpoint analogue of contractFix.
func contractCoFix(cf *term.CoFix) term.Term {
	n := len(cf.Defs)
	sub := make([]term.Term, n)
	for k := 0; k < n; k++ {
		sub[k] = &term.CoFix{Defs: cf.Defs, Index: n - 1 - k}
	}

	return term.Subst(sub, cf.Defs[cf.Index].Body)
}

// Whd reduces t to weak-head normal form under the given flags.
func Whd(fl Flags, env *term.Env, ctx term.Ctx, t term.Term, fuel *Fuel) (term.Term, error) {
	head := t
	var spine []term.Term // pending arguments, application order
	for {
		if err := fuel.Tick(); err != nil {
			return nil, err
		}
		switch v := head.(type) {
		case *term.App:
			args := make([]term.Term, 0, len(v.Args)+len(spine))
			args = append(args, v.Args...)
			spine = append(args, spine...)
			head = v.Head
		case *term.Cast:
			head = v.Body
		case *term.Lambda:
			if !fl.Beta || len(spine) == 0 {
				return term.MkApp(head, spine), nil
			}
			head = term.Subst1(spine[0], v.Body)
			spine = spine[1:]
		case *term.LetIn:
			if !fl.Zeta {
				return term.MkApp(head, spine), nil
			}
			head = term.Subst1(v.Val, v.Body)
		case *term.Rel:
			if fl.Delta {
				if d, ok := ctx.Lookup(v.Index); ok && d.Val != nil {
					head = term.Lift(v.Index+1, d.Val)
					continue
				}
			}

			return term.MkApp(head, spine), nil
		case *term.Const:
			if fl.Delta {
				if c, err := env.LookupConstant(v.Name); err == nil && c.Body != nil {
					head = c.Body
					continue
				}
			}

			return term.MkApp(head, spine), nil
		case *term.Case:
			if !fl.Iota {
				return term.MkApp(head, spine), nil
			}
			discr, err := Whd(fl, env, ctx, v.Discr, fuel)
			if err != nil {
				return nil, err
			}
			dh, dargs := term.DecomposeApp(discr)
			if c, ok := dh.(*term.Construct); ok {
				if c.Ctor < 0 || c.Ctor >= len(v.Branches) || len(dargs) < v.NPars {
					return nil, fmt.Errorf("Whd: malformed match on constructor %d: %w", c.Ctor, ErrShape)
				}
				// iota: the branch consumes the constructor's non-parameter
				// arguments.
				head = term.MkApp(v.Branches[c.Ctor], dargs[v.NPars:])
				continue
			}
			if cf, ok := dh.(*term.CoFix); ok && fl.CoFix {
				head = &term.Case{
					Ind: v.Ind, NPars: v.NPars, Rtf: v.Rtf,
					Discr:    term.MkApp(contractCoFix(cf), dargs),
					Branches: v.Branches,
				}
				continue
			}
			stuck := &term.Case{
				Ind: v.Ind, NPars: v.NPars, Rtf: v.Rtf,
				Discr: discr, Branches: v.Branches,
			}

			return term.MkApp(stuck, spine), nil
		case *term.Fix:
			ra := v.Defs[v.Index].RecArg
			if !fl.Fix || len(spine) <= ra {
				return term.MkApp(head, spine), nil
			}
			arg, err := Whd(fl, env, ctx, spine[ra], fuel)
			if err != nil {
				return nil, err
			}
			if ah, _ := term.DecomposeApp(arg); !isConstruct(ah) {
				return term.MkApp(head, spine), nil
			}
			upd := make([]term.Term, len(spine))
			copy(upd, spine)
			upd[ra] = arg
			spine = upd
			head = contractFix(v)
		default:
			// Var, Sort, IndT, Construct, CoFix, Proj, Evar: weak-head normal.
			return term.MkApp(head, spine), nil
		}
	}
}

func isConstruct(t term.Term) bool {
	_, ok := t.(*term.Construct)

	return ok
}

// WhdAll is full weak-head reduction (β ι ζ δ).
func WhdAll(env *term.Env, ctx term.Ctx, t term.Term, fuel *Fuel) (term.Term, error) {
	return Whd(All, env, ctx, t, fuel)
}

// WhdBetaIotaZeta reduces without unfolding constants.
func WhdBetaIotaZeta(env *term.Env, ctx term.Ctx, t term.Term, fuel *Fuel) (term.Term, error) {
	return Whd(BetaIotaZeta, env, ctx, t, fuel)
}

// WhdAllNoLet is full weak-head reduction preserving let-bindings.
func WhdAllNoLet(env *term.Env, ctx term.Ctx, t term.Term, fuel *Fuel) (term.Term, error) {
	return Whd(AllNoLet, env, ctx, t, fuel)
}
