// Package guard: the subterm-spec lattice, the guard environment, the
// deferred-application stack, and checker options.
package guard

import (
	"fmt"

	"github.com/katalvlaran/fixguard/reduce"
	"github.com/katalvlaran/fixguard/term"
)

// Size qualifies how much smaller a subterm is. Loose is reserved for
// the recursive argument itself (or an equal term); Strict for proper
// subterms. Only Strict justifies a recursive call.
type Size uint8

const (
	Loose Size = iota
	Strict
)

func (s Size) String() string {
	if s == Strict {
		return "Strict"
	}

	return "Loose"
}

// sizeGlb is the meet: Strict only when both sides are Strict.
func sizeGlb(a, b Size) Size {
	if a == Strict && b == Strict {
		return Strict
	}

	return Loose
}

// SpecKind discriminates SubtermSpec variants.
type SpecKind uint8

const (
	// DeadCodeSpec marks an absurd branch (match on an empty type); it is
	// the neutral element of the glb.
	DeadCodeSpec SpecKind = iota
	// NotSubtermSpecKind is the bottom: unknown or definitely not smaller.
	NotSubtermSpecKind
	// SubtermSpecKind carries a size and a recargs tree for unfolding.
	SubtermSpecKind
)

// SubtermSpec is the lattice element attached to every in-scope variable
// and inferred for every subexpression. Tree is non-nil exactly for
// SubtermSpecKind, and is never the bare Norec leaf: a term whose tree
// carries no structure is represented as NotSubterm.
type SubtermSpec struct {
	Kind SpecKind
	Size Size
	Tree *term.WfPaths
}

// DeadSpec returns the absurd-branch spec.
func DeadSpec() SubtermSpec { return SubtermSpec{Kind: DeadCodeSpec} }

// NoSpec returns the bottom spec.
func NoSpec() SubtermSpec { return SubtermSpec{Kind: NotSubtermSpecKind} }

// SubtermOf returns a subterm claim of the given size, refined by tree.
func SubtermOf(sz Size, tree *term.WfPaths) SubtermSpec {
	return SubtermSpec{Kind: SubtermSpecKind, Size: sz, Tree: tree}
}

// SpecOfTree turns a recargs tree into the spec of a value bound at that
// position: a strict subterm when the tree claims structure, bottom when
// it is Norec.
func SpecOfTree(tree *term.WfPaths) SubtermSpec {
	if term.IsNorec(tree) {
		return NoSpec()
	}

	return SubtermOf(Strict, tree)
}

func (s SubtermSpec) String() string {
	switch s.Kind {
	case DeadCodeSpec:
		return "Dead_code"
	case NotSubtermSpecKind:
		return "Not_subterm"
	default:
		return fmt.Sprintf("Subterm(%s)", s.Size)
	}
}

// specGlb2 is the binary meet of the lattice: DeadCode is identity,
// NotSubterm absorbs, two Subterms meet by size and tree intersection
// (which fails only on incompatible trees).
func specGlb2(a, b SubtermSpec) (SubtermSpec, error) {
	switch {
	case a.Kind == DeadCodeSpec:
		return b, nil
	case b.Kind == DeadCodeSpec:
		return a, nil
	case a.Kind == NotSubtermSpecKind || b.Kind == NotSubtermSpecKind:
		return NoSpec(), nil
	default:
		tree, err := term.InterWfPaths(a.Tree, b.Tree)
		if err != nil {
			return SubtermSpec{}, err
		}

		return SubtermOf(sizeGlb(a.Size, b.Size), tree), nil
	}
}

// specGlb folds specGlb2 over a list; the empty meet is DeadCode.
func specGlb(specs []SubtermSpec) (SubtermSpec, error) {
	out := DeadSpec()
	for _, s := range specs {
		var err error
		out, err = specGlb2(out, s)
		if err != nil {
			return SubtermSpec{}, err
		}
	}

	return out, nil
}

// guardEnv is the walker's environment: the local term context, the de
// Bruijn index of the last fixpoint of the current mutual block (the
// block occupies relMinFix .. relMinFix+n-1), and the dB-indexed subterm
// specs of the bound variables. Lookups past the spec list are bottom.
// guardEnv values are immutable; pushes return fresh environments.
type guardEnv struct {
	ctx       term.Ctx
	relMinFix int
	specs     []SubtermSpec
}

// lookup returns the spec of Rel i.
func (g *guardEnv) lookup(i int) SubtermSpec {
	if i < 0 || i >= len(g.specs) {
		return NoSpec()
	}

	return g.specs[i]
}

// pushSpec binds one assumption with the given spec as the new dB 0.
func (g *guardEnv) pushSpec(name string, ty term.Term, s SubtermSpec) *guardEnv {
	specs := make([]SubtermSpec, 0, len(g.specs)+1)
	specs = append(specs, s)
	specs = append(specs, g.specs...)

	return &guardEnv{
		ctx:       g.ctx.PushAssum(name, ty),
		relMinFix: g.relMinFix + 1,
		specs:     specs,
	}
}

// pushDecls binds a whole context slice (decls[0] innermost), every
// entry with spec s.
func (g *guardEnv) pushDecls(decls []term.Decl, s SubtermSpec) *guardEnv {
	specs := make([]SubtermSpec, 0, len(decls)+len(g.specs))
	for range decls {
		specs = append(specs, s)
	}
	specs = append(specs, g.specs...)

	return &guardEnv{
		ctx:       g.ctx.PushDecls(decls),
		relMinFix: g.relMinFix + len(decls),
		specs:     specs,
	}
}

// pushRecTypes binds the block of (co)fixpoint names as assumptions with
// bottom specs; the first definition of the block becomes the outermost
// of the new binders.
func (g *guardEnv) pushRecTypes(names []string, tys []term.Term) *guardEnv {
	n := len(names)
	decls := make([]term.Decl, n)
	for j := 0; j < n; j++ {
		// def j sits at dB n-1-j.
		decls[n-1-j] = term.Decl{Name: names[j], Ty: tys[j]}
	}

	return g.pushDecls(decls, NoSpec())
}

// assignSpec returns g with the spec of Rel i replaced.
func (g *guardEnv) assignSpec(i int, s SubtermSpec) *guardEnv {
	n := len(g.specs)
	if i >= n {
		n = i + 1
	}
	specs := make([]SubtermSpec, n)
	for j := range specs {
		specs[j] = NoSpec()
	}
	copy(specs, g.specs)
	specs[i] = s

	return &guardEnv{ctx: g.ctx, relMinFix: g.relMinFix, specs: specs}
}

// stackElem is a deferred applicant: either a term whose spec has not
// been computed yet (with the environment to compute it in), or a
// precomputed spec.
type stackElem interface{ isStackElem() }

// sClosure defers spec computation for a pending argument.
type sClosure struct {
	g *guardEnv
	t term.Term
}

// sArg is a precomputed spec, e.g. a match-branch binder.
type sArg struct{ spec SubtermSpec }

func (sClosure) isStackElem() {}
func (sArg) isStackElem()     {}

// stack is the deferred-application stack, entry 0 being the first
// pending applicant.
type stack []stackElem

// pushStackClosures prepends args (in application order) as closures.
func pushStackClosures(g *guardEnv, args []term.Term, st stack) stack {
	out := make(stack, 0, len(args)+len(st))
	for _, a := range args {
		out = append(out, sClosure{g: g, t: a})
	}

	return append(out, st...)
}

// pushStackArgs prepends precomputed specs (in order).
func pushStackArgs(specs []SubtermSpec, st stack) stack {
	out := make(stack, 0, len(specs)+len(st))
	for _, s := range specs {
		out = append(out, sArg{spec: s})
	}

	return append(out, st...)
}

// extractStack pops the head of the stack; an empty stack yields nil.
func extractStack(st stack) (stackElem, stack) {
	if len(st) == 0 {
		return nil, nil
	}

	return st[0], st[1:]
}

// Default resource bounds. Both are deliberately generous: they exist to
// guarantee termination of the mutually re-entrant walk, not to ration
// ordinary checks.
const (
	DefaultStepBudget = 1_000_000
	DefaultFuel       = 1_000_000
)

// Options holds configurable parameters of a check.
type Options struct {
	// StepBudget caps walker and inference steps; exhaustion yields a
	// Timeout error.
	StepBudget int

	// Fuel caps weak-head reduction steps; exhaustion yields a Timeout
	// error.
	Fuel int

	// Trace, if non-nil, receives a stream of diagnostic lines.
	Trace func(string)
}

// Option configures CheckFix.
type Option func(*Options)

// DefaultOptions returns the default budgets and no trace hook.
func DefaultOptions() Options {
	return Options{StepBudget: DefaultStepBudget, Fuel: DefaultFuel}
}

// WithStepBudget caps the number of checker steps.
func WithStepBudget(n int) Option {
	return func(o *Options) { o.StepBudget = n }
}

// WithFuel caps the number of weak-head reduction steps.
func WithFuel(n int) Option {
	return func(o *Options) { o.Fuel = n }
}

// WithTrace streams diagnostics to fn.
func WithTrace(fn func(string)) Option {
	return func(o *Options) { o.Trace = fn }
}

// checker bundles the immutable data of one CheckFix run.
type checker struct {
	env     *term.Env
	recArgs []int            // decreasing-argument index per mutual body
	trees   []*term.WfPaths  // expected recargs tree per mutual body
	fuel    *reduce.Fuel     // weak-head reduction fuel, shared
	steps   *reduce.Fuel     // walker/inference step budget
	trace   func(string)
}

func (c *checker) numFixes() int { return len(c.recArgs) }

// tick consumes one checker step.
func (c *checker) tick(where string) error {
	if err := c.steps.Tick(); err != nil {
		return timeoutErr(where)
	}

	return nil
}

// tr emits a trace line when tracing is enabled.
func (c *checker) tr(format string, args ...interface{}) {
	if c.trace != nil {
		c.trace(fmt.Sprintf(format, args...))
	}
}

// whdAll / whdBetaIotaZeta wrap the reduction facade, translating its
// errors into the checker taxonomy.
func (c *checker) whdAll(ctx term.Ctx, t term.Term) (term.Term, error) {
	w, err := reduce.WhdAll(c.env, ctx, t, c.fuel)
	if err != nil {
		return nil, convertErr("whdAll", err)
	}

	return w, nil
}

func (c *checker) whdBetaIotaZeta(ctx term.Ctx, t term.Term) (term.Term, error) {
	w, err := reduce.WhdBetaIotaZeta(c.env, ctx, t, c.fuel)
	if err != nil {
		return nil, convertErr("whdBetaIotaZeta", err)
	}

	return w, nil
}

// stackElemSpecif forces the spec of a stack entry.
func (c *checker) stackElemSpecif(e stackElem) (SubtermSpec, error) {
	switch v := e.(type) {
	case sClosure:
		return c.subtermSpecif(v.g, nil, v.t)
	case sArg:
		return v.spec, nil
	default:
		return SubtermSpec{}, progErr("stackElemSpecif", "unknown stack element")
	}
}
