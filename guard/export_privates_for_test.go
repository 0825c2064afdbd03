// Package guard: white-box seams for the test suite, following the same
// pattern as the rest of the repository: tests live in guard_test and
// reach internals only through this file.
package guard

import (
	"github.com/katalvlaran/fixguard/reduce"
	"github.com/katalvlaran/fixguard/term"
)

// newTestChecker builds a checker with default budgets and no tracked
// fixpoints; sufficient for inference and tree-building seams.
func newTestChecker(env *term.Env) *checker {
	return &checker{
		env:   env,
		fuel:  reduce.NewFuel(DefaultFuel),
		steps: reduce.NewFuel(DefaultStepBudget),
	}
}

// SubtermSpecifForTest runs subterm inference on t under a guard
// environment whose innermost binders carry specs (specs[0] is dB 0).
func SubtermSpecifForTest(env *term.Env, ctx term.Ctx, specs []SubtermSpec, t term.Term) (SubtermSpec, error) {
	c := newTestChecker(env)
	g := &guardEnv{ctx: ctx, relMinFix: len(specs), specs: specs}

	return c.subtermSpecif(g, nil, t)
}

// GetRecargsApproxForTest exposes the recargs-tree builder.
func GetRecargsApproxForTest(env *term.Env, ctx term.Ctx, tree *term.WfPaths, ind term.Ind, args []term.Term) (*term.WfPaths, error) {
	return newTestChecker(env).getRecargsApprox(ctx, tree, ind, args)
}

// SpecGlbForTest exposes the lattice meet.
func SpecGlbForTest(specs []SubtermSpec) (SubtermSpec, error) {
	return specGlb(specs)
}

// CheckIsSubtermForTest exposes the recursive-call admissibility test.
func CheckIsSubtermForTest(s SubtermSpec, tree *term.WfPaths) bool {
	return checkIsSubterm(s, tree)
}
