// Package fixguard (root) is a guardedness checker for a dependently-typed
// lambda calculus with inductive and coinductive types, pattern matching,
// fixpoints, projections and constants.
//
// 🚀 What is fixguard?
//
//	A pure-Go, deterministic decision procedure that, given a (mutually
//	recursive) fixpoint definition, decides whether every recursive call
//	is made on a structurally smaller argument — the property that
//	guarantees strong normalization of the definition.
//
// Under the hood, everything is organized under four subpackages:
//
//	term/   — term AST, de Bruijn lifting/substitution, local contexts,
//	          and the global environment (inductives, constants)
//	rtree/  — possibly-cyclic regular trees with back-references,
//	          bisimulation equality, inclusion and intersection
//	reduce/ — flag-selectable, fuelled weak-head reduction plus
//	          product/lambda decomposition helpers
//	guard/  — the checker itself: subterm-spec lattice, recursive-argument
//	          tree builder, subterm inference, and CheckFix
//
// Quick sketch:
//
//	fix len (l : list A) :=
//	  match l with nil ⇒ 0 | cons _ t ⇒ S (len t) end
//
// is accepted (the call is on t, a strict subterm of l), while replacing
// `len t` by `len l` is rejected with a guard error.
//
// fixguard is a library: no CLI, no I/O, no goroutines. Diagnostics are
// available through an opt-in trace hook (guard.WithTrace).
//
//	go get github.com/katalvlaran/fixguard/guard
package fixguard
