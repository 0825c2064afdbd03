// Package rtree implements possibly-cyclic regular trees: finite terms
// denoting infinite trees, with explicit back-references into enclosing
// recursive binders.
//
// A tree is one of:
//
//   - Node(label, sons)   — an ordinary labelled node;
//   - Param(depth, index) — a back-reference to the index-th body of the
//     depth-th enclosing recursive binder;
//   - Rec(index, defs)    — a binder tying the knot over a family of
//     mutually recursive definitions, denoting defs[index].
//
// The package is generic in the label type. Observers never see Rec or
// Param directly: DestNode unfolds back-references on demand (with cached
// expansion, so the set of reachable trees stays finite), and the
// semantic operations — Equal, Incl, Inter — are bisimulations modulo
// that unfolding.
//
// Typical use: describing the recursive argument positions of (mutual,
// nested) inductive data types, where a node label tells whether a
// position is recursive and sons refine the positions below it.
//
// Complexity: all operations are linear in the finite representation,
// except Equal/Incl/Inter which memoize visited pairs of subtrees while
// chasing cycles.
package rtree
