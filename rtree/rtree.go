// Package rtree: construction and structural primitives.
// See doc.go for the package overview.
package rtree

import "errors"

var (
	// ErrIllFormed is returned when an operation reaches a back-reference
	// that does not resolve within the tree (a dangling Param), or when two
	// trees being intersected have shapes that cannot be aligned.
	ErrIllFormed = errors.New("rtree: ill-formed regular tree")

	// ErrIncompatible is returned by Inter when two node labels have no
	// intersection and no default tree was supplied.
	ErrIncompatible = errors.New("rtree: incompatible labels")
)

// kind discriminates the three tree constructors.
type kind uint8

const (
	paramKind kind = iota // back-reference into an enclosing Rec
	nodeKind              // labelled node with ordered children
	recKind               // recursive binder over a family of definitions
)

// Tree is a regular tree with labels of type T.
//
// The zero value is not a valid tree; use MkParam, MkNode, MkRecCalls and
// MkRec. Trees are immutable once built and may share subtrees freely.
type Tree[T any] struct {
	kind  kind
	depth int // param: how many enclosing Rec binders to skip
	index int // param: body picked in that binder; rec: own component
	label T   // node only
	sons  []*Tree[T] // node: children; rec: the family definitions

	// rec only: the tied family [Rec(0,defs) .. Rec(n-1,defs)], shared by
	// all components so that expansion reuses pointers instead of
	// reallocating, keeping bisimulation memo tables finite.
	family []*Tree[T]

	// rec only: cached expansion, computed on first DestNode.
	exp *Tree[T]
}

// MkParam builds a back-reference to the index-th body of the depth-th
// enclosing recursive binder (both zero-based).
func MkParam[T any](depth, index int) *Tree[T] {
	return &Tree[T]{kind: paramKind, depth: depth, index: index}
}

// MkNode builds an ordinary node. sons may be nil for a leaf.
func MkNode[T any](label T, sons []*Tree[T]) *Tree[T] {
	return &Tree[T]{kind: nodeKind, label: label, sons: sons}
}

// MkRecCalls returns n fresh back-references Param(0,0) .. Param(0,n-1),
// one per body of the recursive binder about to be built around them.
func MkRecCalls[T any](n int) []*Tree[T] {
	out := make([]*Tree[T], n)
	for i := range out {
		out[i] = MkParam[T](0, i)
	}

	return out
}

// MkRec ties the knot over n mutually recursive definitions: it returns
// the family [t_0 .. t_n-1] where t_j denotes defs[j] with Param(0,i)
// resolving to t_i.
func MkRec[T any](defs []*Tree[T]) []*Tree[T] {
	family := make([]*Tree[T], len(defs))
	for j := range defs {
		family[j] = &Tree[T]{kind: recKind, index: j, sons: defs}
	}
	for j := range family {
		family[j].family = family
	}

	return family
}

// Lift shifts every back-reference crossing n new recursive binders,
// leaving bound references intact. Subtrees that contain no free
// back-reference are returned unchanged (pointer-shared).
func Lift[T any](n int, t *Tree[T]) *Tree[T] {
	if n == 0 {
		return t
	}

	return liftFrom(0, n, t)
}

// liftFrom shifts free Params (depth >= k) by n.
func liftFrom[T any](k, n int, t *Tree[T]) *Tree[T] {
	switch t.kind {
	case paramKind:
		if t.depth < k {
			return t
		}

		return MkParam[T](t.depth+n, t.index)
	case nodeKind:
		sons, changed := liftAll(k, n, t.sons)
		if !changed {
			return t
		}

		return MkNode(t.label, sons)
	default: // recKind: one more binder in scope inside the definitions
		defs, changed := liftAll(k+1, n, t.sons)
		if !changed {
			return t
		}

		return MkRec(defs)[t.index]
	}
}

// liftAll maps liftFrom over a slice, reporting whether anything moved.
func liftAll[T any](k, n int, ts []*Tree[T]) ([]*Tree[T], bool) {
	out := make([]*Tree[T], len(ts))
	changed := false
	for i, s := range ts {
		out[i] = liftFrom(k, n, s)
		if out[i] != s {
			changed = true
		}
	}

	return out, changed
}

// substRec substitutes the family for Param(depth, _) inside t,
// decrementing deeper free references. Used only by expansion.
func substRec[T any](family []*Tree[T], depth int, t *Tree[T]) *Tree[T] {
	switch t.kind {
	case paramKind:
		switch {
		case t.depth < depth:
			return t
		case t.depth == depth:
			return Lift(depth, family[t.index])
		default:
			return MkParam[T](t.depth-1, t.index)
		}
	case nodeKind:
		sons := make([]*Tree[T], len(t.sons))
		for i, s := range t.sons {
			sons[i] = substRec(family, depth, s)
		}

		return MkNode(t.label, sons)
	default: // recKind
		defs := make([]*Tree[T], len(t.sons))
		for i, s := range t.sons {
			defs[i] = substRec(family, depth+1, s)
		}

		return MkRec(defs)[t.index]
	}
}

// expand unfolds leading Rec binders until a Node or a (dangling) Param
// appears. Expansions are cached per Rec component, so repeated
// unfolding of the same component yields the same pointer.
func (t *Tree[T]) expand() *Tree[T] {
	cur := t
	for cur.kind == recKind {
		if cur.exp == nil {
			cur.exp = substRec(cur.family, 0, cur.sons[cur.index])
		}
		cur = cur.exp
	}

	return cur
}

// DestNode unfolds t to its head node and returns its label and children.
// A tree whose head is an unresolved back-reference is ill-formed.
func DestNode[T any](t *Tree[T]) (T, []*Tree[T], error) {
	e := t.expand()
	if e.kind != nodeKind {
		var zero T
		return zero, nil, ErrIllFormed
	}

	return e.label, e.sons, nil
}
