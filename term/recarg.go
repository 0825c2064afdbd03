// Package term: recarg labels and the wf_paths specialization of rtree.
package term

import (
	"fmt"

	"github.com/katalvlaran/fixguard/rtree"
)

// RecargKind tags a node of a recursive-argument tree.
type RecargKind uint8

const (
	// Norec marks a non-recursive position.
	Norec RecargKind = iota
	// Mrec marks a direct occurrence of an inductive of the current
	// mutual block.
	Mrec
	// Imbr marks a nested (imbricated) occurrence of an inductive inside
	// another inductive.
	Imbr
)

// Recarg is the label attached to wf_paths nodes. Ind is meaningful only
// for Mrec and Imbr.
type Recarg struct {
	Kind RecargKind
	Ind  Ind
}

// NorecArg returns the non-recursive label.
func NorecArg() Recarg { return Recarg{Kind: Norec} }

// MrecArg labels a direct mutual-recursive occurrence of ind.
func MrecArg(ind Ind) Recarg { return Recarg{Kind: Mrec, Ind: ind} }

// ImbrArg labels a nested occurrence of ind.
func ImbrArg(ind Ind) Recarg { return Recarg{Kind: Imbr, Ind: ind} }

// Eq is structural equality of labels.
func (r Recarg) Eq(o Recarg) bool {
	if r.Kind != o.Kind {
		return false
	}
	if r.Kind == Norec {
		return true
	}

	return r.Ind.Eq(o.Ind)
}

// MatchesInd reports whether the label refers (directly or nested) to ind.
func (r Recarg) MatchesInd(ind Ind) bool {
	return (r.Kind == Mrec || r.Kind == Imbr) && r.Ind.Eq(ind)
}

// InterRecarg intersects two labels. Mrec wins over Imbr on the same
// inductive; anything else mixing distinct inductives (or a Norec with a
// recursive label) is incompatible.
func InterRecarg(a, b Recarg) (Recarg, bool) {
	switch {
	case a.Kind == Norec && b.Kind == Norec:
		return a, true
	case a.Kind == Norec || b.Kind == Norec:
		return Recarg{}, false
	case !a.Ind.Eq(b.Ind):
		return Recarg{}, false
	case a.Kind == Mrec || b.Kind == Mrec:
		return MrecArg(a.Ind), true
	default:
		return ImbrArg(a.Ind), true
	}
}

// WfPaths is a recursive-argument tree: a regular tree labelled with
// Recarg tags. The tree of an inductive body has the shape
//
//	Node(Mrec ind, [Node(Norec, argtrees_ctor_k) | k])
//
// with nested occurrences labelled Imbr and back-references pointing at
// the enclosing container.
type WfPaths = rtree.Tree[Recarg]

// MkNorec returns the leaf claiming no recursive structure.
func MkNorec() *WfPaths { return rtree.MkNode(NorecArg(), nil) }

// MkPaths assembles the tree of one inductive body from its per-
// constructor argument trees.
func MkPaths(r Recarg, ctorArgTrees [][]*WfPaths) *WfPaths {
	ctors := make([]*WfPaths, len(ctorArgTrees))
	for k, args := range ctorArgTrees {
		ctors[k] = rtree.MkNode(NorecArg(), args)
	}

	return rtree.MkNode(r, ctors)
}

// EqWfPaths is bisimulation equality of recargs trees.
func EqWfPaths(t, u *WfPaths) bool {
	return rtree.Equal(Recarg.Eq, t, u)
}

// IsNorec reports whether t claims no recursive structure at all.
func IsNorec(t *WfPaths) bool { return EqWfPaths(t, MkNorec()) }

// InterWfPaths intersects two recargs trees, failing on incompatible
// labels (rtree.ErrIncompatible).
func InterWfPaths(t, u *WfPaths) (*WfPaths, error) {
	return rtree.Inter(Recarg.Eq, InterRecarg, nil, t, u)
}

// InclWfPaths reports whether t is included in u, with Norec absorbing
// incompatible positions.
func InclWfPaths(t, u *WfPaths) bool {
	return rtree.Incl(Recarg.Eq, InterRecarg, MkNorec(), t, u)
}

// DestRecarg returns the root label of t after unfolding.
func DestRecarg(t *WfPaths) (Recarg, error) {
	lab, _, err := rtree.DestNode(t)
	if err != nil {
		return Recarg{}, fmt.Errorf("DestRecarg: %w", err)
	}

	return lab, nil
}

// DestSubterms unfolds the tree of an inductive body into the argument
// trees of each constructor: result[k][j] is the tree of the j-th
// non-parameter argument of constructor k.
func DestSubterms(t *WfPaths) ([][]*WfPaths, error) {
	_, ctors, err := rtree.DestNode(t)
	if err != nil {
		return nil, fmt.Errorf("DestSubterms: %w", err)
	}
	out := make([][]*WfPaths, len(ctors))
	for k, c := range ctors {
		_, args, err := rtree.DestNode(c)
		if err != nil {
			return nil, fmt.Errorf("DestSubterms: constructor %d: %w", k, err)
		}
		out[k] = args
	}

	return out, nil
}
