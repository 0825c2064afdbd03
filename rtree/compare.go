// Package rtree: semantic comparison — bisimulation equality, inclusion
// and intersection modulo unfolding of recursive binders.
package rtree

// structEq is raw structural equality on the finite representation,
// without unfolding. It is only used for memo-table membership.
func structEq[T any](eq func(T, T) bool, t, u *Tree[T]) bool {
	if t == u {
		return true
	}
	if t.kind != u.kind {
		return false
	}
	switch t.kind {
	case paramKind:
		return t.depth == u.depth && t.index == u.index
	case nodeKind:
		if !eq(t.label, u.label) || len(t.sons) != len(u.sons) {
			return false
		}
	default: // recKind
		if t.index != u.index || len(t.sons) != len(u.sons) {
			return false
		}
	}
	for i := range t.sons {
		if !structEq(eq, t.sons[i], u.sons[i]) {
			return false
		}
	}

	return true
}

// pair is a memo entry of compared subtrees (pre-expansion).
type pair[T any] struct{ a, b *Tree[T] }

// Equal reports bisimilarity of t and u up to unfolding of recursive
// binders, comparing labels with eq. Visited pairs are memoized: once a
// pair re-appears on the comparison path, the corresponding infinite
// branches coincide and the pair is accepted.
func Equal[T any](eq func(T, T) bool, t, u *Tree[T]) bool {
	var cmp func(histo []pair[T], t, u *Tree[T]) bool
	cmp = func(histo []pair[T], t, u *Tree[T]) bool {
		for _, p := range histo {
			if structEq(eq, p.a, t) && structEq(eq, p.b, u) {
				return true
			}
		}
		te, ue := t.expand(), u.expand()
		if te.kind != ue.kind {
			return false
		}
		if te.kind == paramKind {
			// Dangling references only compare positionally.
			return te.depth == ue.depth && te.index == ue.index
		}
		if !eq(te.label, ue.label) || len(te.sons) != len(ue.sons) {
			return false
		}
		next := append(histo, pair[T]{t, u})
		for i := range te.sons {
			if !cmp(next, te.sons[i], ue.sons[i]) {
				return false
			}
		}

		return true
	}

	return cmp(nil, t, u)
}

// Inter intersects t and u componentwise. Labels are combined with
// interLabel; when a pair of labels has no intersection the subtree
// collapses to def, or the whole operation fails with ErrIncompatible
// when def is nil. Aligned recursive binders are intersected without
// unfolding so bindings are preserved; misaligned ones are unfolded.
func Inter[T any](
	eq func(T, T) bool,
	interLabel func(T, T) (T, bool),
	def *Tree[T],
	t, u *Tree[T],
) (*Tree[T], error) {
	var rec func(t, u *Tree[T]) (*Tree[T], error)
	rec = func(t, u *Tree[T]) (*Tree[T], error) {
		switch {
		case t.kind == paramKind && u.kind == paramKind:
			if t.depth != u.depth || t.index != u.index {
				return nil, ErrIllFormed
			}

			return t, nil
		case t.kind == nodeKind && u.kind == nodeKind:
			lab, ok := interLabel(t.label, u.label)
			if !ok {
				if def == nil {
					return nil, ErrIncompatible
				}

				return def, nil
			}
			if len(t.sons) != len(u.sons) {
				if def == nil {
					return nil, ErrIllFormed
				}

				return def, nil
			}
			sons := make([]*Tree[T], len(t.sons))
			for i := range sons {
				s, err := rec(t.sons[i], u.sons[i])
				if err != nil {
					return nil, err
				}
				sons[i] = s
			}

			return MkNode(lab, sons), nil
		case t.kind == recKind && u.kind == recKind &&
			t.index == u.index && len(t.sons) == len(u.sons):
			// Aligned binders: preserve the bindings.
			defs := make([]*Tree[T], len(t.sons))
			for i := range defs {
				d, err := rec(t.sons[i], u.sons[i])
				if err != nil {
					return nil, err
				}
				defs[i] = d
			}

			return MkRec(defs)[t.index], nil
		case t.kind == recKind:
			return rec(t.expand(), u)
		case u.kind == recKind:
			return rec(t, u.expand())
		default:
			return nil, ErrIllFormed
		}
	}

	return rec(t, u)
}

// Incl reports whether t is included in u: every position where t claims
// structure is claimed by u as well, with def (typically the "no
// recursion" leaf) absorbing incompatible positions. Defined as
// Equal(t, Inter(t, u)).
func Incl[T any](
	eq func(T, T) bool,
	interLabel func(T, T) (T, bool),
	def *Tree[T],
	t, u *Tree[T],
) bool {
	w, err := Inter(eq, interLabel, def, t, u)
	if err != nil {
		return false
	}

	return Equal(eq, t, w)
}
