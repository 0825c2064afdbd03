package rtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fixguard/rtree"
)

// String-labelled trees keep the tests readable.
func eq(a, b string) bool { return a == b }

func interLab(a, b string) (string, bool) {
	if a == b {
		return a, true
	}

	return "", false
}

func node(l string, sons ...*rtree.Tree[string]) *rtree.Tree[string] {
	return rtree.MkNode(l, sons)
}

func leaf(l string) *rtree.Tree[string] { return rtree.MkNode[string](l, nil) }

// natLike ties a single recursive definition:
// Rec[ N [ leaf(z), node(s, self) ] ].
func natLike() *rtree.Tree[string] {
	def := node("N", leaf("z"), node("s", rtree.MkParam[string](0, 0)))

	return rtree.MkRec([]*rtree.Tree[string]{def})[0]
}

func TestDestNode_Plain(t *testing.T) {
	lab, sons, err := rtree.DestNode(node("a", leaf("b")))
	require.NoError(t, err)
	assert.Equal(t, "a", lab)
	assert.Len(t, sons, 1)
}

func TestDestNode_UnfoldsRec(t *testing.T) {
	lab, sons, err := rtree.DestNode(natLike())
	require.NoError(t, err)
	assert.Equal(t, "N", lab)
	require.Len(t, sons, 2)

	// The back-reference resolved: the s child loops back to the root.
	_, inner, err := rtree.DestNode(sons[1])
	require.NoError(t, err)
	require.Len(t, inner, 1)
	lab2, _, err := rtree.DestNode(inner[0])
	require.NoError(t, err)
	assert.Equal(t, "N", lab2)
}

func TestDestNode_DanglingParam(t *testing.T) {
	_, _, err := rtree.DestNode(rtree.MkParam[string](0, 0))
	assert.ErrorIs(t, err, rtree.ErrIllFormed)
}

func TestMkRecCalls(t *testing.T) {
	ps := rtree.MkRecCalls[string](3)
	assert.Len(t, ps, 3)
	// Wrapping them in a binder resolves each to its definition.
	defs := []*rtree.Tree[string]{leaf("a"), leaf("b"), node("c", ps[0])}
	fam := rtree.MkRec(defs)
	lab, _, err := rtree.DestNode(fam[1])
	require.NoError(t, err)
	assert.Equal(t, "b", lab)
}

func TestEqual_ModuloUnfolding(t *testing.T) {
	nat := natLike()
	// One manual unfolding step of the cycle.
	unfolded := node("N", leaf("z"), node("s", nat))
	assert.True(t, rtree.Equal(eq, nat, unfolded))
	assert.True(t, rtree.Equal(eq, unfolded, nat))
	assert.True(t, rtree.Equal(eq, nat, nat))
}

func TestEqual_Distinguishes(t *testing.T) {
	nat := natLike()
	other := rtree.MkRec([]*rtree.Tree[string]{
		node("N", leaf("z"), node("t", rtree.MkParam[string](0, 0))),
	})[0]
	assert.False(t, rtree.Equal(eq, nat, other))
	assert.False(t, rtree.Equal(eq, nat, leaf("z")))
}

func TestInter_SelfIsIdentity(t *testing.T) {
	for _, tr := range []*rtree.Tree[string]{leaf("z"), natLike()} {
		got, err := rtree.Inter(eq, interLab, nil, tr, tr)
		require.NoError(t, err)
		assert.True(t, rtree.Equal(eq, tr, got))
	}
}

func TestInter_IncompatibleLabels(t *testing.T) {
	_, err := rtree.Inter(eq, interLab, nil, leaf("a"), leaf("b"))
	assert.ErrorIs(t, err, rtree.ErrIncompatible)

	def := leaf("norec")
	got, err := rtree.Inter(eq, interLab, def, leaf("a"), leaf("b"))
	require.NoError(t, err)
	assert.True(t, rtree.Equal(eq, def, got))
}

func TestInter_Commutative(t *testing.T) {
	nat := natLike()
	unfolded := node("N", leaf("z"), node("s", nat))
	l, err := rtree.Inter(eq, interLab, nil, nat, unfolded)
	require.NoError(t, err)
	r, err := rtree.Inter(eq, interLab, nil, unfolded, nat)
	require.NoError(t, err)
	assert.True(t, rtree.Equal(eq, l, r))
	assert.True(t, rtree.Equal(eq, nat, l))
}

func TestIncl(t *testing.T) {
	def := leaf("norec")
	nat := natLike()
	assert.True(t, rtree.Incl(eq, interLab, def, nat, nat))
	assert.True(t, rtree.Incl(eq, interLab, def, def, def))
	// A tree is not included in an incompatible one...
	assert.False(t, rtree.Incl(eq, interLab, def, nat, leaf("other")))
	// ...but the default leaf is included in anything, since the
	// incompatible position collapses to it.
	assert.True(t, rtree.Incl(eq, interLab, def, def, nat))
}

func TestLift_ShiftsFreeParams(t *testing.T) {
	free := rtree.MkParam[string](0, 0)
	lifted := rtree.Lift(2, free)
	assert.True(t, rtree.Equal(eq, rtree.MkParam[string](2, 0), lifted))

	// Bound references do not move: the tied tree is unchanged.
	nat := natLike()
	assert.True(t, rtree.Equal(eq, nat, rtree.Lift(3, nat)))
}
