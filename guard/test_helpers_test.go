// Package guard_test: shared fixtures for the checker tests.
//
// The fixtures model a tiny standard library the way a positivity
// checker would hand it to the guardedness checker:
//
//	nat    := O | S nat
//	list A := nil | cons A (list A)
//	False  := (no constructors)
//	bool   := true | false
//	rtree A := rnode (list (rtree A))          (a nested inductive)
//	stream := scons nat stream                 (coinductive)
//
// plus two constants: an opaque binary `plus` and a transparent
// `list_map` at the rtree-of-nat instantiation.
package guard_test

import (
	"github.com/katalvlaran/fixguard/rtree"
	"github.com/katalvlaran/fixguard/term"
)

// Kernel names of the fixture globals.
const (
	knNat     = term.KerName("Datatypes.nat")
	knList    = term.KerName("Datatypes.list")
	knBool    = term.KerName("Datatypes.bool")
	knEmpty   = term.KerName("Logic.False")
	knRose    = term.KerName("Rose.rtree")
	knStream  = term.KerName("Streams.stream")
	knListMap = term.KerName("List.map")
	knPlus    = term.KerName("Nat.add")
)

var (
	natInd    = term.Ind{Name: knNat}
	listInd   = term.Ind{Name: knList}
	boolInd   = term.Ind{Name: knBool}
	emptyInd  = term.Ind{Name: knEmpty}
	roseInd   = term.Ind{Name: knRose}
	streamInd = term.Ind{Name: knStream}
)

// Term shorthands.
func rel(i int) term.Term              { return &term.Rel{Index: i} }
func sortT() term.Term                 { return &term.Sort{} }
func indT(i term.Ind) term.Term        { return &term.IndT{Ind: i} }
func ctor(i term.Ind, k int) term.Term { return &term.Construct{Ind: i, Ctor: k} }
func constT(kn term.KerName) term.Term { return &term.Const{Name: kn} }

func prod(name string, ty, body term.Term) term.Term {
	return &term.Prod{Name: name, Ty: ty, Body: body}
}

func lam(name string, ty, body term.Term) term.Term {
	return &term.Lambda{Name: name, Ty: ty, Body: body}
}

func app(h term.Term, args ...term.Term) term.Term { return term.MkApp(h, args) }

// arrow is the non-dependent product a -> b.
func arrow(a, b term.Term) term.Term { return prod("_", a, term.Lift(1, b)) }

// Common fixture types.
func natTy() term.Term      { return indT(natInd) }
func listNatTy() term.Term  { return app(indT(listInd), natTy()) }
func roseNatTy() term.Term  { return app(indT(roseInd), natTy()) }
func listRoseTy() term.Term { return app(indT(listInd), roseNatTy()) }

// Recargs-tree shorthands.
func wfParam(d, i int) *term.WfPaths { return rtree.MkParam[term.Recarg](d, i) }

// natRecargs: Rec[ Mrec(nat) [ O: [] | S: [self] ] ].
func natRecargs() *term.WfPaths {
	def := term.MkPaths(term.MrecArg(natInd), [][]*term.WfPaths{
		{},
		{wfParam(0, 0)},
	})

	return rtree.MkRec([]*term.WfPaths{def})[0]
}

// listRecargs: Rec[ Mrec(list) [ nil: [] | cons: [Norec, self] ] ].
func listRecargs() *term.WfPaths {
	def := term.MkPaths(term.MrecArg(listInd), [][]*term.WfPaths{
		{},
		{term.MkNorec(), wfParam(0, 0)},
	})

	return rtree.MkRec([]*term.WfPaths{def})[0]
}

// roseRecargs nests list inside rtree: the cons element position points
// back at the enclosing rtree binder.
func roseRecargs() *term.WfPaths {
	inner := rtree.MkRec([]*term.WfPaths{term.MkPaths(term.ImbrArg(listInd), [][]*term.WfPaths{
		{},
		{wfParam(1, 0), wfParam(0, 0)},
	})})[0]
	outer := term.MkPaths(term.MrecArg(roseInd), [][]*term.WfPaths{{inner}})

	return rtree.MkRec([]*term.WfPaths{outer})[0]
}

func emptyRecargs() *term.WfPaths {
	def := term.MkPaths(term.MrecArg(emptyInd), nil)

	return rtree.MkRec([]*term.WfPaths{def})[0]
}

func boolRecargs() *term.WfPaths {
	def := term.MkPaths(term.MrecArg(boolInd), [][]*term.WfPaths{{}, {}})

	return rtree.MkRec([]*term.WfPaths{def})[0]
}

func streamRecargs() *term.WfPaths {
	def := term.MkPaths(term.MrecArg(streamInd), [][]*term.WfPaths{
		{term.MkNorec(), wfParam(0, 0)},
	})

	return rtree.MkRec([]*term.WfPaths{def})[0]
}

// newTestEnv assembles the fixture environment.
func newTestEnv() *term.Env {
	env := term.NewEnv()

	env.AddInductive(&term.MutInd{
		Name: knNat, NPars: 0, Finite: true,
		Bodies: []*term.OneInd{{
			Name:  "nat",
			Arity: sortT(),
			CtorTypes: []term.Term{
				rel(0),                    // O : nat
				prod("n", rel(0), rel(1)), // S : nat -> nat
			},
			CtorNArgs: []int{0, 1},
			Recargs:   natRecargs(),
		}},
	})

	env.AddInductive(&term.MutInd{
		Name: knList, NPars: 1, Finite: true,
		Bodies: []*term.OneInd{{
			Name:  "list",
			Arity: prod("A", sortT(), sortT()),
			CtorTypes: []term.Term{
				// nil : forall A, list A
				prod("A", sortT(), app(rel(1), rel(0))),
				// cons : forall A, A -> list A -> list A
				prod("A", sortT(),
					prod("x", rel(0),
						prod("t", app(rel(2), rel(1)),
							app(rel(3), rel(2))))),
			},
			CtorNArgs: []int{0, 2},
			Recargs:   listRecargs(),
		}},
	})

	env.AddInductive(&term.MutInd{
		Name: knBool, NPars: 0, Finite: true,
		Bodies: []*term.OneInd{{
			Name:      "bool",
			Arity:     sortT(),
			CtorTypes: []term.Term{rel(0), rel(0)},
			CtorNArgs: []int{0, 0},
			Recargs:   boolRecargs(),
		}},
	})

	env.AddInductive(&term.MutInd{
		Name: knEmpty, NPars: 0, Finite: true,
		Bodies: []*term.OneInd{{
			Name:    "False",
			Arity:   sortT(),
			Recargs: emptyRecargs(),
		}},
	})

	env.AddInductive(&term.MutInd{
		Name: knRose, NPars: 1, Finite: true,
		Bodies: []*term.OneInd{{
			Name:  "rtree",
			Arity: prod("A", sortT(), sortT()),
			CtorTypes: []term.Term{
				// rnode : forall A, list (rtree A) -> rtree A
				prod("A", sortT(),
					prod("l", app(indT(listInd), app(rel(1), rel(0))),
						app(rel(2), rel(1)))),
			},
			CtorNArgs: []int{1},
			Recargs:   roseRecargs(),
		}},
	})

	env.AddInductive(&term.MutInd{
		Name: knStream, NPars: 0, Finite: false,
		Bodies: []*term.OneInd{{
			Name:  "stream",
			Arity: sortT(),
			CtorTypes: []term.Term{
				prod("h", indT(natInd), prod("t", rel(1), rel(2))),
			},
			CtorNArgs: []int{2},
			Recargs:   streamRecargs(),
		}},
	})

	// An opaque binary operation on nat.
	env.AddConstant(&term.Constant{
		Name: knPlus,
		Ty:   arrow(natTy(), arrow(natTy(), natTy())),
	})

	// list_map at the rtree-of-nat instantiation, transparent:
	//   fix map (g : rtree nat -> rtree nat) (l : list (rtree nat)) :=
	//     match l with nil => nil | cons h t => cons (g h) (map g t) end
	env.AddConstant(&term.Constant{
		Name: knListMap,
		Ty:   arrow(arrow(roseNatTy(), roseNatTy()), arrow(listRoseTy(), listRoseTy())),
		Body: mapFixTerm(),
	})

	return env
}

// mapFixTerm builds the body of list_map (see newTestEnv).
func mapFixTerm() term.Term {
	g2r := arrow(roseNatTy(), roseNatTy())
	// cons branch context: [t, h, l, g, map].
	consBr := lam("h", roseNatTy(), lam("t", listRoseTy(),
		app(ctor(listInd, 1), roseNatTy(),
			app(rel(3), rel(1)),
			app(rel(4), rel(3), rel(0)))))
	body := lam("g", g2r, lam("l", listRoseTy(), &term.Case{
		Ind:   listInd,
		NPars: 1,
		Rtf:   lam("_", listRoseTy(), listRoseTy()),
		Discr: rel(0),
		Branches: []term.Term{
			app(ctor(listInd, 0), roseNatTy()),
			consBr,
		},
	}))

	return &term.Fix{
		Defs: []term.FixDef{{
			Name:   "map",
			Ty:     prod("g", g2r, arrow(listRoseTy(), listRoseTy())),
			RecArg: 1,
			Body:   body,
		}},
		Index: 0,
	}
}

// lenFix builds
//
//	fix length (l : list nat) := match l with nil => O | cons h t => S (length X) end
//
// with X = t (guarded) or X = l (unguarded).
func lenFix(callOnTail bool) *term.Fix {
	// cons branch context: [t, h, l, length].
	arg := rel(0)
	if !callOnTail {
		arg = rel(2)
	}
	consBr := lam("h", natTy(), lam("t", listNatTy(),
		app(ctor(natInd, 1), app(rel(3), arg))))
	body := lam("l", listNatTy(), &term.Case{
		Ind:      listInd,
		NPars:    1,
		Rtf:      lam("_", listNatTy(), natTy()),
		Discr:    rel(0),
		Branches: []term.Term{ctor(natInd, 0), consBr},
	})

	return &term.Fix{
		Defs: []term.FixDef{{
			Name:   "length",
			Ty:     arrow(listNatTy(), natTy()),
			RecArg: 0,
			Body:   body,
		}},
		Index: 0,
	}
}

// roseMapFix builds
//
//	fix deep (t : rtree nat) := match t with rnode l => rnode (list_map deep l) end
//
// the nested-inductive scenario going through the list_map constant.
func roseMapFix() *term.Fix {
	// rnode branch context: [l, t, deep].
	br := lam("l", listRoseTy(),
		app(ctor(roseInd, 0), natTy(), app(constT(knListMap), rel(2), rel(0))))
	body := lam("t", roseNatTy(), &term.Case{
		Ind:      roseInd,
		NPars:    1,
		Rtf:      lam("_", roseNatTy(), roseNatTy()),
		Discr:    rel(0),
		Branches: []term.Term{br},
	})

	return &term.Fix{
		Defs: []term.FixDef{{
			Name:   "deep",
			Ty:     arrow(roseNatTy(), roseNatTy()),
			RecArg: 0,
			Body:   body,
		}},
		Index: 0,
	}
}

// roseSizeFix builds the nested-fix form
//
//	fix size (t : rtree nat) :=
//	  match t with rnode l =>
//	    S ((fix lsize (ls : list (rtree nat)) :=
//	          match ls with
//	          | nil => O
//	          | cons h tl => plus (size h) (lsize tl)
//	          end) l)
//	  end
func roseSizeFix() *term.Fix {
	// lsize cons branch context: [tl, h, ls, lsize, l, t, size].
	innerCons := lam("h", roseNatTy(), lam("tl", listRoseTy(),
		app(constT(knPlus),
			app(rel(6), rel(1)),
			app(rel(3), rel(0)))))
	innerFix := &term.Fix{
		Defs: []term.FixDef{{
			Name:   "lsize",
			Ty:     arrow(listRoseTy(), natTy()),
			RecArg: 0,
			Body: lam("ls", listRoseTy(), &term.Case{
				Ind:      listInd,
				NPars:    1,
				Rtf:      lam("_", listRoseTy(), natTy()),
				Discr:    rel(0),
				Branches: []term.Term{ctor(natInd, 0), innerCons},
			}),
		}},
		Index: 0,
	}
	// rnode branch context: [l, t, size].
	br := lam("l", listRoseTy(), app(ctor(natInd, 1), app(innerFix, rel(0))))
	body := lam("t", roseNatTy(), &term.Case{
		Ind:      roseInd,
		NPars:    1,
		Rtf:      lam("_", roseNatTy(), natTy()),
		Discr:    rel(0),
		Branches: []term.Term{br},
	})

	return &term.Fix{
		Defs: []term.FixDef{{
			Name:   "size",
			Ty:     arrow(roseNatTy(), natTy()),
			RecArg: 0,
			Body:   body,
		}},
		Index: 0,
	}
}

// ackFix builds Ackermann recursing structurally on its first argument,
//
//	fix ack (m n : nat) {struct m} :=
//	  match m with
//	  | O => S n
//	  | S m' => match n with
//	            | O => ack m' (S O)
//	            | S n' => ack m' (ack X (S n'))
//	            end
//	  end
//
// with X = m' (guarded) or X = m (unguarded: m is only Loose there).
func ackFix(innerOnPred bool) *term.Fix {
	// inner S-branch context: [n', m', n, m, ack].
	inner := rel(3) // m
	if innerOnPred {
		inner = rel(1) // m'
	}
	innerS := lam("n'", natTy(),
		app(rel(4), rel(1),
			app(rel(4), inner, app(ctor(natInd, 1), rel(0)))))
	// outer S-branch context: [m', n, m, ack].
	innerMatch := &term.Case{
		Ind:   natInd,
		NPars: 0,
		Rtf:   lam("_", natTy(), natTy()),
		Discr: rel(1),
		Branches: []term.Term{
			app(rel(3), rel(0), app(ctor(natInd, 1), ctor(natInd, 0))),
			innerS,
		},
	}
	// body context after the two lambdas: [n, m, ack].
	outerMatch := &term.Case{
		Ind:   natInd,
		NPars: 0,
		Rtf:   lam("_", natTy(), natTy()),
		Discr: rel(1),
		Branches: []term.Term{
			app(ctor(natInd, 1), rel(0)),
			lam("m'", natTy(), innerMatch),
		},
	}
	body := lam("m", natTy(), lam("n", natTy(), outerMatch))

	return &term.Fix{
		Defs: []term.FixDef{{
			Name:   "ack",
			Ty:     arrow(natTy(), arrow(natTy(), natTy())),
			RecArg: 0,
			Body:   body,
		}},
		Index: 0,
	}
}

// evenOddFix builds the mutual block
//
//	fix even (n : nat) := match n with O => true  | S m => odd m end
//	with odd (n : nat) := match n with O => false | S m => even m end
func evenOddFix() *term.Fix {
	// In both bodies the branch context is [m, n, odd, even].
	evenBody := lam("n", natTy(), &term.Case{
		Ind:   natInd,
		NPars: 0,
		Rtf:   lam("_", natTy(), indT(boolInd)),
		Discr: rel(0),
		Branches: []term.Term{
			ctor(boolInd, 0),
			lam("m", natTy(), app(rel(2), rel(0))), // odd m
		},
	})
	oddBody := lam("n", natTy(), &term.Case{
		Ind:   natInd,
		NPars: 0,
		Rtf:   lam("_", natTy(), indT(boolInd)),
		Discr: rel(0),
		Branches: []term.Term{
			ctor(boolInd, 1),
			lam("m", natTy(), app(rel(3), rel(0))), // even m
		},
	})

	return &term.Fix{
		Defs: []term.FixDef{
			{Name: "even", Ty: arrow(natTy(), indT(boolInd)), RecArg: 0, Body: evenBody},
			{Name: "odd", Ty: arrow(natTy(), indT(boolInd)), RecArg: 0, Body: oddBody},
		},
		Index: 0,
	}
}

// deadCodeFix recurses on the result of a match with no branches:
//
//	fix f (n : nat) (e : False) {struct n} := f (match e with end) e
func deadCodeFix() *term.Fix {
	emptyMatch := &term.Case{
		Ind:   emptyInd,
		NPars: 0,
		Rtf:   lam("_", indT(emptyInd), natTy()),
		Discr: rel(0),
	}
	// body context after the two lambdas: [e, n, f].
	body := lam("n", natTy(), lam("e", indT(emptyInd),
		app(rel(2), emptyMatch, rel(0))))

	return &term.Fix{
		Defs: []term.FixDef{{
			Name:   "f",
			Ty:     arrow(natTy(), arrow(indT(emptyInd), natTy())),
			RecArg: 0,
			Body:   body,
		}},
		Index: 0,
	}
}

// coFix recurses on a coinductive stream (always rejected).
func coFix() *term.Fix {
	body := lam("s", indT(streamInd), ctor(natInd, 0))

	return &term.Fix{
		Defs: []term.FixDef{{
			Name:   "f",
			Ty:     arrow(indT(streamInd), natTy()),
			RecArg: 0,
			Body:   body,
		}},
		Index: 0,
	}
}

// bareSelfFix returns the fixpoint without applying it:
//
//	fix f (l : list nat) := f
func bareSelfFix() *term.Fix {
	body := lam("l", listNatTy(), rel(1))

	return &term.Fix{
		Defs: []term.FixDef{{
			Name:   "f",
			Ty:     arrow(listNatTy(), listNatTy()),
			RecArg: 0,
			Body:   body,
		}},
		Index: 0,
	}
}
