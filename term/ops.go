// Package term: de Bruijn operations — lifting, parallel substitution,
// application (de)composition and occurrence tests.
package term

// mapRels rebuilds t, replacing every bound-variable leaf Rel i found
// under d extra binders by f(d, i). All other structure is preserved.
func mapRels(d int, t Term, f func(depth, index int) Term) Term {
	switch v := t.(type) {
	case *Rel:
		return f(d, v.Index)
	case *Cast:
		return &Cast{Body: mapRels(d, v.Body, f), Ty: mapRels(d, v.Ty, f)}
	case *Prod:
		return &Prod{Name: v.Name, Ty: mapRels(d, v.Ty, f), Body: mapRels(d+1, v.Body, f)}
	case *Lambda:
		return &Lambda{Name: v.Name, Ty: mapRels(d, v.Ty, f), Body: mapRels(d+1, v.Body, f)}
	case *LetIn:
		return &LetIn{
			Name: v.Name,
			Val:  mapRels(d, v.Val, f),
			Ty:   mapRels(d, v.Ty, f),
			Body: mapRels(d+1, v.Body, f),
		}
	case *App:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = mapRels(d, a, f)
		}

		return MkApp(mapRels(d, v.Head, f), args)
	case *Case:
		brs := make([]Term, len(v.Branches))
		for i, b := range v.Branches {
			brs[i] = mapRels(d, b, f)
		}

		return &Case{
			Ind:      v.Ind,
			NPars:    v.NPars,
			Rtf:      mapRels(d, v.Rtf, f),
			Discr:    mapRels(d, v.Discr, f),
			Branches: brs,
		}
	case *Fix:
		n := len(v.Defs)
		defs := make([]FixDef, n)
		for i, fd := range v.Defs {
			defs[i] = FixDef{
				Name:   fd.Name,
				Ty:     mapRels(d, fd.Ty, f),
				RecArg: fd.RecArg,
				Body:   mapRels(d+n, fd.Body, f),
			}
		}

		return &Fix{Defs: defs, Index: v.Index}
	case *CoFix:
		n := len(v.Defs)
		defs := make([]CoFixDef, n)
		for i, cd := range v.Defs {
			defs[i] = CoFixDef{
				Name: cd.Name,
				Ty:   mapRels(d, cd.Ty, f),
				Body: mapRels(d+n, cd.Body, f),
			}
		}

		return &CoFix{Defs: defs, Index: v.Index}
	case *Proj:
		return &Proj{Ind: v.Ind, NPars: v.NPars, Arg: v.Arg, Val: mapRels(d, v.Val, f)}
	default:
		// Var, Sort, Const, IndT, Construct, Evar: no bound variables.
		return t
	}
}

// Lift shifts all free de Bruijn indices of t by n.
func Lift(n int, t Term) Term {
	if n == 0 {
		return t
	}

	return LiftFrom(0, n, t)
}

// LiftFrom shifts by n every de Bruijn index that is >= k (i.e. free
// relative to the k innermost binders).
func LiftFrom(k, n int, t Term) Term {
	if n == 0 {
		return t
	}

	return mapRels(0, t, func(d, i int) Term {
		if i < d+k {
			return &Rel{Index: i}
		}

		return &Rel{Index: i + n}
	})
}

// Subst performs parallel substitution: Rel 0 becomes args[0], Rel 1
// becomes args[1], ..., and indices past the substituted range are
// shifted down by len(args). Substituted terms are lifted across the
// binders they move under.
func Subst(args []Term, t Term) Term {
	if len(args) == 0 {
		return t
	}

	return mapRels(0, t, func(d, i int) Term {
		if i < d {
			return &Rel{Index: i}
		}
		j := i - d
		if j < len(args) {
			return Lift(d, args[j])
		}

		return &Rel{Index: i - len(args)}
	})
}

// Subst1 substitutes a for Rel 0 in t (ordinary beta contraction).
func Subst1(a Term, t Term) Term { return Subst([]Term{a}, t) }

// MkApp applies head to args, flattening nested applications so the App
// invariant (head not an App, args non-empty) holds.
func MkApp(head Term, args []Term) Term {
	if len(args) == 0 {
		return head
	}
	if app, ok := head.(*App); ok {
		all := make([]Term, 0, len(app.Args)+len(args))
		all = append(all, app.Args...)
		all = append(all, args...)

		return &App{Head: app.Head, Args: all}
	}

	return &App{Head: head, Args: args}
}

// DecomposeApp splits t into its head and spine. For a non-application
// the spine is nil.
func DecomposeApp(t Term) (Term, []Term) {
	if app, ok := t.(*App); ok {
		return app.Head, app.Args
	}

	return t, nil
}

// NoOccurBetween reports whether none of the de Bruijn indices in
// [lo, lo+n) occurs free in t. This is the checker's fast path: a term
// in which no fixpoint name of the current block occurs is guarded.
func NoOccurBetween(lo, n int, t Term) bool {
	if n <= 0 {
		return true
	}
	found := false
	var walk func(d int, t Term)
	walk = func(d int, t Term) {
		if found {
			return
		}
		switch v := t.(type) {
		case *Rel:
			if v.Index >= lo+d && v.Index < lo+n+d {
				found = true
			}
		case *Cast:
			walk(d, v.Body)
			walk(d, v.Ty)
		case *Prod:
			walk(d, v.Ty)
			walk(d+1, v.Body)
		case *Lambda:
			walk(d, v.Ty)
			walk(d+1, v.Body)
		case *LetIn:
			walk(d, v.Val)
			walk(d, v.Ty)
			walk(d+1, v.Body)
		case *App:
			walk(d, v.Head)
			for _, a := range v.Args {
				walk(d, a)
			}
		case *Case:
			walk(d, v.Rtf)
			walk(d, v.Discr)
			for _, b := range v.Branches {
				walk(d, b)
			}
		case *Fix:
			for _, fd := range v.Defs {
				walk(d, fd.Ty)
			}
			for _, fd := range v.Defs {
				walk(d+len(v.Defs), fd.Body)
			}
		case *CoFix:
			for _, cd := range v.Defs {
				walk(d, cd.Ty)
			}
			for _, cd := range v.Defs {
				walk(d+len(v.Defs), cd.Body)
			}
		case *Proj:
			walk(d, v.Val)
		}
	}
	walk(0, t)

	return !found
}
