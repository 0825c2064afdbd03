// Package guard: uniform-parameter analysis of mutual inductive blocks.
package guard

import "github.com/katalvlaran/fixguard/term"

// NumUniformParams computes how many leading parameters of a mutual
// inductive block are uniform: for every constructor, the conclusion
// `I a1 .. ak` is inspected and the prefix of arguments that are plain
// de Bruijn references into the parameter slots is counted; the block's
// answer is the minimum over all constructors of all bodies, capped at
// the parameter count. Any parameter after the first non-uniform one is
// treated as non-uniform.
func NumUniformParams(m *term.MutInd) int {
	min := m.NPars
	for _, body := range m.Bodies {
		for _, ct := range body.CtorTypes {
			if u := uniformPrefix(m.NPars, ct); u < min {
				min = u
			}
		}
	}
	if min < 0 {
		min = 0
	}

	return min
}

// uniformPrefix walks one constructor type to its conclusion and counts
// the leading conclusion arguments that refer back into the parameter
// binders. With n binders above the conclusion and p parameters, the
// parameter slots are the de Bruijn indices [n-p, n-1].
func uniformPrefix(npars int, ctorTy term.Term) int {
	n := 0
	cur := ctorTy
walk:
	for {
		switch v := cur.(type) {
		case *term.Prod:
			n++
			cur = v.Body
		case *term.LetIn:
			n++
			cur = v.Body
		default:
			break walk
		}
	}
	_, args := term.DecomposeApp(cur)
	count := 0
	for _, a := range args {
		r, ok := a.(*term.Rel)
		if !ok || r.Index < n-npars || r.Index >= n {
			break
		}
		count++
	}
	if count > npars {
		count = npars
	}

	return count
}
