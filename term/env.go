// Package term: the global environment — mutual inductive blocks and
// constants, addressed by kernel name.
package term

import "fmt"

// OneInd is one body of a mutual inductive block.
type OneInd struct {
	// Name of the body (diagnostics only).
	Name string

	// Arity is the body's type: products over the block parameters and the
	// body's indices, ending in a sort.
	Arity Term

	// CtorTypes holds the full constructor types: products over the block
	// parameters, then the constructor arguments, concluding in the
	// inductive applied to parameters and indices. Sibling bodies occur as
	// free de Bruijn variables outside the products: at depth d inside the
	// type, Rel (d + ntypes - 1 - j) refers to body j.
	CtorTypes []Term

	// CtorNArgs[k] is the number of non-parameter arguments of the k-th
	// constructor.
	CtorNArgs []int

	// Recargs is the recursive-argument tree of this body as produced by
	// the positivity checker.
	Recargs *WfPaths
}

// MutInd is a mutual inductive block.
type MutInd struct {
	Name   KerName
	NPars  int
	Finite bool // true for inductive, false for coinductive
	Bodies []*OneInd
}

// NTypes returns the number of bodies in the block.
func (m *MutInd) NTypes() int { return len(m.Bodies) }

// Constant is a global definition. A nil Body denotes an axiom (or an
// opaque constant, which this checker treats the same way).
type Constant struct {
	Name KerName
	Ty   Term
	Body Term
}

// Env is the global environment. It is immutable during a check; the
// checker is a pure function of (Env, Ctx, Fix).
type Env struct {
	inductives map[KerName]*MutInd
	constants  map[KerName]*Constant
}

// NewEnv returns an empty global environment.
func NewEnv() *Env {
	return &Env{
		inductives: make(map[KerName]*MutInd),
		constants:  make(map[KerName]*Constant),
	}
}

// AddInductive registers a mutual inductive block under its kernel name.
func (e *Env) AddInductive(m *MutInd) { e.inductives[m.Name] = m }

// AddConstant registers a constant under its kernel name.
func (e *Env) AddConstant(c *Constant) { e.constants[c.Name] = c }

// LookupInductive resolves a mutual inductive block by kernel name.
func (e *Env) LookupInductive(kn KerName) (*MutInd, error) {
	m, ok := e.inductives[kn]
	if !ok {
		return nil, fmt.Errorf("LookupInductive(%s): %w", kn, ErrNotFound)
	}

	return m, nil
}

// LookupConstant resolves a constant by kernel name.
func (e *Env) LookupConstant(kn KerName) (*Constant, error) {
	c, ok := e.constants[kn]
	if !ok {
		return nil, fmt.Errorf("LookupConstant(%s): %w", kn, ErrNotFound)
	}

	return c, nil
}

// LookupInd resolves one body of a mutual block from an Ind reference.
func (e *Env) LookupInd(ind Ind) (*MutInd, *OneInd, error) {
	m, err := e.LookupInductive(ind.Name)
	if err != nil {
		return nil, nil, err
	}
	if ind.Index < 0 || ind.Index >= len(m.Bodies) {
		return nil, nil, fmt.Errorf("LookupInd(%s,%d): body index out of range: %w",
			ind.Name, ind.Index, ErrNotFound)
	}

	return m, m.Bodies[ind.Index], nil
}
