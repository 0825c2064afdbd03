// Package reduce is the weak-head reduction facade of the guardedness
// checker. It wraps a single fuelled head-reduction machine behind the
// reduction strengths the checker needs:
//
//   - WhdAll          — full weak-head: β ι ζ δ, fixpoint and match
//     contraction included;
//   - WhdBetaIotaZeta — everything except δ (constants stay folded);
//   - WhdAllNoLet     — full weak-head with let-bindings preserved;
//   - DecomposeProdAssum / DecomposeLamAssum — binder decomposition under
//     the "try harder" discipline: reduce without ζ first, and only when
//     the head is not a binder fall back to full reduction and reiterate.
//
// Every entry point takes a *Fuel; when the fuel runs out the reduction
// aborts with ErrTimeout. A nil Fuel never runs out.
//
// The machine is deliberately simple: a head plus a pending-argument
// spine, no sharing, no machine closures. The checker only ever reduces
// small prefixes of terms, and determinism matters more than speed here.
package reduce
