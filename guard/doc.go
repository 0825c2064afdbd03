// Package guard decides guardedness of (mutually recursive) fixpoint
// definitions: every recursive call must be made on a structurally
// smaller argument than the designated decreasing argument of the
// enclosing fixpoint.
//
// Key features:
//   - CheckFix(env, ctx, fix, opts...): verify a whole mutual block
//   - Subterm inference: propagates strict/loose subterm information
//     through beta, pattern matching, projections and nested fixpoints
//   - Recursive-argument trees: nested inductives (a container of the
//     type being defined) are handled by instantiating the container's
//     tree so matching on inner values yields correct subterm info
//   - Reduction fallbacks: when a direct check fails, matches, fixpoints
//     and constants are weak-head reduced and the check restarted
//
// Options:
//
//   - WithStepBudget(n)  caps the number of checker steps (the walker and
//     the inference re-enter each other after reduction, so termination
//     is enforced by budget, not by structural recursion).
//   - WithFuel(n)        caps weak-head reduction steps.
//   - WithTrace(fn)      streams human-readable diagnostics.
//
// Errors (matched with errors.Is):
//
//   - ErrGuard       — the user-facing verdict: a recursive call is not
//     provably on a smaller argument.
//   - ErrTimeout     — step budget or reduction fuel exhausted.
//   - ErrProgramming — internal invariant violated; never recoverable.
//   - ErrEnv, ErrIndex — lookup failures.
//   - ErrOther       — ill-shaped input terms.
//
// The checker is a pure function of its inputs: no shared state, no I/O,
// deterministic for a fixed environment.
package guard
