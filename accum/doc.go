// Package accum implements the two Jacobian-accumulation strategies used by
// the reverse-mode engine: Unbounded, which keeps a single running Jacobian
// forever, and Truncated, which keeps a list of (Jacobian, remaining-depth)
// pairs and drops entries once their depth budget is exhausted — a
// truncated backpropagation-through-time strategy for long chains where an
// exact unbounded gradient is either unneeded or too expensive to carry.
package accum
