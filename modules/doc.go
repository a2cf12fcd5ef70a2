// Package modules provides the standard library of dataflow modules built
// on package engine: constants and sinks, elementwise and matrix
// arithmetic, reshape operators that pack/unpack vectors into structured
// matrices, reduction modules, a Gaussian log-likelihood cost, and the two
// Kalman filter recursion steps (predict and update). Every module's
// Foreprop computes a value and its Backprop computes the exact local
// Jacobian needed to chain a reverse-mode gradient through it.
package modules
