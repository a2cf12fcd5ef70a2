// Package matrix provides the dense real-valued matrix primitives used by
// the rest of modprop: multiply, transpose, Kronecker product, Cholesky
// factorization and solves, log-determinant, diagonal construction, and
// flatten/unflatten under column-major vectorization.
//
// Column-major flattening is a load-bearing convention here: every
// Kronecker-based Jacobian built on top of this package (engine, modules)
// assumes vec(A) stacks columns of A top-to-bottom. Switching convention
// anywhere silently inverts the correctness of half the autodiff rules.
package matrix
