// Package psdparam builds a constant-PSD covariance parameterization from
// a flat, unconstrained parameter vector. It composes modules.Exponential
// (forcing the Cholesky diagonal positive) with modules.CholeskyReshape
// (assembling the full lower-triangular factor and its product), so a
// gradient-ascent optimizer can adjust the raw parameters without ever
// needing to project back onto the positive-semidefinite cone.
package psdparam
