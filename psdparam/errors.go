package psdparam

import "errors"

// ErrThetaDimensionMismatch is returned when a parameter vector handed to
// SetTheta does not match the N + N(N-1)/2 length a Source of size N
// expects.
var ErrThetaDimensionMismatch = errors.New("psdparam: theta dimension mismatch")
