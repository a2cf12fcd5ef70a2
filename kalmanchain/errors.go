package kalmanchain

import "errors"

// ErrParamDimensionMismatch is returned by SetTheta when the supplied
// vector's length doesn't equal the chain's current Q-param count plus
// its R-param count.
var ErrParamDimensionMismatch = errors.New("kalmanchain: parameter dimension mismatch")
