package accum

import "fmt"

// matrixWrap tags an underlying matrix-package error as a shape mismatch in
// the accum domain, preserving errors.Is compatibility via %w.
func matrixWrap(err error) error {
	return fmt.Errorf("%w: %v", ErrShapeMismatch, err)
}
