package accum

import "github.com/katalvlaran/modprop/matrix"

// entry is a single tracked Jacobian with its remaining descent budget.
type entry struct {
	mat   matrix.Matrix
	depth int
}

// Truncated accumulates a list of (Jacobian, remaining-depth) pairs. Each
// call to TickDescent ages every entry by one level; entries whose depth
// reaches zero are dropped. This bounds backpropagation-through-time to a
// fixed maximum number of chained modules, trading exactness for a memory
// and compute ceiling on very long chains.
type Truncated struct {
	entries []entry
}

var _ Accumulator = (*Truncated)(nil)

// NewTruncated starts a Truncated accumulator with one entry: m, expiring
// after depth further descents. depth must be positive.
func NewTruncated(m matrix.Matrix, depth int) (*Truncated, error) {
	if depth <= 0 {
		return nil, ErrUnderspecifiedInit
	}
	if m == nil {
		return &Truncated{}, nil
	}
	return &Truncated{entries: []entry{{mat: m, depth: depth}}}, nil
}

// Clone returns a deep copy of t.
func (t *Truncated) Clone() Accumulator {
	out := &Truncated{entries: make([]entry, len(t.entries))}
	for i, e := range t.entries {
		out.entries[i] = entry{mat: e.mat.Clone(), depth: e.depth}
	}
	return out
}

// TickDescent ages every entry by one level and drops expired ones.
func (t *Truncated) TickDescent() {
	if len(t.entries) == 0 {
		return
	}
	kept := t.entries[:0]
	for _, e := range t.entries {
		e.depth--
		if e.depth > 0 {
			kept = append(kept, e)
		}
	}
	t.entries = kept
}

// Add concatenates the entry lists of t and other, which must also be
// *Truncated.
func (t *Truncated) Add(other Accumulator) (Accumulator, error) {
	o, ok := other.(*Truncated)
	if !ok {
		return nil, ErrTypeMismatch
	}
	merged := make([]entry, 0, len(t.entries)+len(o.entries))
	merged = append(merged, t.entries...)
	merged = append(merged, o.entries...)
	return &Truncated{entries: merged}, nil
}

// MulRight right-multiplies every tracked entry by a, preserving each
// entry's remaining depth.
func (t *Truncated) MulRight(a matrix.Matrix) (Accumulator, error) {
	out := &Truncated{entries: make([]entry, 0, len(t.entries))}
	for _, e := range t.entries {
		prod, err := matrix.Mul(e.mat, a)
		if err != nil {
			return nil, matrixWrap(err)
		}
		out.entries = append(out.entries, entry{mat: prod, depth: e.depth})
	}
	return out, nil
}

// MulLeft left-multiplies every tracked entry by a, preserving each
// entry's remaining depth.
func (t *Truncated) MulLeft(a matrix.Matrix) (Accumulator, error) {
	out := &Truncated{entries: make([]entry, 0, len(t.entries))}
	for _, e := range t.entries {
		prod, err := matrix.Mul(a, e.mat)
		if err != nil {
			return nil, matrixWrap(err)
		}
		out.entries = append(out.entries, entry{mat: prod, depth: e.depth})
	}
	return out, nil
}

// Retrieve sums every tracked entry into a single Jacobian, returning
// ok=false if no entries remain.
func (t *Truncated) Retrieve() (matrix.Matrix, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	sum := t.entries[0].mat
	for _, e := range t.entries[1:] {
		s, err := matrix.Add(sum, e.mat)
		if err != nil {
			// Entries are only ever produced by MulRight/MulLeft/Add over
			// matrices sharing their origin shape; a mismatch here means
			// the caller mixed incompatible Jacobians into one port.
			return nil, false
		}
		sum = s
	}
	return sum, true
}

// IsEmpty reports whether t has no tracked entries.
func (t *Truncated) IsEmpty() bool {
	return len(t.entries) == 0
}
