// Package stacking decides paint order for the board so the raised cell
// draws above its siblings while everything else keeps generation order.
//
// Two strategies are provided. Sorted derives the order from the raised index
// on every call. Layer keeps a retained order and moves a single cell to the
// front, reinserting it by index when it drops. Both produce the same order
// for the same raised index.
package stacking

// None means no cell is raised.
const None = -1

// PaintOrder returns 0..n-1 with raised moved to the end. Out-of-range raised
// values leave the natural order.
func PaintOrder(n, raised int) []int {
	if n < 0 {
		n = 0
	}
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != raised {
			out = append(out, i)
		}
	}
	if raised >= 0 && raised < n {
		out = append(out, raised)
	}
	return out
}

// Strategy receives raised-index changes and reports the resulting paint order.
type Strategy interface {
	SetRaised(index int)
	Order() []int
}

// Sorted recomputes the order from the raised index each time.
type Sorted struct {
	n      int
	raised int
}

// NewSorted returns a Sorted strategy for n cells.
func NewSorted(n int) *Sorted {
	return &Sorted{n: n, raised: None}
}

func (s *Sorted) SetRaised(index int) {
	if index < 0 || index >= s.n {
		index = None
	}
	s.raised = index
}

func (s *Sorted) Order() []int { return PaintOrder(s.n, s.raised) }

// Raised returns the current raised index or None.
func (s *Sorted) Raised() int { return s.raised }

// Layer retains a paint order and moves one cell at a time to the front.
type Layer struct {
	order  []int
	raised int
}

// NewLayer returns a Layer in natural order.
func NewLayer(n int) *Layer {
	return &Layer{order: PaintOrder(n, None), raised: None}
}

// Raise moves index to the top. A previously raised cell is restored first.
func (l *Layer) Raise(index int) {
	if index < 0 || index >= len(l.order) {
		return
	}
	if l.raised == index {
		return
	}
	l.Lower()
	pos := l.find(index)
	copy(l.order[pos:], l.order[pos+1:])
	l.order[len(l.order)-1] = index
	l.raised = index
}

// Lower restores the raised cell, if any, to just before the first sibling
// with a greater index.
func (l *Layer) Lower() {
	if l.raised == None {
		return
	}
	idx := l.raised
	l.raised = None

	pos := l.find(idx)
	rest := append(l.order[:pos:pos], l.order[pos+1:]...)
	at := len(rest)
	for k, v := range rest {
		if v > idx {
			at = k
			break
		}
	}
	rest = append(rest, 0)
	copy(rest[at+1:], rest[at:])
	rest[at] = idx
	l.order = rest
}

// SetRaised raises index, or lowers the raised cell when index is None or out
// of range, matching Sorted.
func (l *Layer) SetRaised(index int) {
	if index < 0 || index >= len(l.order) {
		l.Lower()
		return
	}
	l.Raise(index)
}

// Order returns a copy of the current paint order.
func (l *Layer) Order() []int {
	return append([]int(nil), l.order...)
}

// Raised returns the current raised index or None.
func (l *Layer) Raised() int { return l.raised }

func (l *Layer) find(index int) int {
	for k, v := range l.order {
		if v == index {
			return k
		}
	}
	return -1
}
