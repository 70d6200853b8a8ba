package quiz

// Progress is the shared question counter. It always indexes a valid
// question and wraps to zero after the last one.
type Progress struct {
	current int
	total   int
}

// NewProgress returns a counter over total questions, starting at zero.
func NewProgress(total int) *Progress {
	if total < 1 {
		total = 1
	}
	return &Progress{total: total}
}

func (p *Progress) Current() int { return p.current }

func (p *Progress) Total() int { return p.total }

// IsLast reports whether the counter is on the final question.
func (p *Progress) IsLast() bool { return p.current >= p.total-1 }

// Advance moves to the next question and reports whether it wrapped to zero.
func (p *Progress) Advance() bool {
	if p.IsLast() {
		p.current = 0
		return true
	}
	p.current++
	return false
}

func (p *Progress) Reset() { p.current = 0 }
