// Package preload tracks asset readiness. The gate counts each unique URL
// once, whether it loaded or failed; failures are counted, never fatal.
package preload

import "sync"

// State is the gate's counters.
type State struct {
	Total  int `json:"total"`
	Loaded int `json:"loaded"`
	Errors int `json:"errors"`
}

// Gate is safe for concurrent use.
type Gate struct {
	mu      sync.Mutex
	tracked map[string]struct{}
	done    map[string]struct{}
	state   State
}

// NewGate returns a gate tracking urls.
func NewGate(urls []string) *Gate {
	g := &Gate{}
	g.Track(urls)
	return g
}

// Track replaces the tracked set with the unique non-empty urls and clears
// progress.
func (g *Gate) Track(urls []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tracked = make(map[string]struct{}, len(urls))
	g.done = make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if u != "" {
			g.tracked[u] = struct{}{}
		}
	}
	g.state = State{Total: len(g.tracked)}
}

// URLs returns the tracked set in no particular order.
func (g *Gate) URLs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.tracked))
	for u := range g.tracked {
		out = append(out, u)
	}
	return out
}

// MarkDone records url as finished. Repeats and untracked urls are ignored.
// It reports whether the call changed the state.
func (g *Gate) MarkDone(url string, ok bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, tracked := g.tracked[url]; !tracked {
		return false
	}
	if _, seen := g.done[url]; seen {
		return false
	}
	g.done[url] = struct{}{}
	if g.state.Loaded < g.state.Total {
		g.state.Loaded++
	}
	if !ok {
		g.state.Errors++
	}
	return true
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Ready reports whether every tracked url finished. An empty gate is ready.
func (g *Gate) Ready() bool {
	s := g.State()
	return s.Total == 0 || s.Loaded >= s.Total
}

// Progress returns loaded/total, or 1 for an empty gate.
func (g *Gate) Progress() float64 {
	s := g.State()
	if s.Total == 0 {
		return 1
	}
	return float64(s.Loaded) / float64(s.Total)
}
