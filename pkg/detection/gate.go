package detection

import (
	"sync"
	"sync/atomic"

	"github.com/menta2k/focuscrop/pkg/types"
)

// result is what the winning path of a run hands to Resolve
type result struct {
	region types.SalientRegion
	state  State
	final  *Attempt
	spread bool
	err    error
}

// gate delivers exactly one result per run. Detector replies, step
// timeouts, the global timer and caller cancellation all race on fire;
// only the first caller's result is delivered.
type gate struct {
	fired atomic.Bool
	done  chan result
}

func newGate() *gate {
	return &gate{done: make(chan result, 1)}
}

// fire reports whether r won the race
func (g *gate) fire(r result) bool {
	if !g.fired.CompareAndSwap(false, true) {
		return false
	}
	g.done <- r
	return true
}

// recorder collects attempts until the run resolves. Attempts added after
// seal are dropped.
type recorder struct {
	mu       sync.Mutex
	sealed   bool
	attempts []Attempt
}

func (r *recorder) add(a Attempt) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return false
	}
	r.attempts = append(r.attempts, a)
	return true
}

func (r *recorder) seal() []Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
	out := make([]Attempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}
