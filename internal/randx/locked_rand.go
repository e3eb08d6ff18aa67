package randx

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the slice of math/rand/v2 the simulations draw from.
type Source interface {
	IntN(n int) int
	Float64() float64
	Int64N(n int64) int64
}

// LockedRand wraps a math/rand/v2.Rand so it can be shared between
// goroutines.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func New(r *rand.Rand) *LockedRand {
	if r == nil {
		r = rand.New(rand.NewPCG(0, 0))
	}
	return &LockedRand{r: r}
}

// NewSeeded returns a reproducible source; seed 0 seeds from the clock.
func NewSeeded(seed uint64) *LockedRand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *LockedRand) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int64N(n)
}

var _ Source = (*LockedRand)(nil)
