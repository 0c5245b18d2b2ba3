package random

import (
	"math/rand/v2"
	"time"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

// Source wraps a PCG generator. It is not safe for concurrent use; the
// simulator only draws while holding its write lock.
type Source struct {
	r *rand.Rand
}

// New returns a source seeded from the wall clock.
func New() *Source {
	return NewSeeded(uint64(time.Now().UnixNano()))
}

// NewSeeded returns a deterministic source.
func NewSeeded(seed uint64) *Source {
	return &Source{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Source) Float64() float64 { return s.r.Float64() }

func (s *Source) IntN(n int) int { return s.r.IntN(n) }

var _ ports.Random = (*Source)(nil)
