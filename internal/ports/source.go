package ports

import "time"

// Random is the only source of randomness the simulator uses.
type Random interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). n must be > 0.
	IntN(n int) int
}

type Clock interface {
	Now() time.Time
}
