package clock

import (
	"time"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

// System reads the wall clock in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

var _ ports.Clock = System{}
