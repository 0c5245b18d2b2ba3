package sim

import (
	"fmt"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

const (
	// EnergyWindow is the fixed number of samples held by the energy graph.
	EnergyWindow = 24
	// LedgerLimit bounds the ledger to the most recent entries.
	LedgerLimit = 5

	energyBase   = 350.0
	energySpread = 100.0
)

// Operations are the synthetic ledger operation tags.
var Operations = []string{"Temperature Update", "Position Change", "Maintenance Check"}

// DefaultCatalog returns the three ladles shown on the plant map.
func DefaultCatalog() []domain.LadleIdentity {
	return []domain.LadleIdentity{
		{
			ID:       "SL-124",
			Position: domain.Position{X: 25, Y: 30},
			Status:   domain.StatusCharging,
			Route:    []domain.Position{{X: 25, Y: 30}, {X: 40, Y: 40}, {X: 75, Y: 40}, {X: 75, Y: 30}},
		},
		{
			ID:       "SP-124",
			Position: domain.Position{X: 75, Y: 60},
			Status:   domain.StatusPouring,
			Route:    []domain.Position{{X: 75, Y: 60}, {X: 40, Y: 70}, {X: 25, Y: 60}},
		},
		{
			ID:       "SLBC-1",
			Position: domain.Position{X: 40, Y: 80},
			Status:   domain.StatusTransport,
			Route:    []domain.Position{{X: 40, Y: 80}, {X: 60, Y: 70}, {X: 75, Y: 80}},
		},
	}
}

// SeedEnergy builds the initial window labelled "0:00" through "23:00".
func SeedEnergy(rng ports.Random) []domain.EnergySample {
	out := make([]domain.EnergySample, EnergyWindow)
	for i := range out {
		out[i] = domain.EnergySample{
			Time:  fmt.Sprintf("%d:00", i),
			Value: drawEnergy(rng),
		}
	}
	return out
}

// SeedLedger returns the two entries the dashboard starts with, newest first.
func SeedLedger() []domain.LedgerEntry {
	return []domain.LedgerEntry{
		{
			ID:        "2",
			Timestamp: "2025-03-15 14:30:22",
			LadleID:   "SL-124",
			Operation: "Temperature Update",
			Hash:      "0x7f2c8d3e...",
			Message:   "Temperature recorded: 1450°C at SLBC-1",
		},
		{
			ID:        "1",
			Timestamp: "2025-03-15 14:29:15",
			LadleID:   "SP-124",
			Operation: "Position Change",
			Hash:      "0x3a9b1c7d...",
			Message:   "Moved from SLBC-4 to Pouring Station",
		},
	}
}

func drawEnergy(rng ports.Random) float64 {
	return energyBase + rng.Float64()*energySpread
}

// hashToken renders an opaque display token such as "0x1a2b3c4d...".
func hashToken(rng ports.Random) string {
	return fmt.Sprintf("0x%08x...", uint32(rng.Float64()*(1<<32)))
}
