package hud

import (
	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/sim"
)

// TickRecord describes what one simulator tick changed.
type TickRecord = domain.TickRecord

type (
	EnergySample  = domain.EnergySample
	LedgerEntry   = domain.LedgerEntry
	LadleIdentity = domain.LadleIdentity
	Position      = domain.Position
	LadleStatus   = domain.LadleStatus
)

// Snapshot is a read-only copy of the simulator state.
type Snapshot = sim.Snapshot

// Simulator owns the energy window, ledger and selection.
type Simulator = sim.Simulator

// Sink consumes batches of tick records, e.g. a database or message bus.
type Sink = ports.Sink

// RecordQueue buffers tick records between the simulator and the sink.
type RecordQueue = ports.RecordQueue

// Journal is the append-only on-disk record of exported ticks.
type Journal = ports.Journal

// Observability receives logs and metrics from every stage.
type Observability = ports.Observability

// Field is a structured log field.
type Field = ports.Field

// Random and Clock are the simulator's injectable sources.
type (
	Random = ports.Random
	Clock  = ports.Clock
)
