package sim

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/clock"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/random"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

// Snapshot is a read-only copy of the simulator state at one tick.
type Snapshot struct {
	Tick            uint64                `json:"tick"`
	EnergySamples   []domain.EnergySample `json:"energySamples"`
	LedgerEntries   []domain.LedgerEntry  `json:"ledgerEntries"`
	SelectedLadleID *string               `json:"selectedLadleId"`
}

// state is never modified after it is published.
type state struct {
	tick     uint64
	energy   []domain.EnergySample
	ledger   []domain.LedgerEntry
	selected *string
	lastID   uint64
}

// Simulator owns the energy window, the ledger and the selected ladle.
// Writers serialize on mu; readers load the published state without locking.
type Simulator struct {
	catalog []domain.LadleIdentity
	rng     ports.Random
	clock   ports.Clock

	mu    sync.Mutex
	state atomic.Pointer[state]
}

type Option func(*options)

type options struct {
	rng    ports.Random
	clock  ports.Clock
	energy []domain.EnergySample
	ledger []domain.LedgerEntry
}

func WithRandom(r ports.Random) Option {
	return func(o *options) { o.rng = r }
}

func WithClock(c ports.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithEnergy replaces the seeded energy window. It must hold EnergyWindow samples.
func WithEnergy(samples []domain.EnergySample) Option {
	return func(o *options) { o.energy = samples }
}

// WithLedger replaces the seed ledger. Entries are newest first.
func WithLedger(entries []domain.LedgerEntry) Option {
	return func(o *options) { o.ledger = entries }
}

// New builds a simulator over catalog. An empty catalog or a malformed
// energy window is a programming error and panics.
func New(catalog []domain.LadleIdentity, opts ...Option) *Simulator {
	if len(catalog) == 0 {
		panic("sim: ladle catalog must not be empty")
	}

	o := options{ledger: SeedLedger()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.rng == nil {
		o.rng = random.New()
	}
	if o.clock == nil {
		o.clock = clock.System{}
	}
	if o.energy == nil {
		o.energy = SeedEnergy(o.rng)
	}
	if len(o.energy) != EnergyWindow {
		panic(fmt.Sprintf("sim: energy window must hold %d samples, got %d", EnergyWindow, len(o.energy)))
	}

	ledger := o.ledger
	if len(ledger) > LedgerLimit {
		ledger = ledger[:LedgerLimit]
	}

	s := &Simulator{
		catalog: cloneCatalog(catalog),
		rng:     o.rng,
		clock:   o.clock,
	}
	s.state.Store(&state{
		energy: append([]domain.EnergySample(nil), o.energy...),
		ledger: append([]domain.LedgerEntry(nil), ledger...),
		lastID: highestID(ledger),
	})
	return s
}

// Tick advances the energy window and prepends one ledger entry. The new
// state is fully built before it is published, so readers never see half
// of a tick.
func (s *Simulator) Tick() domain.TickRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()

	// The new sample reuses the previous newest label; the graph never
	// advances its clock.
	energy := make([]domain.EnergySample, EnergyWindow)
	copy(energy, cur.energy[1:])
	sample := domain.EnergySample{
		Time:  cur.energy[len(cur.energy)-1].Time,
		Value: drawEnergy(s.rng),
	}
	energy[EnergyWindow-1] = sample

	op := Operations[s.rng.IntN(len(Operations))]
	ladle := s.catalog[s.rng.IntN(len(s.catalog))]
	now := s.clock.Now().UTC()

	id := uint64(now.UnixMilli())
	if id <= cur.lastID {
		id = cur.lastID + 1
	}

	entry := domain.LedgerEntry{
		ID:        strconv.FormatUint(id, 10),
		Timestamp: now.Format(domain.LedgerTimeLayout),
		LadleID:   ladle.ID,
		Operation: op,
		Hash:      hashToken(s.rng),
		Message:   fmt.Sprintf("%s completed for %s", op, ladle.ID),
	}

	keep := min(len(cur.ledger), LedgerLimit-1)
	ledger := make([]domain.LedgerEntry, 0, keep+1)
	ledger = append(ledger, entry)
	ledger = append(ledger, cur.ledger[:keep]...)

	next := &state{
		tick:     cur.tick + 1,
		energy:   energy,
		ledger:   ledger,
		selected: cur.selected,
		lastID:   id,
	}
	s.state.Store(next)

	return domain.TickRecord{
		Tick:   next.tick,
		At:     now,
		Energy: sample,
		Entry:  entry,
	}
}

// SelectLadle marks id as selected. Unknown ids are accepted.
func (s *Simulator) SelectLadle(id string) {
	s.setSelected(&id)
}

// ClearSelection resets the selected ladle to none.
func (s *Simulator) ClearSelection() {
	s.setSelected(nil)
}

func (s *Simulator) setSelected(id *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	next := *cur
	next.selected = id
	s.state.Store(&next)
}

// Snapshot returns a copy of the current state.
func (s *Simulator) Snapshot() Snapshot {
	cur := s.state.Load()
	snap := Snapshot{
		Tick:          cur.tick,
		EnergySamples: append([]domain.EnergySample(nil), cur.energy...),
		LedgerEntries: append([]domain.LedgerEntry(nil), cur.ledger...),
	}
	if cur.selected != nil {
		id := *cur.selected
		snap.SelectedLadleID = &id
	}
	return snap
}

// Catalog returns a copy of the ladle identity catalog.
func (s *Simulator) Catalog() []domain.LadleIdentity {
	return cloneCatalog(s.catalog)
}

// Run ticks every interval until ctx is cancelled. Each record is offered to
// out without blocking and dropped when out is full; a nil out discards
// records. Run reports how many records were dropped.
func (s *Simulator) Run(ctx context.Context, interval time.Duration, out chan<- domain.TickRecord) (dropped int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return dropped
		case <-ticker.C:
			rec := s.Tick()
			if out == nil {
				continue
			}
			select {
			case out <- rec:
			default:
				dropped++
			}
		}
	}
}

func cloneCatalog(in []domain.LadleIdentity) []domain.LadleIdentity {
	out := make([]domain.LadleIdentity, len(in))
	for i, l := range in {
		out[i] = l
		out[i].Route = append([]domain.Position(nil), l.Route...)
	}
	return out
}

func highestID(entries []domain.LedgerEntry) uint64 {
	var highest uint64
	for _, e := range entries {
		if v, err := strconv.ParseUint(e.ID, 10, 64); err == nil && v > highest {
			highest = v
		}
	}
	return highest
}
