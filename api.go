package hud

import (
	base "github.com/adityakaaltatva/ladle-tracking-system/pkg/hud"
)

// Re-exported errors for convenience.
var (
	ErrChannelSinkClosed = base.ErrChannelSinkClosed
	ErrQueueWithoutSink  = base.ErrQueueWithoutSink
)

// Type aliases so consumers can import the module root directly.
type (
	Config          = base.Config
	Policy          = base.Policy
	SimulatorConfig = base.SimulatorConfig
	HTTPConfig      = base.HTTPConfig
	JournalConfig   = base.JournalConfig
	TimescaleConfig = base.TimescaleConfig
	LogConfig       = base.LogConfig
	Runtime         = base.Runtime
	RuntimeOption   = base.RuntimeOption
	Simulator       = base.Simulator
	Snapshot        = base.Snapshot
	TickRecord      = base.TickRecord
	TickBatchSink   = base.TickBatchSink
	EnergySample    = base.EnergySample
	LedgerEntry     = base.LedgerEntry
	LadleIdentity   = base.LadleIdentity
	Sink            = base.Sink
	RecordQueue     = base.RecordQueue
	Journal         = base.Journal
	Observability   = base.Observability
	Field           = base.Field
	Random          = base.Random
	Clock           = base.Clock
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithRandom(r Random) RuntimeOption {
	return base.WithRandom(r)
}

func WithClock(c Clock) RuntimeOption {
	return base.WithClock(c)
}

func WithSink(s Sink) RuntimeOption {
	return base.WithSink(s)
}

func WithCallbackSink(name string, fn TickBatchSink) RuntimeOption {
	return base.WithCallbackSink(name, fn)
}

func WithJournal(j Journal) RuntimeOption {
	return base.WithJournal(j)
}

func WithRecordQueue(q RecordQueue) RuntimeOption {
	return base.WithRecordQueue(q)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

// Sink adapters.
func NewCallbackSink(name string, fn TickBatchSink) Sink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (Sink, <-chan []TickRecord, func()) {
	return base.NewChannelSink(name, buffer)
}
