package hud

import (
	"errors"
	"fmt"
	"sync"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
)

// ErrChannelSinkClosed is returned when a channel sink is written to after being closed.
var ErrChannelSinkClosed = errors.New("hud: channel sink closed")

// TickBatchSink is invoked with ordered batches of exported tick records.
// The slice and its records belong to the callee.
type TickBatchSink func([]TickRecord) error

// NewCallbackSink adapts fn into a Sink. fn runs on the sink loop, so a
// slow handler holds back export and lets the record queue fill up. Nil
// records are skipped.
func NewCallbackSink(name string, fn TickBatchSink) Sink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes batches via a channel. It returns the sink, the
// read-only channel, and a close function the caller should invoke during
// shutdown.
//
// Each batch holds TickRecord values copied out of the export queue in tick
// order. TickRecord has no reference fields, so a receiver may keep or modify
// a batch without racing the pipeline.
// WriteBatch blocks while the channel is full, and the sink loop retries a
// failed write, so an unread channel backs up into the queue policy. After
// close, WriteBatch returns ErrChannelSinkClosed and the channel is never
// closed; receivers should stop on their own shutdown signal.
func NewChannelSink(name string, buffer int) (Sink, <-chan []TickRecord, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan []TickRecord, buffer)
	s := &channelSink{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, s.close
}

type callbackSink struct {
	name string
	fn   TickBatchSink
}

func (s *callbackSink) WriteBatch(records []*domain.TickRecord) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	if len(records) == 0 {
		return nil
	}
	return s.fn(copyBatch(records))
}

func (s *callbackSink) Name() string { return s.name }

type channelSink struct {
	name   string
	ch     chan []TickRecord
	closed chan struct{}
	once   sync.Once
}

func (s *channelSink) WriteBatch(records []*domain.TickRecord) error {
	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	default:
	}

	if len(records) == 0 {
		return nil
	}

	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	case s.ch <- copyBatch(records):
		return nil
	}
}

func (s *channelSink) Name() string { return s.name }

// close leaves ch open since WriteBatch may still be selecting on it.
func (s *channelSink) close() {
	s.once.Do(func() { close(s.closed) })
}

// copyBatch detaches a batch from the queue's pointers.
func copyBatch(records []*domain.TickRecord) []TickRecord {
	out := make([]TickRecord, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
