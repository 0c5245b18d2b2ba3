package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/observability"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

const defaultIdleSleep = 5 * time.Millisecond

// Hook observes every tick record before it is exported.
type Hook func(r *domain.TickRecord)

// RunExportPipeline consumes tick records until in is closed or ctx is done.
// Each record is passed to hooks, appended to the journal and queued for the
// sink. A nil journal or queue skips that stage.
func RunExportPipeline(ctx context.Context, in <-chan domain.TickRecord, j ports.Journal, q ports.RecordQueue, pol ports.Policy, obs ports.Observability, hooks ...Hook) {
	for {
		var (
			rec domain.TickRecord
			ok  bool
		)
		select {
		case <-ctx.Done():
			return
		case rec, ok = <-in:
			if !ok {
				return
			}
		}

		r := &rec
		obs.IncCounter(observability.MetricTicks, 1)
		obs.SetGauge(observability.MetricEnergy, r.Energy.Value)
		for _, h := range hooks {
			if h != nil {
				h(r)
			}
		}

		if j != nil && waitForJournalCapacity(ctx, j, pol, obs) {
			if _, err := j.Append(r); err != nil {
				obs.LogCritical("journal_append_failed", err, ports.Field{Key: "tick", Value: r.Tick})
			}
		}

		if q != nil && !enqueueWithPolicy(ctx, q, r, pol, obs) {
			obs.IncCounter(observability.MetricExportDropped, 1)
		}
	}
}

func waitForJournalCapacity(ctx context.Context, j ports.Journal, pol ports.Policy, obs ports.Observability) bool {
	if pol.MaxJournalSizeBytes <= 0 {
		return true
	}
	sleep := idleSleep(pol)

	for {
		stats := j.Stats()
		if stats.SizeBytes < pol.MaxJournalSizeBytes {
			return true
		}

		switch pol.OnJournalFull {
		case "block":
			if !sleepCtx(ctx, sleep) {
				return false
			}
		case "drop":
			obs.LogError("journal_full_drop", fmt.Errorf("size=%d limit=%d", stats.SizeBytes, pol.MaxJournalSizeBytes))
			return false
		default:
			obs.LogError("journal_policy_invalid", fmt.Errorf("policy=%s", pol.OnJournalFull))
			return false
		}
	}
}

func enqueueWithPolicy(ctx context.Context, q ports.RecordQueue, r *domain.TickRecord, pol ports.Policy, obs ports.Observability) bool {
	sleep := idleSleep(pol)

	for {
		if ok := q.Enqueue(r); ok {
			return true
		}

		switch pol.OnQueueFull {
		case "block":
			if !sleepCtx(ctx, sleep) {
				return false
			}
		case "drop", "reject":
			obs.LogError("queue_full_drop", fmt.Errorf("queue length exceeded capacity %d", pol.MaxQueueLen))
			return false
		default:
			obs.LogError("queue_policy_invalid", fmt.Errorf("policy=%s", pol.OnQueueFull))
			return false
		}
	}
}

func idleSleep(pol ports.Policy) time.Duration {
	if pol.IdleSleep <= 0 {
		return defaultIdleSleep
	}
	return pol.IdleSleep
}

// sleepCtx reports false when ctx ended before d elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
