package pipeline

import (
	"context"
	"time"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/observability"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

// RunSinkPipeline drains q in batches into sink until ctx is done. A failed
// batch is retried after the idle sleep.
func RunSinkPipeline(ctx context.Context, q ports.RecordQueue, sink ports.Sink, pol ports.Policy, obs ports.Observability) {
	sleep := idleSleep(pol)

	for {
		if ctx.Err() != nil {
			return
		}

		batch := q.DequeueBatch(pol.MaxBatchSize)
		if len(batch) == 0 {
			if !sleepCtx(ctx, sleep) {
				return
			}
			continue
		}

		for {
			start := time.Now()
			err := sink.WriteBatch(batch)
			if err == nil {
				obs.ObserveLatency(observability.MetricSinkLatency, time.Since(start).Seconds())
				obs.IncCounter(observability.MetricExported, float64(len(batch)))
				break
			}

			obs.IncCounter(observability.MetricSinkFailures, 1)
			obs.LogError("sink_write_failed", err,
				ports.Field{Key: "sink", Value: sink.Name()},
				ports.Field{Key: "records", Value: len(batch)})
			if !sleepCtx(ctx, sleep) {
				return
			}
		}
	}
}
