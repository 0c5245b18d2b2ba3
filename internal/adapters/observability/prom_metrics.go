package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

// Metric names shared with the CLI stats command.
const (
	MetricTicks          = "hud_ticks_total"
	MetricEnergy         = "hud_energy_kw"
	MetricLedgerLength   = "hud_ledger_length"
	MetricExported       = "hud_export_records_total"
	MetricExportDropped  = "hud_export_dropped_total"
	MetricJournalSize    = "hud_journal_size_bytes"
	MetricQueueLength    = "hud_queue_length"
	MetricSinkLatency    = "hud_sink_latency_seconds"
	MetricSinkFailures   = "hud_sink_failures_total"
	MetricSelectionCount = "hud_selection_changes_total"
)

type PromObs struct {
	log      *zap.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the HUD metrics on reg and logs through logger. A nil
// logger discards log output.
func NewPromObs(reg prometheus.Registerer, logger *zap.Logger) *PromObs {
	if logger == nil {
		logger = zap.NewNop()
	}

	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricTicks,
		Help: "Simulator ticks applied.",
	})
	exported := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricExported,
		Help: "Tick records successfully written to the sink.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricExportDropped,
		Help: "Tick records lost to export backpressure policies.",
	})
	sinkFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricSinkFailures,
		Help: "Failed sink batch writes.",
	})
	selections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricSelectionCount,
		Help: "Selected-ladle changes requested through the API.",
	})
	energy := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricEnergy,
		Help: "Newest simulated energy reading in kW.",
	})
	ledgerLen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricLedgerLength,
		Help: "Entries currently held by the ledger.",
	})
	journalSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricJournalSize,
		Help: "Size of the ledger journal on disk.",
	})
	queueLen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricQueueLength,
		Help: "Tick records buffered for export.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricSinkLatency,
		Help:    "Time spent writing one batch to the sink.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	reg.MustRegister(ticks, exported, dropped, sinkFailures, selections,
		energy, ledgerLen, journalSize, queueLen, latency)

	return &PromObs{
		log: logger,
		counters: map[string]prometheus.Counter{
			MetricTicks:          ticks,
			MetricExported:       exported,
			MetricExportDropped:  dropped,
			MetricSinkFailures:   sinkFailures,
			MetricSelectionCount: selections,
		},
		gauges: map[string]prometheus.Gauge{
			MetricEnergy:       energy,
			MetricLedgerLength: ledgerLen,
			MetricJournalSize:  journalSize,
			MetricQueueLength:  queueLen,
		},
		histos: map[string]prometheus.Observer{
			MetricSinkLatency: latency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, zapFields(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.log.DPanic(msg, append(zapFields(fields), zap.Error(err))...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func zapFields(fields []ports.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
