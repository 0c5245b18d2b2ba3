package hud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/clock"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/httpapi"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/journal"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/observability"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/queue"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/random"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/sink"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/app/pipeline"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/sim"
)

// ErrQueueWithoutSink is returned by NewRuntime when a record queue is
// supplied but no sink would drain it.
var ErrQueueWithoutSink = errors.New("hud: record queue requires a sink")

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	rng           ports.Random
	clock         ports.Clock
	sink          ports.Sink
	journal       ports.Journal
	queue         ports.RecordQueue
	observability ports.Observability
}

// WithRandom replaces the PCG source, e.g. with a scripted one in tests.
func WithRandom(r Random) RuntimeOption {
	return func(o *runtimeOverrides) { o.rng = r }
}

// WithClock replaces the system clock used for ledger timestamps.
func WithClock(c Clock) RuntimeOption {
	return func(o *runtimeOverrides) { o.clock = c }
}

// WithSink exports tick records to s instead of the configured Timescale table.
func WithSink(s Sink) RuntimeOption {
	return func(o *runtimeOverrides) { o.sink = s }
}

// WithCallbackSink exports tick records through fn.
func WithCallbackSink(name string, fn TickBatchSink) RuntimeOption {
	return WithSink(NewCallbackSink(name, fn))
}

// WithJournal uses j instead of opening journal.dir.
func WithJournal(j Journal) RuntimeOption {
	return func(o *runtimeOverrides) { o.journal = j }
}

// WithRecordQueue swaps the bounded in-memory export queue. It needs a sink
// to drain it; see ErrQueueWithoutSink.
func WithRecordQueue(q RecordQueue) RuntimeOption {
	return func(o *runtimeOverrides) { o.queue = q }
}

// WithObservability replaces the Prometheus and zap backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) { o.observability = obs }
}

// Runtime wires the simulator to the export pipeline and the HTTP API.
type Runtime struct {
	cfg      *Config
	policy   ports.Policy
	obs      ports.Observability
	logger   *zap.Logger
	registry *prometheus.Registry

	sim     *sim.Simulator
	hub     *httpapi.Hub
	api     *httpapi.Server
	journal ports.Journal
	queue   ports.RecordQueue
	sink    ports.Sink
	db      *sql.DB

	httpSrv  *http.Server
	listener net.Listener
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool
}

// NewRuntime applies defaults to cfg, validates it and builds every adapter.
// The journal is opened when journal.dir is set, and Timescale export is
// enabled when timescale.conn_string is set. Options override either.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	rt := &Runtime{
		cfg:      cfg,
		policy:   cfg.Policy,
		registry: prometheus.NewRegistry(),
	}
	rt.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	rt.obs = overrides.observability
	if rt.obs == nil {
		logger, err := observability.NewLogger(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		rt.logger = logger
		rt.obs = observability.NewPromObs(rt.registry, logger)
	}

	rng := overrides.rng
	if rng == nil {
		if cfg.Simulator.Seed != 0 {
			rng = random.NewSeeded(cfg.Simulator.Seed)
		} else {
			rng = random.New()
		}
	}
	clk := overrides.clock
	if clk == nil {
		clk = clock.System{}
	}
	rt.sim = sim.New(sim.DefaultCatalog(), sim.WithRandom(rng), sim.WithClock(clk))

	rt.journal = overrides.journal
	if rt.journal == nil && cfg.Journal.Dir != "" {
		j, err := journal.Open(cfg.Journal.Dir)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		rt.journal = j
	}

	rt.sink = overrides.sink
	if rt.sink == nil && cfg.Timescale.ConnString != "" {
		db, err := sql.Open("postgres", cfg.Timescale.ConnString)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("open timescale: %w", err), rt.closeJournal())
		}
		rt.db = db
		rt.sink = sink.NewTimescaleSink(db, cfg.Timescale.Table)
	}

	// Only the sink loop drains the queue.
	rt.queue = overrides.queue
	if rt.queue != nil && rt.sink == nil {
		return nil, errors.Join(ErrQueueWithoutSink, rt.closeJournal())
	}
	if rt.queue == nil && rt.sink != nil {
		rt.queue = queue.NewMemQueue(cfg.Policy.MaxQueueLen)
	}

	rt.hub = httpapi.NewHub(rt.obs, cfg.HTTP.HeartbeatInterval)
	rt.api = httpapi.NewServer(rt.sim, rt.hub, rt.obs, promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))

	return rt, nil
}

// Simulator exposes the running simulator for direct reads and selection.
func (r *Runtime) Simulator() *Simulator { return r.sim }

// Handler returns the HTTP API so callers can mount it on their own server.
func (r *Runtime) Handler() http.Handler { return r.api.Handler() }

// Addr reports the bound listen address once Start has returned.
func (r *Runtime) Addr() string {
	if r.listener == nil {
		return ""
	}
	return r.listener.Addr().String()
}

// Start binds the HTTP listener and launches the simulator, export and sink
// loops. It returns immediately; call Run to block on a context instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}
	if r.started {
		return fmt.Errorf("runtime already started")
	}

	ln, err := net.Listen("tcp", r.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.cfg.HTTP.Addr, err)
	}
	r.listener = ln
	r.started = true

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	ticks := make(chan domain.TickRecord, r.policy.MaxQueueLen)
	r.goRun(func() {
		defer close(ticks)
		dropped := r.sim.Run(ctx, r.cfg.Simulator.Interval, ticks)
		if dropped > 0 {
			r.obs.IncCounter(observability.MetricExportDropped, float64(dropped))
		}
	})
	r.goRun(func() {
		pipeline.RunExportPipeline(ctx, ticks, r.journal, r.queue, r.policy, r.obs, r.publishTick)
	})
	if r.sink != nil {
		r.goRun(func() {
			pipeline.RunSinkPipeline(ctx, r.queue, r.sink, r.policy, r.obs)
		})
	}
	r.goRun(func() { r.recordGauges(ctx, time.Second) })

	// Stream handlers return when the runtime context is cancelled.
	r.httpSrv = &http.Server{
		Handler:           r.api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := r.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("http_server_exited", err)
		}
	}()

	r.obs.LogInfo("runtime_started",
		Field{Key: "addr", Value: r.Addr()},
		Field{Key: "interval", Value: r.cfg.Simulator.Interval.String()},
		Field{Key: "journal", Value: r.journal != nil},
		Field{Key: "sink", Value: sinkName(r.sink)})
	return nil
}

// Run starts the runtime and blocks until ctx is cancelled, then shuts down
// gracefully.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown cancels every loop and open stream, stops the HTTP server, then
// closes the journal and the database handle. The journal stays open if the
// loops have not exited by the time ctx is done.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.cancel != nil {
		r.cancel()
	}
	if r.httpSrv != nil {
		if err := r.httpSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		if err := r.closeJournal(); err != nil {
			errs = append(errs, err)
		}
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("waiting for loops: %w", ctx.Err()))
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.logger != nil {
		_ = r.logger.Sync()
	}

	return errors.Join(errs...)
}

func (r *Runtime) goRun(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

func (r *Runtime) publishTick(*domain.TickRecord) {
	snap := r.sim.Snapshot()
	r.obs.SetGauge(observability.MetricLedgerLength, float64(len(snap.LedgerEntries)))
	r.hub.PublishSnapshot(snap)
}

func (r *Runtime) recordGauges(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.journal != nil {
				r.obs.SetGauge(observability.MetricJournalSize, float64(r.journal.Stats().SizeBytes))
			}
			if r.queue != nil {
				r.obs.SetGauge(observability.MetricQueueLength, float64(r.queue.Len()))
			}
		}
	}
}

func (r *Runtime) closeJournal() error {
	if r.journal == nil {
		return nil
	}
	return r.journal.Close()
}

func sinkName(s ports.Sink) string {
	if s == nil {
		return "none"
	}
	return s.Name()
}
