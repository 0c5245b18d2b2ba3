package observability

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

func TestPromObsMetrics(t *testing.T) {
	obs := NewPromObs(prometheus.NewRegistry(), nil)

	obs.IncCounter(MetricTicks, 3)
	if got := testutil.ToFloat64(obs.counters[MetricTicks]); got != 3 {
		t.Fatalf("expected tick counter 3, got %f", got)
	}

	obs.IncCounter(MetricExportDropped, 2)
	if got := testutil.ToFloat64(obs.counters[MetricExportDropped]); got != 2 {
		t.Fatalf("expected drop counter 2, got %f", got)
	}

	obs.SetGauge(MetricEnergy, 412.5)
	if got := testutil.ToFloat64(obs.gauges[MetricEnergy]); got != 412.5 {
		t.Fatalf("expected energy gauge 412.5, got %f", got)
	}

	obs.ObserveLatency(MetricSinkLatency, 0.5)
	hCollector := obs.histos[MetricSinkLatency].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	// unknown names are ignored
	obs.IncCounter("nope", 1)
	obs.SetGauge("nope", 1)
	obs.ObserveLatency("nope", 1)
}

func TestPromObsLogsStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	obs := NewPromObs(prometheus.NewRegistry(), zap.New(core))

	obs.LogInfo("tick_applied", ports.Field{Key: "ladle", Value: "SL-124"})
	obs.LogError("sink_write_failed", errors.New("boom"), ports.Field{Key: "batch", Value: 4})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["ladle"]; got != "SL-124" {
		t.Fatalf("expected ladle field, got %v", got)
	}
	if got := entries[1].ContextMap()["error"]; got != "boom" {
		t.Fatalf("expected error field, got %v", got)
	}
}

func TestNewLoggerWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hud.log")

	logger, err := NewLogger(LogConfig{File: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hello", zap.String("ladle", "SP-124"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"ladle":"SP-124"`) {
		t.Fatalf("expected structured field in log file, got %s", data)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := NewLogger(LogConfig{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
