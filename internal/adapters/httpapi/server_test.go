package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/observability"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/random"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/dashboard"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/sim"
)

type envelope struct {
	Result  string          `json:"result"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

type fixture struct {
	sim *sim.Simulator
	hub *Hub
	reg *prometheus.Registry
	srv *httptest.Server
}

func newFixture(t *testing.T, heartbeat time.Duration) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	obs := observability.NewPromObs(reg, nil)
	s := sim.New(sim.DefaultCatalog(), sim.WithRandom(random.NewSeeded(7)))
	hub := NewHub(obs, heartbeat)
	api := NewServer(s, hub, obs, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return &fixture{sim: s, hub: hub, reg: reg, srv: srv}
}

func getJSON(t *testing.T, url string) envelope {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	if env.Result != "ok" {
		t.Fatalf("GET %s: result %q", url, env.Result)
	}
	return env
}

func putSelection(t *testing.T, url, body string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url+"/api/v1/selection", strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT selection: %v", err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode selection: %v", err)
	}
	return resp, env
}

func TestSnapshotEndpoint(t *testing.T) {
	f := newFixture(t, time.Minute)
	f.sim.Tick()

	env := getJSON(t, f.srv.URL+"/api/v1/snapshot")
	var snap sim.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.EnergySamples) != sim.EnergyWindow {
		t.Fatalf("expected %d energy samples, got %d", sim.EnergyWindow, len(snap.EnergySamples))
	}
	if len(snap.LedgerEntries) != 3 {
		t.Fatalf("expected 3 ledger entries, got %d", len(snap.LedgerEntries))
	}
	if snap.Tick != 1 {
		t.Fatalf("expected tick 1, got %d", snap.Tick)
	}
	if snap.SelectedLadleID != nil {
		t.Fatalf("expected no selection, got %q", *snap.SelectedLadleID)
	}
}

func TestEnergyLedgerAndLadlesEndpoints(t *testing.T) {
	f := newFixture(t, time.Minute)

	var energy struct {
		EnergySamples []domain.EnergySample `json:"energySamples"`
	}
	if err := json.Unmarshal(getJSON(t, f.srv.URL+"/api/v1/energy").Data, &energy); err != nil {
		t.Fatalf("decode energy: %v", err)
	}
	if len(energy.EnergySamples) != sim.EnergyWindow || energy.EnergySamples[0].Time != "0:00" {
		t.Fatalf("unexpected energy window: %+v", energy.EnergySamples)
	}

	var ledger struct {
		LedgerEntries []domain.LedgerEntry `json:"ledgerEntries"`
	}
	if err := json.Unmarshal(getJSON(t, f.srv.URL+"/api/v1/ledger").Data, &ledger); err != nil {
		t.Fatalf("decode ledger: %v", err)
	}
	if len(ledger.LedgerEntries) != 2 || ledger.LedgerEntries[0].LadleID != "SL-124" {
		t.Fatalf("unexpected seed ledger: %+v", ledger.LedgerEntries)
	}

	var ladles struct {
		Ladles []domain.LadleIdentity `json:"ladles"`
	}
	if err := json.Unmarshal(getJSON(t, f.srv.URL+"/api/v1/ladles").Data, &ladles); err != nil {
		t.Fatalf("decode ladles: %v", err)
	}
	if len(ladles.Ladles) != 3 || ladles.Ladles[2].ID != "SLBC-1" || len(ladles.Ladles[2].Route) != 3 {
		t.Fatalf("unexpected catalog: %+v", ladles.Ladles)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	f := newFixture(t, time.Minute)

	var board dashboard.Board
	if err := json.Unmarshal(getJSON(t, f.srv.URL+"/api/v1/dashboard").Data, &board); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if len(board.Cards) != 2 || len(board.Tracker) != 5 || len(board.Alerts) != 1 {
		t.Fatalf("unexpected board: %+v", board)
	}
}

func TestSelectionRoundTrip(t *testing.T) {
	f := newFixture(t, time.Minute)

	resp, env := putSelection(t, f.srv.URL, `{"ladleId":"SP-124"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var sel Selection
	if err := json.Unmarshal(env.Data, &sel); err != nil {
		t.Fatalf("decode selection: %v", err)
	}
	if sel.LadleID == nil || *sel.LadleID != "SP-124" {
		t.Fatalf("expected SP-124 selected, got %v", sel.LadleID)
	}

	if err := json.Unmarshal(getJSON(t, f.srv.URL+"/api/v1/selection").Data, &sel); err != nil {
		t.Fatalf("decode selection: %v", err)
	}
	if sel.LadleID == nil || *sel.LadleID != "SP-124" {
		t.Fatalf("GET selection returned %v", sel.LadleID)
	}

	_, env = putSelection(t, f.srv.URL, `{"ladleId":null}`)
	sel = Selection{}
	if err := json.Unmarshal(env.Data, &sel); err != nil {
		t.Fatalf("decode selection: %v", err)
	}
	if sel.LadleID != nil {
		t.Fatalf("expected cleared selection, got %q", *sel.LadleID)
	}
	if f.sim.Snapshot().SelectedLadleID != nil {
		t.Fatalf("simulator still holds a selection")
	}

	expected := `
# HELP hud_selection_changes_total Selected-ladle changes requested through the API.
# TYPE hud_selection_changes_total counter
hud_selection_changes_total 2
`
	if err := testutil.GatherAndCompare(f.reg, strings.NewReader(expected), observability.MetricSelectionCount); err != nil {
		t.Fatalf("selection counter mismatch: %v", err)
	}
}

func TestSelectionRejectsBadBody(t *testing.T) {
	f := newFixture(t, time.Minute)

	f.sim.SelectLadle("SL-124")

	for _, body := range []string{
		``,
		`{"ladleId":`,
		`{"ladle":"SL-124"}`,
		`{}`,
		`null`,
		`{"ladleId":"SP-124","extra":1}`,
		`{"ladleId":42}`,
	} {
		resp, env := putSelection(t, f.srv.URL, body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, resp.StatusCode)
		}
		if env.Result != "error" || env.Code != CodeInvalidRequest {
			t.Fatalf("body %q: unexpected envelope %+v", body, env)
		}
		if got := f.sim.Snapshot().SelectedLadleID; got == nil || *got != "SL-124" {
			t.Fatalf("body %q: selection changed to %v", body, got)
		}
	}
	if err := testutil.GatherAndCompare(f.reg, strings.NewReader(`
# HELP hud_selection_changes_total Selected-ladle changes requested through the API.
# TYPE hud_selection_changes_total counter
hud_selection_changes_total 0
`), observability.MetricSelectionCount); err != nil {
		t.Fatalf("rejected bodies counted as selection changes: %v", err)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, time.Minute)

	resp, err := http.Get(f.srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status %d", resp.StatusCode)
	}

	resp, err = http.Get(f.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	scanner := bufio.NewScanner(resp.Body)
	found := false
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), observability.MetricTicks) {
			found = true
		}
	}
	if !found {
		t.Fatalf("metrics output missing %s", observability.MetricTicks)
	}
}

type sseEvent struct {
	id    string
	event string
	data  string
}

func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return ev
		case strings.HasPrefix(line, "id: "):
			ev.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			ev.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func openStream(t *testing.T, url string) *bufio.Reader {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/v1/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}
	return bufio.NewReader(resp.Body)
}

func TestStreamSendsInitialAndTickSnapshots(t *testing.T) {
	f := newFixture(t, time.Minute)
	r := openStream(t, f.srv.URL)

	first := readEvent(t, r)
	if first.event != EventSnapshot {
		t.Fatalf("expected initial snapshot, got %+v", first)
	}
	var snap sim.Snapshot
	if err := json.Unmarshal([]byte(first.data), &snap); err != nil {
		t.Fatalf("decode initial snapshot: %v", err)
	}
	if len(snap.EnergySamples) != sim.EnergyWindow || snap.Tick != 0 {
		t.Fatalf("unexpected initial snapshot: %+v", snap)
	}

	f.sim.Tick()
	f.hub.PublishSnapshot(f.sim.Snapshot())

	next := readEvent(t, r)
	if next.event != EventSnapshot || next.id != "1" {
		t.Fatalf("expected snapshot with id 1, got %+v", next)
	}
	if err := json.Unmarshal([]byte(next.data), &snap); err != nil {
		t.Fatalf("decode tick snapshot: %v", err)
	}
	if len(snap.LedgerEntries) != 3 {
		t.Fatalf("expected 3 ledger entries after one tick, got %d", len(snap.LedgerEntries))
	}
}

func TestStreamHeartbeat(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond)
	r := openStream(t, f.srv.URL)

	readEvent(t, r)
	ev := readEvent(t, r)
	if ev.event != EventHeartbeat {
		t.Fatalf("expected heartbeat, got %+v", ev)
	}
	if f.hub.ClientCount() != 1 {
		t.Fatalf("expected one connected client, got %d", f.hub.ClientCount())
	}
}
