package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/observability"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/dashboard"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/sim"
)

// Simulator is the part of the simulator the API reads and drives.
type Simulator interface {
	Snapshot() sim.Snapshot
	Catalog() []domain.LadleIdentity
	SelectLadle(id string)
	ClearSelection()
}

// Selection is the body of GET and PUT /api/v1/selection. A null LadleID
// means no ladle is selected.
type Selection struct {
	LadleID *string `json:"ladleId"`
}

type Server struct {
	sim     Simulator
	hub     *Hub
	obs     ports.Observability
	board   dashboard.Board
	metrics http.Handler
}

// NewServer builds the API. metrics may be nil, in which case /metrics is not
// mounted.
func NewServer(s Simulator, hub *Hub, obs ports.Observability, metrics http.Handler) *Server {
	return &Server{
		sim:     s,
		hub:     hub,
		obs:     obs,
		board:   dashboard.Default(),
		metrics: metrics,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/v1/energy", s.handleEnergy)
	mux.HandleFunc("GET /api/v1/ledger", s.handleLedger)
	mux.HandleFunc("GET /api/v1/ladles", s.handleLadles)
	mux.HandleFunc("GET /api/v1/selection", s.handleGetSelection)
	mux.HandleFunc("PUT /api/v1/selection", s.handlePutSelection)
	mux.HandleFunc("GET /api/v1/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return mux
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, s.sim.Snapshot())
}

func (s *Server) handleEnergy(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]any{"energySamples": s.sim.Snapshot().EnergySamples})
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]any{"ledgerEntries": s.sim.Snapshot().LedgerEntries})
}

func (s *Server) handleLadles(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]any{"ladles": s.sim.Catalog()})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, s.board)
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, Selection{LadleID: s.sim.Snapshot().SelectedLadleID})
}

func (s *Server) handlePutSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := decodeSelection(io.LimitReader(r.Body, 4<<10))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	if sel.LadleID == nil {
		s.sim.ClearSelection()
	} else {
		s.sim.SelectLadle(*sel.LadleID)
	}
	s.obs.IncCounter(observability.MetricSelectionCount, 1)

	snap := s.sim.Snapshot()
	if s.hub != nil {
		s.hub.PublishSnapshot(snap)
	}
	writeSuccess(w, Selection{LadleID: snap.SelectedLadleID})
}

// decodeSelection requires an explicit ladleId key; null clears the
// selection, so an empty object must not be read as one.
func decodeSelection(src io.Reader) (Selection, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(src).Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return Selection{}, errors.New("request body is empty")
		}
		return Selection{}, err
	}
	if fields == nil {
		return Selection{}, errors.New("request body must be an object")
	}

	raw, ok := fields["ladleId"]
	if !ok {
		return Selection{}, errors.New(`missing field "ladleId"`)
	}
	for key := range fields {
		if key != "ladleId" {
			return Selection{}, fmt.Errorf("unknown field %q", key)
		}
	}

	var sel Selection
	if err := json.Unmarshal(raw, &sel.LadleID); err != nil {
		return Selection{}, fmt.Errorf("ladleId: %w", err)
	}
	return sel, nil
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusNotFound, CodeInvalidRequest, "streaming disabled")
		return
	}
	if err := s.hub.Serve(r.Context(), w, s.sim.Snapshot()); err != nil {
		s.obs.LogError("stream_closed", err)
	}
}
