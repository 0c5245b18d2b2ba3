package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/sim"
)

const (
	EventSnapshot  = "snapshot"
	EventHeartbeat = "heartbeat"

	clientBuffer = 8
)

// Event is one server-sent event.
type Event struct {
	ID   uint64
	Type string
	Data any
}

type streamClient struct {
	id     string
	events chan Event
}

// Hub fans snapshot events out to every connected stream client. Slow
// clients miss events rather than stall the publisher.
type Hub struct {
	obs       ports.Observability
	heartbeat time.Duration

	mu      sync.RWMutex
	clients map[string]*streamClient
}

func NewHub(obs ports.Observability, heartbeat time.Duration) *Hub {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &Hub{
		obs:       obs,
		heartbeat: heartbeat,
		clients:   make(map[string]*streamClient),
	}
}

// PublishSnapshot queues snap for every client.
func (h *Hub) PublishSnapshot(snap sim.Snapshot) {
	h.publish(Event{ID: snap.Tick, Type: EventSnapshot, Data: snap})
}

func (h *Hub) publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.events <- ev:
		default:
			h.obs.LogInfo("stream_client_lagging", ports.Field{Key: "client_id", Value: c.id})
		}
	}
}

// ClientCount reports the number of connected stream clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve streams events to w until ctx is done or a write fails. initial is
// sent before any published event.
func (h *Hub) Serve(ctx context.Context, w http.ResponseWriter, initial sim.Snapshot) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported by %T", w)
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	c := &streamClient{id: uuid.NewString(), events: make(chan Event, clientBuffer)}
	h.add(c)
	defer h.remove(c)

	if err := writeEvent(w, flusher, Event{ID: initial.Tick, Type: EventSnapshot, Data: initial}); err != nil {
		return err
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.events:
			if err := writeEvent(w, flusher, ev); err != nil {
				return err
			}
		case now := <-ticker.C:
			hb := Event{Type: EventHeartbeat, Data: map[string]string{"ts": now.UTC().Format(time.RFC3339)}}
			if err := writeEvent(w, flusher, hb); err != nil {
				return err
			}
		}
	}
}

func (h *Hub) add(c *streamClient) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.obs.LogInfo("stream_client_connected", ports.Field{Key: "client_id", Value: c.id})
}

func (h *Hub) remove(c *streamClient) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	h.obs.LogInfo("stream_client_disconnected", ports.Field{Key: "client_id", Value: c.id})
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, ev Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	if ev.ID > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", ev.ID); err != nil {
			return fmt.Errorf("write event id: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
		return fmt.Errorf("write %s event: %w", ev.Type, err)
	}
	flusher.Flush()
	return nil
}
