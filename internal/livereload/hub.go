// Package livereload pushes stylesheet refreshes and page reloads to browsers
// over server-sent events.
//
// A Hub is constructed once per server with NewHub and shut down with Shutdown.
// Build graphs receive it through Stream, which adapts it to a pipeline.Notifier.
package livereload

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wpmoo-org/uibuild/internal/logfields"
	"github.com/wpmoo-org/uibuild/internal/metrics"
	"github.com/wpmoo-org/uibuild/internal/pipeline"
)

const (
	// EventCSS asks clients to refresh stylesheets in place.
	EventCSS = "css"
	// EventReload asks clients to reload the page.
	EventReload = "reload"

	defaultHeartbeat = 30 * time.Second
	clientBuffer     = 8
)

// Event is the JSON payload of one SSE message.
type Event struct {
	Type  string   `json:"type"`
	Paths []string `json:"paths,omitempty"`
}

// Config configures a Hub. The zero value is usable.
type Config struct {
	Recorder  metrics.Recorder
	Heartbeat time.Duration
}

// Hub manages SSE clients and fans events out to them.
type Hub struct {
	mu        sync.RWMutex
	nextID    int
	clients   map[int]*client
	closed    bool
	recorder  metrics.Recorder
	heartbeat time.Duration
}

type client struct {
	id   int
	ch   chan Event
	done chan struct{}
}

// NewHub returns a hub with no clients, using the default heartbeat when
// cfg.Heartbeat is not positive.
func NewHub(cfg Config) *Hub {
	hb := cfg.Heartbeat
	if hb <= 0 {
		hb = defaultHeartbeat
	}
	return &Hub{
		clients:   map[int]*client{},
		recorder:  metrics.OrNoop(cfg.Recorder),
		heartbeat: hb,
	}
}

// ServeHTTP implements the SSE endpoint.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	c := &client{ch: make(chan Event, clientBuffer), done: make(chan struct{})}
	h.mu.Lock()
	c.id = h.nextID
	h.nextID++
	h.clients[c.id] = c
	h.mu.Unlock()
	defer h.removeClient(c.id)

	bw := bufio.NewWriter(w)
	write := func(s string) bool {
		if _, err := bw.WriteString(s); err != nil {
			slog.Debug("livereload write", logfields.Error(err))
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !write(": connected\n\n") {
		return
	}

	hb := time.NewTicker(h.heartbeat)
	defer hb.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-c.done:
			return
		case <-hb.C:
			if !write(": ping\n\n") {
				return
			}
		case ev := <-c.ch:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if !write("data: " + string(data) + "\n\n") {
				return
			}
		}
	}
}

func (h *Hub) removeClient(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends ev to every client. Clients whose buffer is full are dropped.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return
	}
	snapshot := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.RUnlock()

	dropped := 0
	for _, c := range snapshot {
		select {
		case c.ch <- ev:
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	h.recorder.IncLiveReload(ev.Type)
	slog.Debug("livereload broadcast", "type", ev.Type, "clients", len(snapshot), "dropped", dropped)
}

// Reload asks every page to reload.
func (h *Hub) Reload() {
	h.Broadcast(Event{Type: EventReload})
}

// Stream returns a notifier that pushes a stylesheet refresh for every written
// file whose path matches the doublestar pattern match. An empty pattern
// matches everything.
func (h *Hub) Stream(match string) pipeline.Notifier {
	return pipeline.NotifierFunc(func(path string) {
		if match != "" && !matchPath(match, path) {
			return
		}
		h.Broadcast(Event{Type: EventCSS, Paths: []string{filepath.Base(path)}})
	})
}

func matchPath(pattern, path string) bool {
	slashed := strings.TrimPrefix(filepath.ToSlash(path), "/")
	ok, err := doublestar.Match(pattern, slashed)
	return err == nil && ok
}

// Shutdown disconnects all clients and turns later broadcasts into no-ops.
// It is safe to call more than once.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*client{}
	h.mu.Unlock()
	for _, c := range clients {
		close(c.done)
	}
}
