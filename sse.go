package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// EventType is the SSE event name a browser listens for.
type EventType string

const (
	EventGridState   EventType = "grid_state"
	EventCellUpdate  EventType = "cell_update"
	EventSolved      EventType = "solved"
	EventGridDeleted EventType = "grid_deleted"
)

// Event is one message pushed to the watchers of a grid.
type Event struct {
	Type    EventType
	Payload any
}

// CellUpdate is the payload of a cell_update event.
type CellUpdate struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

// SolveSummary is the payload of a solved event.
type SolveSummary struct {
	Count      int `json:"count"`
	TotalScore int `json:"total_score"`
	MinLength  int `json:"min_length"`
}

// GridStateEvent carries the full grid, sent when a watcher connects.
func GridStateEvent(v GridView) Event {
	return Event{Type: EventGridState, Payload: gridResponse(v)}
}

// CellUpdateEvent reports a corrected tile.
func CellUpdateEvent(row, col int, value string) Event {
	return Event{Type: EventCellUpdate, Payload: CellUpdate{Row: row, Col: col, Value: value}}
}

// SolvedEvent reports the outcome of a solve.
func SolvedEvent(resp *solveResponse) Event {
	return Event{Type: EventSolved, Payload: SolveSummary{
		Count:      resp.Count,
		TotalScore: resp.TotalScore,
		MinLength:  resp.MinLength,
	}}
}

// GridDeletedEvent tells watchers the grid is gone.
func GridDeletedEvent(id string) Event {
	return Event{Type: EventGridDeleted, Payload: map[string]string{"id": id}}
}

// frame renders e in the text/event-stream wire format.
func (e Event) frame() (string, error) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return "", fmt.Errorf("encode %s event: %w", e.Type, err)
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, data), nil
}

// watcher is one open event stream on a grid.
type watcher struct {
	frames chan string
	gridID string
}

// EventHub routes grid events to the streams watching that grid.
type EventHub struct {
	mu     sync.RWMutex
	byGrid map[string]map[*watcher]struct{}
}

// NewEventHub creates a hub without watchers.
func NewEventHub() *EventHub {
	return &EventHub{byGrid: make(map[string]map[*watcher]struct{})}
}

// Watch opens a stream on gridID. Call Leave when done.
func (h *EventHub) Watch(gridID string) *watcher {
	w := &watcher{frames: make(chan string, sseChannelBuffer), gridID: gridID}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.byGrid[gridID]
	if !ok {
		set = make(map[*watcher]struct{})
		h.byGrid[gridID] = set
	}
	set[w] = struct{}{}
	return w
}

// Leave closes the stream. Safe to call more than once.
func (h *EventHub) Leave(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.byGrid[w.gridID]
	if _, ok := set[w]; !ok {
		return
	}
	delete(set, w)
	if len(set) == 0 {
		delete(h.byGrid, w.gridID)
	}
	close(w.frames)
}

// Publish sends e to every watcher of gridID and returns how many got it.
// Watchers with a full buffer miss the event.
func (h *EventHub) Publish(gridID string, e Event) int {
	frame, err := e.frame()
	if err != nil {
		slog.Error("Drop grid event", "grid", gridID, "err", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for w := range h.byGrid[gridID] {
		select {
		case w.frames <- frame:
			sent++
		default:
		}
	}
	return sent
}

// Watchers returns the number of open streams on gridID.
func (h *EventHub) Watchers(gridID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byGrid[gridID])
}

// Stream serves text/event-stream for gridID, starting with initial,
// until the client goes away.
func (h *EventHub) Stream(w http.ResponseWriter, r *http.Request, gridID string, initial Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	first, err := initial.frame()
	if err != nil {
		slog.Error("Encode initial grid event", "grid", gridID, "err", err)
		http.Error(w, "Could not encode grid", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	watch := h.Watch(gridID)
	defer h.Leave(watch)

	fmt.Fprint(w, first)
	flusher.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		var frame string
		select {
		case <-r.Context().Done():
			return
		case f, open := <-watch.frames:
			if !open {
				return
			}
			frame = f
		case <-heartbeat.C:
			frame = ": heartbeat\n\n"
		}
		fmt.Fprint(w, frame)
		flusher.Flush()
	}
}
