package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func receive(t *testing.T, w *watcher) string {
	t.Helper()
	select {
	case f := <-w.frames:
		return f
	case <-time.After(100 * time.Millisecond):
		t.Fatal("watcher did not receive a frame")
	}
	return ""
}

func TestEventFrames(t *testing.T) {
	tests := []struct {
		evt  Event
		want string
	}{
		{CellUpdateEvent(1, 2, "A"), "event: cell_update\ndata: {\"row\":1,\"col\":2,\"value\":\"A\"}\n\n"},
		{SolvedEvent(&solveResponse{Count: 4, TotalScore: 1000, MinLength: 3}), "event: solved\ndata: {\"count\":4,\"total_score\":1000,\"min_length\":3}\n\n"},
		{GridDeletedEvent("abc"), "event: grid_deleted\ndata: {\"id\":\"abc\"}\n\n"},
	}
	for _, tt := range tests {
		got, err := tt.evt.frame()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.evt.Type, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.evt.Type, got, tt.want)
		}
	}
}

func TestEventFrameEncodeError(t *testing.T) {
	if _, err := (Event{Type: EventSolved, Payload: make(chan int)}).frame(); err == nil {
		t.Fatal("expected an encoding error")
	}
}

func TestHubPublishDropsUnencodable(t *testing.T) {
	h := NewEventHub()
	w := h.Watch("grid1")
	defer h.Leave(w)

	if n := h.Publish("grid1", Event{Type: EventSolved, Payload: make(chan int)}); n != 0 {
		t.Fatalf("expected no deliveries, got %d", n)
	}
	select {
	case f := <-w.frames:
		t.Fatalf("unexpected frame %q", f)
	default:
	}
}

func TestHubWatchLeave(t *testing.T) {
	h := NewEventHub()

	w1 := h.Watch("grid1")
	w2 := h.Watch("grid1")
	w3 := h.Watch("grid2")

	if h.Watchers("grid1") != 2 || h.Watchers("grid2") != 1 {
		t.Fatalf("unexpected watcher counts: %d, %d", h.Watchers("grid1"), h.Watchers("grid2"))
	}

	h.Leave(w1)
	h.Leave(w1) // should not panic
	if h.Watchers("grid1") != 1 {
		t.Fatalf("expected 1 watcher on grid1, got %d", h.Watchers("grid1"))
	}

	h.Leave(w2)
	h.Leave(w3)
	if h.Watchers("grid1") != 0 || h.Watchers("grid2") != 0 {
		t.Fatal("expected no watchers left")
	}
	if len(h.byGrid) != 0 {
		t.Fatalf("empty grid sets should be dropped, got %d", len(h.byGrid))
	}
}

func TestHubPublishRoutesByGrid(t *testing.T) {
	h := NewEventHub()
	a := h.Watch("grid1")
	b := h.Watch("grid2")
	defer h.Leave(a)
	defer h.Leave(b)

	if n := h.Publish("grid1", CellUpdateEvent(0, 0, "Z")); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if f := receive(t, a); !strings.HasPrefix(f, "event: cell_update\n") {
		t.Fatalf("unexpected frame %q", f)
	}
	select {
	case f := <-b.frames:
		t.Fatalf("grid2 watcher should not receive %q", f)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubPublishSkipsFullBuffer(t *testing.T) {
	h := NewEventHub()
	w := h.Watch("grid1")
	defer h.Leave(w)

	for range sseChannelBuffer {
		h.Publish("grid1", GridDeletedEvent("grid1"))
	}
	// This should not block.
	if n := h.Publish("grid1", GridDeletedEvent("grid1")); n != 0 {
		t.Fatalf("expected the full watcher to be skipped, got %d deliveries", n)
	}
}

func TestHubConcurrent(t *testing.T) {
	h := NewEventHub()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "grid1"
			if i%2 == 0 {
				id = "grid2"
			}
			w := h.Watch(id)
			h.Publish(id, CellUpdateEvent(i, i, "A"))
			h.Watchers(id)
			h.Leave(w)
		}(i)
	}
	wg.Wait()

	if h.Watchers("grid1") != 0 || h.Watchers("grid2") != 0 {
		t.Fatal("expected no watchers after concurrent test")
	}
}

// syncRecorder guards the body so the test can read while Stream writes.
type syncRecorder struct {
	mu sync.Mutex
	*httptest.ResponseRecorder
}

func (r *syncRecorder) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(b)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestGridEventsStream(t *testing.T) {
	srv := newTestServer(t, nil)
	grid := seedGrid(srv)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/api/grids/"+grid.ID+"/events", nil).WithContext(ctx)
	rec := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		srv.ServeHTTP(rec, req)
		close(done)
	}()

	waitFor := func(substr string) {
		t.Helper()
		deadline := time.Now().Add(time.Second)
		for !strings.Contains(rec.body(), substr) {
			if time.Now().After(deadline) {
				t.Fatalf("stream never contained %q; got %q", substr, rec.body())
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	waitFor("event: grid_state\n")
	if w := do(srv, "POST", "/api/grids/"+grid.ID+"/cells", `{"row":0,"col":0,"value":"b"}`); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	waitFor("event: cell_update\ndata: {\"row\":0,\"col\":0,\"value\":\"B\"}\n\n")
	if w := do(srv, "POST", "/api/grids/"+grid.ID+"/solve", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	waitFor("event: solved\ndata: {\"count\":0,\"total_score\":0,\"min_length\":3}\n\n")
	if w := do(srv, "DELETE", "/api/grids/"+grid.ID, ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	waitFor("event: grid_deleted\n")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after the client left")
	}
	if srv.events.Watchers(grid.ID) != 0 {
		t.Fatal("watcher should be released when the stream ends")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
}
