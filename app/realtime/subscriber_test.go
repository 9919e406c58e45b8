package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type recordingReloader struct {
	mu     sync.Mutex
	tables []string
	seen   chan string
}

func newRecordingReloader() *recordingReloader {
	return &recordingReloader{seen: make(chan string, 16)}
}

func (r *recordingReloader) Reload(ctx context.Context, table string) error {
	r.mu.Lock()
	r.tables = append(r.tables, table)
	r.mu.Unlock()
	r.seen <- table
	return nil
}

func TestSubscriberDispatchesReloads(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		conn.WriteJSON(Event{Table: "products", Type: "UPDATE"})
		conn.WriteJSON(Event{Table: "sales", Type: "INSERT"})
		// Malformed and table-less frames are skipped, not fatal.
		conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
		conn.WriteJSON(Event{Type: "UPDATE"})
		conn.WriteJSON(Event{Table: "clients", Type: "DELETE"})
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloader := newRecordingReloader()
	sub := NewSubscriber("ws"+strings.TrimPrefix(srv.URL, "http"), reloader, nil)
	done := make(chan error, 1)
	go func() { done <- sub.Run(ctx) }()

	want := []string{"products", "sales", "clients"}
	for _, table := range want {
		select {
		case got := <-reloader.seen:
			if got != table {
				t.Errorf("reload = %q, want %q", got, table)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for reload of %q", table)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
}

func TestSubscriberStopsWhenNeverConnected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := NewSubscriber("ws://127.0.0.1:1/feed", newRecordingReloader(), nil)
	sub.backoff = 50 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- sub.Run(ctx) }()

	time.Sleep(120 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
}
