package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestWatchDeliversPositions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for i := 0; i < 3; i++ {
			if err := conn.WriteJSON(Position{X: float64(i), Y: 1, Z: -2, State: "RUN"}); err != nil {
				return
			}
		}
		// Hold the connection until the client goes away.
		conn.ReadMessage()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := New(wsURL(ts), nil)
	ch := c.Watch(ctx)

	var got []Position
	for len(got) < 3 {
		select {
		case p := <-ch:
			got = append(got, p)
		case <-ctx.Done():
			t.Fatalf("timed out after %d samples", len(got))
		}
	}
	if got[2].X != 2 || got[2].State != "RUN" {
		t.Errorf("unexpected sample: %+v", got[2])
	}
	if got[0].Received.IsZero() {
		t.Errorf("sample not stamped with receive time")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return // closed as expected
			}
		case <-deadline:
			t.Fatal("channel did not close after cancel")
		}
	}
}

func TestWatchReconnects(t *testing.T) {
	var conns atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := conns.Add(1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if err := conn.WriteJSON(Position{Line: int(n)}); err != nil {
			conn.Close()
			return
		}
		if n == 1 {
			conn.Close() // drop the first connection
			return
		}
		defer conn.Close()
		conn.ReadMessage()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := New(wsURL(ts), nil)
	c.initialBackoff = 10 * time.Millisecond
	c.maxBackoff = 50 * time.Millisecond
	ch := c.Watch(ctx)

	seen := map[int]bool{}
	for len(seen) < 2 {
		select {
		case p := <-ch:
			seen[p.Line] = true
		case <-ctx.Done():
			t.Fatalf("timed out waiting for reconnect, saw %v", seen)
		}
	}
	if conns.Load() < 2 {
		t.Errorf("expected at least 2 connections, got %d", conns.Load())
	}
}
