// Package feed streams live machine position readouts from an agent
// endpoint over WebSocket. The machine side pushes JSON messages; this
// client forwards them on a channel and quietly reconnects when the
// connection drops.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const handshakeTimeout = 10 * time.Second

// Position is one DRO sample pushed by the machine agent.
type Position struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Feed    float64 `json:"feed,omitempty"`    // actual feed in mm/min
	Spindle float64 `json:"spindle,omitempty"` // spindle speed in rpm
	State   string  `json:"state,omitempty"`   // controller state, e.g. RUN or IDLE
	Line    int     `json:"line,omitempty"`    // executing NC block number

	// Received is stamped locally when the sample arrives.
	Received time.Time `json:"-"`
}

// Client connects to a position feed endpoint.
type Client struct {
	url    string
	logger *slog.Logger

	// Reconnect backoff bounds.
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New creates a feed client for a ws:// or wss:// endpoint.
func New(url string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:            url,
		logger:         logger,
		initialBackoff: time.Second,
		maxBackoff:     30 * time.Second,
	}
}

// Watch delivers position samples until the context ends, at which point
// the returned channel closes. Connection failures are logged and retried
// with exponential backoff; they never surface to the reader.
func (c *Client) Watch(ctx context.Context) <-chan Position {
	out := make(chan Position, 16)

	go func() {
		defer close(out)

		backoff := c.initialBackoff
		for {
			n, err := c.stream(ctx, out)
			if ctx.Err() != nil {
				return
			}
			if n > 0 {
				// The connection worked before it dropped; start over fresh.
				backoff = c.initialBackoff
			}
			c.logger.Warn("position feed disconnected",
				"url", c.url, "error", err, "retry_in", backoff)

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.maxBackoff {
				backoff = c.maxBackoff
			}
		}
	}()

	return out
}

// stream runs one connection and reports how many samples it delivered.
func (c *Client) stream(ctx context.Context, out chan<- Position) (int, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("websocket connect: %w", err)
	}

	// Track connection state for proper cleanup
	var mu sync.Mutex
	closed := false
	closeConn := func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			conn.Close()
		}
	}
	defer closeConn()

	// Close the connection when the context ends so ReadJSON unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-done:
		}
	}()

	c.logger.Info("position feed connected", "url", c.url)

	n := 0
	for {
		var pos Position
		if err := conn.ReadJSON(&pos); err != nil {
			if ctx.Err() != nil {
				return n, ctx.Err()
			}
			return n, fmt.Errorf("read position: %w", err)
		}
		pos.Received = time.Now()

		select {
		case out <- pos:
			n++
		case <-ctx.Done():
			return n, ctx.Err()
		}
	}
}
