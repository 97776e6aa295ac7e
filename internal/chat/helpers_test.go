package chat

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeConn records outbound frames on a buffered channel.
type fakeConn struct {
	addr   string
	frames chan []byte

	mu      sync.Mutex
	closed  bool
	sendErr error
}

func newFakeConn(addr string) *fakeConn {
	return &fakeConn{addr: addr, frames: make(chan []byte, 512)}
}

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	select {
	case c.frames <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) RemoteAddr() string {
	return c.addr
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type rawEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func startHub(t *testing.T, opts ...Option) *Hub {
	t.Helper()
	h := NewHub(append([]Option{WithLogger(discardLogger())}, opts...)...)
	go h.Run()
	t.Cleanup(func() { _ = h.Shutdown(time.Second) })
	return h
}

func orderedPool(colors ...string) Option {
	return WithColorPool(NewColorPool(colors, nil))
}

func nextFrame(t *testing.T, c *fakeConn) []byte {
	t.Helper()
	select {
	case payload := <-c.frames:
		return payload
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for frame on %s", c.addr)
		return nil
	}
}

func nextEnvelope(t *testing.T, c *fakeConn) rawEnvelope {
	t.Helper()
	var env rawEnvelope
	require.NoError(t, json.Unmarshal(nextFrame(t, c), &env))
	return env
}

func nextMessage(t *testing.T, c *fakeConn) ChatEvent {
	t.Helper()
	env := nextEnvelope(t, c)
	require.Equal(t, TypeMessage, env.Type)
	var event ChatEvent
	require.NoError(t, json.Unmarshal(env.Data, &event))
	return event
}

func expectNoFrame(t *testing.T, c *fakeConn, wait time.Duration) {
	t.Helper()
	select {
	case payload := <-c.frames:
		t.Fatalf("unexpected frame on %s: %s", c.addr, payload)
	case <-time.After(wait):
	}
}

func mustStats(t *testing.T, h *Hub) Stats {
	t.Helper()
	stats, err := h.Stats()
	require.NoError(t, err)
	return stats
}

// join connects a client and claims name, consuming the color frame if one is sent.
func join(t *testing.T, h *Hub, name string) (*Session, *fakeConn) {
	t.Helper()
	conn := newFakeConn(name + "-addr")
	s, err := h.Connect(conn, "http://localhost:1337")
	require.NoError(t, err)
	require.NoError(t, h.Receive(s, TextFrame, []byte(name)))
	mustStats(t, h)
	drain(conn)
	return s, conn
}

func drain(c *fakeConn) {
	for {
		select {
		case <-c.frames:
		default:
			return
		}
	}
}
