package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var (
	// ErrHubClosed is returned once the hub has been shut down.
	ErrHubClosed = errors.New("chat: hub closed")
	// ErrConnClosed is returned by Conn.Send after the connection closed.
	ErrConnClosed = errors.New("chat: connection closed")
	// ErrSendBufferFull is returned by Conn.Send when the peer is not keeping up.
	ErrSendBufferFull = errors.New("chat: send buffer full")

	errNilConn    = errors.New("chat: nil connection")
	errNilSession = errors.New("chat: nil session")
)

// Conn is the transport's handle on one connection.
//
// Send must not block: it either queues payload as a single text frame or
// fails with ErrSendBufferFull or ErrConnClosed. Close must be idempotent.
type Conn interface {
	Send(payload []byte) error
	Close() error
	RemoteAddr() string
}

// FrameKind classifies an inbound frame. Only text frames carry chat data.
type FrameKind int

const (
	TextFrame FrameKind = iota + 1
	BinaryFrame
	ControlFrame
)

// Stats is a point-in-time view of the hub's shared state.
type Stats struct {
	Clients         int `json:"clients"`
	Registered      int `json:"registered"`
	History         int `json:"history"`
	AvailableColors int `json:"availableColors"`
	HeldColors      int `json:"heldColors"`
}

type inboundFrame struct {
	session *Session
	kind    FrameKind
	payload []byte
}

// Hub owns the registry, history and color pool and mutates them only from
// the Run goroutine. Connect, Receive and Disconnect hand events to that
// goroutine and return once it has taken them, so events from one
// connection are applied in the order they were submitted.
type Hub struct {
	registry *Registry
	history  *HistoryLog
	colors   *ColorPool
	logger   *slog.Logger
	now      func() time.Time

	historyLimit int

	connect    chan *Session
	inbound    chan inboundFrame
	disconnect chan *Session
	queries    chan chan Stats

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		if now != nil {
			h.now = now
		}
	}
}

// WithHistoryLimit sets how many recent messages are retained.
func WithHistoryLimit(limit int) Option {
	return func(h *Hub) {
		h.historyLimit = limit
	}
}

// WithColorPool replaces the default shuffled pool.
func WithColorPool(pool *ColorPool) Option {
	return func(h *Hub) {
		if pool != nil {
			h.colors = pool
		}
	}
}

// NewHub creates a hub. Call Run in its own goroutine before connecting.
func NewHub(opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		registry:     NewRegistry(),
		logger:       slog.Default(),
		now:          time.Now,
		historyLimit: DefaultHistoryLimit,
		connect:      make(chan *Session),
		inbound:      make(chan inboundFrame),
		disconnect:   make(chan *Session),
		queries:      make(chan chan Stats),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.history = NewHistoryLog(h.historyLimit)
	if h.colors == nil {
		h.colors = NewShuffledColorPool(DefaultColors)
	}
	return h
}

// Run processes hub events until Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return

		case s := <-h.connect:
			h.handleConnect(s)

		case f := <-h.inbound:
			h.handleFrame(f)

		case s := <-h.disconnect:
			h.handleDisconnect(s)

		case reply := <-h.queries:
			reply <- h.stats()
		}
	}
}

// Connect creates a session for conn and registers it. If history is not
// empty it is queued on conn before Connect returns.
func (h *Hub) Connect(conn Conn, origin string) (*Session, error) {
	if conn == nil {
		return nil, errNilConn
	}
	s := newSession(conn, origin)
	select {
	case h.connect <- s:
		return s, nil
	case <-h.ctx.Done():
		return nil, ErrHubClosed
	}
}

// Receive hands an inbound frame from s to the hub.
func (h *Hub) Receive(s *Session, kind FrameKind, payload []byte) error {
	if s == nil {
		return errNilSession
	}
	select {
	case h.inbound <- inboundFrame{session: s, kind: kind, payload: payload}:
		return nil
	case <-h.ctx.Done():
		return ErrHubClosed
	}
}

// Disconnect closes s and releases what it holds. Repeated calls are no-ops.
func (h *Hub) Disconnect(s *Session) error {
	if s == nil {
		return errNilSession
	}
	select {
	case h.disconnect <- s:
		return nil
	case <-h.ctx.Done():
		return ErrHubClosed
	}
}

// Stats returns a consistent snapshot of the hub's counters.
func (h *Hub) Stats() (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.queries <- reply:
		return <-reply, nil
	case <-h.ctx.Done():
		return Stats{}, ErrHubClosed
	}
}

// Shutdown stops Run, closing every live connection, and waits for it to
// return or for timeout to pass.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.logger.Info("initiating hub shutdown")
	h.cancel()

	select {
	case <-h.done:
		h.logger.Info("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.logger.Warn("hub shutdown timeout reached")
		return context.DeadlineExceeded
	}
}

func (h *Hub) handleConnect(s *Session) {
	h.registry.Add(s)
	h.logger.Info("connection accepted",
		"session", s.id,
		"origin", s.Origin(),
		"remote", s.RemoteAddr(),
		"clients", h.registry.Len())

	if h.history.Len() == 0 {
		return
	}
	payload, err := encodeEnvelope(TypeHistory, h.history.Snapshot())
	if err != nil {
		h.logger.Error("dropping history frame", "session", s.id, "error", err)
		return
	}
	h.deliver(s, payload)
}

func (h *Hub) handleFrame(f inboundFrame) {
	if f.kind != TextFrame {
		h.logger.Debug("ignoring non-text frame", "session", f.session.id, "kind", f.kind)
		return
	}
	if !h.registry.Contains(f.session) {
		return
	}

	switch f.session.State() {
	case StateUnregistered:
		h.register(f.session, string(f.payload))
	case StateRegistered:
		h.publish(f.session, string(f.payload))
	}
}

// register treats the first text frame as the display name and assigns a color.
// An exhausted pool leaves the session registered without a color.
func (h *Hub) register(s *Session, raw string) {
	name := Sanitize(raw)
	color, ok := h.colors.Allocate()
	s.claim(name, color)

	if !ok {
		h.logger.Warn("color pool exhausted, registering without color",
			"session", s.id, "name", name)
		return
	}

	h.logger.Info("user registered", "session", s.id, "name", name, "color", color)

	payload, err := encodeEnvelope(TypeColor, color)
	if err != nil {
		h.logger.Error("dropping color frame", "session", s.id, "error", err)
		return
	}
	h.deliver(s, payload)
}

// publish records a chat message and fans it out to every live session,
// the sender included. Append and fan-out run in the same loop iteration
// so every recipient sees messages in history order.
func (h *Hub) publish(s *Session, raw string) {
	event := ChatEvent{
		Time:   h.now().UnixMilli(),
		Text:   Sanitize(raw),
		Author: s.Name(),
		Color:  s.Color(),
	}
	h.logger.Info("received message", "session", s.id, "author", event.Author, "text", raw)

	h.history.Append(event)

	payload, err := encodeEnvelope(TypeMessage, event)
	if err != nil {
		h.logger.Error("dropping message frame", "session", s.id, "error", err)
		return
	}

	recipients := h.registry.All()
	h.logger.Debug("broadcasting message", "recipients", len(recipients))
	for _, r := range recipients {
		h.deliver(r, payload)
	}
}

// deliver sends payload to one session. Failures are logged and never
// affect other recipients.
func (h *Hub) deliver(s *Session, payload []byte) {
	err := s.conn.Send(payload)
	switch {
	case err == nil:
	case errors.Is(err, ErrConnClosed):
		h.logger.Debug("skipping closed connection", "session", s.id)
	default:
		h.logger.Warn("dropping frame for slow client",
			"session", s.id, "remote", s.RemoteAddr(), "error", err)
	}
}

func (h *Hub) handleDisconnect(s *Session) {
	if !h.registry.Remove(s) {
		return
	}
	h.release(s)
	h.logger.Info("peer disconnected",
		"session", s.id,
		"name", s.Name(),
		"origin", s.Origin(),
		"remote", s.RemoteAddr(),
		"clients", h.registry.Len())
}

// release closes s and returns its color to the pool if it ever got one.
func (h *Hub) release(s *Session) {
	color, wasRegistered := s.close()
	if wasRegistered && color != "" {
		h.colors.Release(color)
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, ErrConnClosed) {
		h.logger.Debug("closing connection", "session", s.id, "error", err)
	}
}

func (h *Hub) closeAll() {
	sessions := h.registry.All()
	h.logger.Info("shutting down all client connections", "clients", len(sessions))
	for _, s := range sessions {
		h.registry.Remove(s)
		h.release(s)
	}
}

func (h *Hub) stats() Stats {
	return Stats{
		Clients:         h.registry.Len(),
		Registered:      h.registry.Registered(),
		History:         h.history.Len(),
		AvailableColors: h.colors.Available(),
		HeldColors:      h.colors.Held(),
	}
}
