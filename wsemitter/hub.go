package wsemitter

import (
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// hubConn serializes the writes of a single websocket connection
type hubConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *hubConn) write(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(frame)
}

// Hub is an http.Handler that upgrades requests to websocket connections and
// publishes firings to every connected client
type Hub struct {
	upgrader websocket.Upgrader
	logger   logrus.FieldLogger

	mu     sync.Mutex
	conns  map[*hubConn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// HubOpt allows clients to tweak the behavior of a Hub
type HubOpt func(*Hub)

// WithHubLogger sets the logger used to report connection failures
func WithHubLogger(ll logrus.FieldLogger) HubOpt {
	return func(h *Hub) {
		if ll != nil {
			h.logger = ll
		}
	}
}

// WithCheckOrigin sets the origin check of the websocket upgrade; by default
// every origin is accepted
func WithCheckOrigin(checkFn func(*http.Request) bool) HubOpt {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = checkFn
	}
}

// NewHub returns a Hub without connections
func NewHub(opts ...HubOpt) *Hub {
	log := logrus.New()
	log.Out = io.Discard

	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: log,
		conns:  make(map[*hubConn]struct{}),
	}
	for _, optFn := range opts {
		optFn(h)
	}
	return h
}

// ServeHTTP upgrades the request and keeps the connection registered until the
// client goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	hc := &hubConn{conn: conn}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.conns[hc] = struct{}{}
	h.wg.Add(1)
	h.mu.Unlock()

	defer h.wg.Done()
	defer h.drop(hc)

	h.logger.WithField("wsemitter.remote", r.RemoteAddr).Debug("client connected")

	// clients never send frames, reading only detects the connection going
	// away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(hc *hubConn) {
	h.mu.Lock()
	delete(h.conns, hc)
	h.mu.Unlock()
	_ = hc.conn.Close()
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Publish sends a firing to every connected client. Clients that fail to
// receive it are disconnected, their errors are joined in the result.
func (h *Hub) Publish(channel string, args ...any) error {
	if args == nil {
		args = []any{}
	}
	frame := Frame{Channel: channel, Args: args}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	conns := make([]*hubConn, 0, len(h.conns))
	for hc := range h.conns {
		conns = append(conns, hc)
	}
	h.mu.Unlock()

	var errs []error
	for _, hc := range conns {
		if err := hc.write(frame); err != nil {
			h.logger.WithError(err).Warn("websocket publish failed")
			errs = append(errs, err)
			// the read loop of the connection drops it once closed
			_ = hc.conn.Close()
		}
	}
	return errors.Join(errs...)
}

// Close disconnects every client and waits for their handlers to finish
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for hc := range h.conns {
		_ = hc.conn.Close()
	}
	h.mu.Unlock()
	h.wg.Wait()
}
