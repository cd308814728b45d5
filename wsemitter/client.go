package wsemitter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/capatazlib/go-evassert/emitter"
	"github.com/capatazlib/go-evassert/internal/ev"
)

// Client is a Subscribable that fires the frames read from a websocket
// connection
type Client struct {
	conn   *websocket.Conn
	em     *emitter.Emitter
	logger logrus.FieldLogger

	closeOnce sync.Once
	doneCh    chan struct{}
	err       error
}

// ClientOpt allows clients to tweak the behavior of a Client
type ClientOpt func(*clientSettings)

type clientSettings struct {
	logger logrus.FieldLogger
	header http.Header
	dialer *websocket.Dialer
}

// WithClientLogger sets the logger used to report malformed frames
func WithClientLogger(ll logrus.FieldLogger) ClientOpt {
	return func(s *clientSettings) {
		if ll != nil {
			s.logger = ll
		}
	}
}

// WithHeader sets the HTTP headers of the websocket handshake
func WithHeader(header http.Header) ClientOpt {
	return func(s *clientSettings) {
		s.header = header
	}
}

// Dial connects to a websocket endpoint that writes frames (e.g. a Hub) and
// starts reading them
func Dial(ctx context.Context, url string, opts ...ClientOpt) (*Client, error) {
	log := logrus.New()
	log.Out = io.Discard

	settings := clientSettings{logger: log, dialer: websocket.DefaultDialer}
	for _, optFn := range opts {
		optFn(&settings)
	}

	conn, _, err := settings.dialer.DialContext(ctx, url, settings.header)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:   conn,
		em:     emitter.New(),
		logger: settings.logger.WithField("wsemitter.url", url),
		doneCh: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.doneCh)
	for {
		var frame Frame
		err := c.conn.ReadJSON(&frame)
		if err == nil {
			if frame.Channel == "" {
				c.logger.Warn("frame without channel dropped")
				continue
			}
			c.em.Emit(frame.Channel, frame.Args...)
			continue
		}

		if isDecodeError(err) {
			c.logger.WithError(err).Warn("malformed frame dropped")
			continue
		}
		if !isClosedError(err) {
			c.logger.WithError(err).Debug("websocket connection lost")
			c.err = err
		}
		return
	}
}

// Subscribe registers the listener on a frame channel
func (c *Client) Subscribe(channel string, l *ev.Listener) {
	c.em.Subscribe(channel, l)
}

// Unsubscribe removes the listener from a frame channel
func (c *Client) Unsubscribe(channel string, l *ev.Listener) {
	c.em.Unsubscribe(channel, l)
}

// ListenerCount returns the number of listeners registered on a channel
func (c *Client) ListenerCount(channel string) int {
	return c.em.ListenerCount(channel)
}

// Done is closed when the connection stops being read
func (c *Client) Done() <-chan struct{} {
	return c.doneCh
}

// Err returns the error that stopped the connection, nil when it was closed
// normally. Only valid after Done is closed.
func (c *Client) Err() error {
	<-c.doneCh
	return c.err
}

// Close closes the connection and waits for the read loop to finish
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, deadline())
		err = c.conn.Close()
		<-c.doneCh
	})
	return err
}

func deadline() time.Time {
	return time.Now().Add(writeTimeout)
}

// isDecodeError reports errors of a single frame; the connection remains
// usable after them
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

func isClosedError(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, net.ErrClosed)
}
