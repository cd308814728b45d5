package wsemitter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/capatazlib/go-evassert/internal/ev"
	"github.com/capatazlib/go-evassert/wsemitter"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreCurrent())
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func startHub(t *testing.T) (*wsemitter.Hub, *httptest.Server) {
	t.Helper()
	hub := wsemitter.NewHub()
	server := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return hub, server
}

func dial(t *testing.T, hub *wsemitter.Hub, server *httptest.Server) *wsemitter.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	before := hub.Clients()
	client, err := wsemitter.Dial(ctx, wsURL(server))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.Eventually(t, func() bool { return hub.Clients() > before }, time.Second, time.Millisecond)
	return client
}

func TestClientFiresPublishedFrames(t *testing.T) {
	hub, server := startHub(t)
	client := dial(t, hub, server)

	go func() {
		for client.ListenerCount("foo") == 0 {
			time.Sleep(time.Millisecond)
		}
		_ = hub.Publish("bar", "nope")
		_ = hub.Publish("foo", "baz", 1)
	}()

	// JSON numbers are received as float64
	err := ev.NewAcquirer(ev.WithTimeout(time.Second)).AssertNth(
		context.Background(), client, "foo", 1, ev.ExpectValues("to equal", "baz", float64(1)),
	)
	assert.NoError(t, err)
	assert.Equal(t, 0, client.ListenerCount("foo"))
}

func TestHubPublishesToEveryClient(t *testing.T) {
	hub, server := startHub(t)
	first := dial(t, hub, server)
	second := dial(t, hub, server)
	require.Equal(t, 2, hub.Clients())

	acq := ev.NewAcquirer()
	firstLs, err := acq.Capture(first, "foo")
	require.NoError(t, err)
	defer firstLs.Stop()
	secondLs, err := acq.Capture(second, "foo")
	require.NoError(t, err)
	defer secondLs.Stop()

	require.NoError(t, hub.Publish("foo"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, ls := range []*ev.LiveSet{firstLs, secondLs} {
		rs, err := ls.WaitFor(ctx, 1)
		require.NoError(t, err)
		r, _ := rs.Last()
		assert.Equal(t, 0, r.Len())
	}
}

func TestClientDropsMalformedFrames(t *testing.T) {
	// a raw endpoint, to write frames a Hub would never produce
	upgrader := websocket.Upgrader{}
	readyCh := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-readyCh
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"channel":"","args":[]}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"channel":"foo","args":"nope"}`))
		_ = conn.WriteJSON(wsemitter.Frame{Channel: "foo", Args: []any{"ok"}})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client, err := wsemitter.Dial(context.Background(), wsURL(server))
	require.NoError(t, err)
	defer client.Close()

	ls, err := ev.NewAcquirer().Capture(client, "foo")
	require.NoError(t, err)
	defer ls.Stop()
	close(readyCh)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = ls.WaitFor(ctx, 1)
	require.NoError(t, err)
	assert.NoError(t, ls.AssertEvent(ctx, 1, ev.ExpectValues("to equal", "ok")))
}

func TestClientClose(t *testing.T) {
	hub, server := startHub(t)
	client := dial(t, hub, server)

	require.NoError(t, client.Close())
	assert.NoError(t, client.Close(), "close is idempotent")

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("read loop did not finish")
	}
	assert.NoError(t, client.Err())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, time.Millisecond)
}

func TestHubClose(t *testing.T) {
	hub, server := startHub(t)
	client := dial(t, hub, server)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())
	assert.True(t, errors.Is(hub.Publish("foo"), wsemitter.ErrClosed))

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("client did not notice the hub going away")
	}
}
