package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomt5/internal/domain"
)

// feedServer accepts one WebSocket connection and replays canned ticks for
// every symbol it sees subscribed.
type feedServer struct {
	*httptest.Server
	subs chan subscribeMsg
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()
	fs := &feedServer{subs: make(chan subscribeMsg, 16)}
	upgrader := websocket.Upgrader{}

	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var msg subscribeMsg
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			fs.subs <- msg
			if msg.Op != "subscribe" {
				continue
			}
			for _, sym := range msg.Symbols {
				err := conn.WriteJSON(map[string]any{
					"type":   "tick",
					"symbol": sym,
					"data": domain.Tick{
						Time:    1700000000,
						TimeMsc: 1700000000250,
						Bid:     1.0850,
						Ask:     1.0852,
					},
				})
				if err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestSubscribeDeliversTicks(t *testing.T) {
	fs := newFeedServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(Options{URL: wsURL(fs.Server), ReconnectDelay: time.Hour})
	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Subscribe("EURUSD"))

	select {
	case ev := <-c.Ticks():
		assert.Equal(t, "EURUSD", ev.Symbol)
		assert.Equal(t, 1.0850, ev.Tick.Bid)
		assert.False(t, ev.Tick.TimeDT.IsZero())
		assert.Equal(t, int64(1700000000250), ev.Tick.TimeMsc)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick delivered")
	}
}

func TestSubscribeDeduplicates(t *testing.T) {
	fs := newFeedServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(Options{URL: wsURL(fs.Server), ReconnectDelay: time.Hour})
	require.NoError(t, c.Connect(ctx))

	require.NoError(t, c.Subscribe("EURUSD", "GBPUSD"))
	msg := <-fs.subs
	assert.ElementsMatch(t, []string{"EURUSD", "GBPUSD"}, msg.Symbols)

	// Already-subscribed symbols do not produce another frame.
	require.NoError(t, c.Subscribe("EURUSD"))
	select {
	case msg := <-fs.subs:
		t.Fatalf("unexpected subscribe frame: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnsubscribeSendsFrame(t *testing.T) {
	fs := newFeedServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(Options{URL: wsURL(fs.Server), ReconnectDelay: time.Hour})
	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Subscribe("EURUSD"))
	<-fs.subs

	require.NoError(t, c.Unsubscribe("EURUSD"))
	msg := <-fs.subs
	assert.Equal(t, "unsubscribe", msg.Op)
	assert.Equal(t, []string{"EURUSD"}, msg.Symbols)

	// Unsubscribing an unknown symbol is a no-op.
	require.NoError(t, c.Unsubscribe("XAUUSD"))
	select {
	case msg := <-fs.subs:
		t.Fatalf("unexpected frame: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelInterruptsSilentPeer(t *testing.T) {
	fs := newFeedServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	c := New(Options{URL: wsURL(fs.Server), ReconnectDelay: 10 * time.Millisecond})
	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Subscribe("EURUSD"))
	<-c.Ticks()

	// The peer sends nothing more. Cancellation must still stop the loop,
	// without any help from the server side.
	cancel()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation did not interrupt the blocked read")
	}
}

func TestCancelStopsLoopAndClosesTicks(t *testing.T) {
	fs := newFeedServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	c := New(Options{URL: wsURL(fs.Server), ReconnectDelay: 10 * time.Millisecond})
	require.NoError(t, c.Connect(ctx))

	cancel()

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not stop")
	}

	_, open := <-c.Ticks()
	// Channel may drain buffered ticks first; wait for close.
	for open {
		_, open = <-c.Ticks()
	}
}
