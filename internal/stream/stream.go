// Package stream consumes the gateway's WebSocket tick feed and delivers
// quotes for subscribed symbols on a channel.
package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"gomt5/internal/domain"
	"gomt5/internal/logging"
)

const defaultReconnectDelay = 2 * time.Second

// TickEvent is one quote delivered by the feed.
type TickEvent struct {
	Symbol string      `json:"symbol"`
	Tick   domain.Tick `json:"tick"`
}

// subscribeMsg is the frame sent to manage the symbol set.
type subscribeMsg struct {
	Op      string   `json:"op"` // "subscribe" or "unsubscribe"
	Symbols []string `json:"symbols"`
}

// feedMsg is the frame received from the gateway.
type feedMsg struct {
	Type   string          `json:"type"`
	Symbol string          `json:"symbol"`
	Data   json.RawMessage `json:"data"`
}

// Options configure the feed client.
type Options struct {
	URL string
	// ReconnectDelay is the fixed wait between reconnect attempts.
	ReconnectDelay time.Duration
	// Buffer is the tick channel capacity. Ticks are dropped when the
	// consumer falls behind.
	Buffer int
	Logger *logrus.Logger
}

// Client maintains one WebSocket connection to the gateway tick feed.
//
// Gorilla/websocket supports one concurrent reader and one concurrent
// writer, so all writes are serialized through mu.
type Client struct {
	opts  Options
	log   *logrus.Entry
	ticks chan TickEvent
	done  chan struct{}

	mu      sync.Mutex
	conn    *websocket.Conn
	symbols map[string]bool
}

func New(opts Options) *Client {
	if opts.ReconnectDelay == 0 {
		opts.ReconnectDelay = defaultReconnectDelay
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 1024
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Client{
		opts:    opts,
		log:     opts.Logger.WithField("component", "stream"),
		ticks:   make(chan TickEvent, opts.Buffer),
		done:    make(chan struct{}),
		symbols: make(map[string]bool),
	}
}

// Connect dials the feed and starts the read loop. The loop reconnects
// after a fixed delay until ctx is cancelled.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.dial(ctx); err != nil {
		return err
	}
	go c.runLoop(ctx)
	return nil
}

// Ticks is the channel quotes are delivered on. It is closed when the
// client stops.
func (c *Client) Ticks() <-chan TickEvent {
	return c.ticks
}

// Subscribe adds symbols to the feed. Safe to call from any goroutine; on
// reconnect the whole symbol set is subscribed again.
func (c *Client) Subscribe(symbols ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var added []string
	for _, s := range symbols {
		if !c.symbols[s] {
			c.symbols[s] = true
			added = append(added, s)
		}
	}
	if len(added) == 0 || c.conn == nil {
		return nil
	}
	return c.conn.WriteJSON(subscribeMsg{Op: "subscribe", Symbols: added})
}

// Unsubscribe removes symbols from the feed.
func (c *Client) Unsubscribe(symbols ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []string
	for _, s := range symbols {
		if c.symbols[s] {
			delete(c.symbols, s)
			removed = append(removed, s)
		}
	}
	if len(removed) == 0 || c.conn == nil {
		return nil
	}
	return c.conn.WriteJSON(subscribeMsg{Op: "unsubscribe", Symbols: removed})
}

// Done is closed when the read loop has fully stopped.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) dial(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.opts.URL, nil)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

func (c *Client) runLoop(ctx context.Context) {
	defer close(c.done)
	defer close(c.ticks)

	for {
		c.resubscribeAll()
		c.readLoop(ctx)

		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.opts.ReconnectDelay):
		}

		if err := c.dial(ctx); err != nil {
			c.log.WithError(err).Warn("feed reconnect failed")
			select {
			case <-ctx.Done():
				return
			default:
			}
			continue
		}
		c.log.Info("feed reconnected")
	}
}

func (c *Client) resubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || len(c.symbols) == 0 {
		return
	}
	all := make([]string, 0, len(c.symbols))
	for s := range c.symbols {
		all = append(all, s)
	}
	if err := c.conn.WriteJSON(subscribeMsg{Op: "subscribe", Symbols: all}); err != nil {
		c.log.WithError(err).Warn("resubscribe failed")
	}
}

func (c *Client) readLoop(ctx context.Context) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	// A blocked read only returns when the connection closes, so a watcher
	// closes it on cancellation.
	watch := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watch:
		}
	}()
	defer close(watch)

	for {
		var msg feedMsg
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				c.log.WithError(err).Warn("feed read failed")
			}
			return
		}
		if msg.Type != "tick" {
			continue
		}

		var tick domain.Tick
		if err := json.Unmarshal(msg.Data, &tick); err != nil {
			c.log.WithError(err).Warn("bad tick frame")
			continue
		}
		tick.FillTimes()

		select {
		case c.ticks <- TickEvent{Symbol: msg.Symbol, Tick: tick}:
		default:
			// Consumer is behind; drop rather than stall the feed.
		}
	}
}
