// Package gomt5 is the public face of the library: one Client per terminal
// session, wired to the info and trade services, and a Manager for juggling
// several accounts at once.
package gomt5

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"gomt5/internal/connection"
	"gomt5/internal/domain"
	"gomt5/internal/info"
	"gomt5/internal/journal"
	"gomt5/internal/logging"
	"gomt5/internal/terminal"
	"gomt5/internal/trade"
)

// Options configure one terminal session.
type Options struct {
	// Terminal is the function surface to drive: a gateway client for a
	// live terminal, or a sim terminal for paper mode and tests.
	Terminal terminal.API

	// Name labels the session in logs and the execution journal.
	Name string

	// Path is the terminal executable, spawned when the first connect
	// attempt fails to reach a running terminal.
	Path     string
	Login    int64
	Password string
	Server   string
	Timeout  time.Duration
	Portable bool

	// KeepAlive leaves the terminal session open when the client closes.
	KeepAlive bool

	// Magic is the default expert advisor identifier stamped on orders.
	Magic int64

	Retries    int
	RetryDelay time.Duration

	// Journal, when set, records every execution.
	Journal *journal.Journal

	Logger *logrus.Logger
}

// Client is one connected terminal session.
type Client struct {
	name      string
	api       terminal.API
	conn      *connection.Manager
	keepAlive bool
	log       *logrus.Entry

	account    *info.Account
	symbols    *info.Symbol
	positions  *info.Position
	history    *info.History
	executor   *trade.Executor
	calculator *trade.Calculator
}

// Connect initializes the terminal session described by opts and returns a
// ready client. The connect loop retries a fixed number of times and spawns
// the terminal executable when one is configured but not running.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	name := opts.Name
	if name == "" {
		name = "default"
	}

	conn := connection.NewManager(opts.Terminal, connection.Options{
		Retries:    opts.Retries,
		RetryDelay: opts.RetryDelay,
		Logger:     logger,
	})
	err := conn.Initialize(ctx, terminal.InitOptions{
		Path:     opts.Path,
		Login:    opts.Login,
		Password: opts.Password,
		Server:   opts.Server,
		Timeout:  opts.Timeout,
		Portable: opts.Portable,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		name:      name,
		api:       opts.Terminal,
		conn:      conn,
		keepAlive: opts.KeepAlive,
		log:       logger.WithField("session", name),

		account:    info.NewAccount(conn, opts.Terminal, logger),
		symbols:    info.NewSymbol(conn, opts.Terminal, logger),
		positions:  info.NewPosition(conn, opts.Terminal, logger),
		history:    info.NewHistory(conn, opts.Terminal, logger),
		executor:   trade.NewExecutor(conn, opts.Terminal, logger, opts.Magic),
		calculator: trade.NewCalculator(conn, opts.Terminal, logger),
	}
	if opts.Journal != nil {
		c.executor.SetRecorder(opts.Journal, name)
	}
	return c, nil
}

// Name returns the session label.
func (c *Client) Name() string { return c.name }

// IsConnected reports whether the terminal session is up.
func (c *Client) IsConnected() bool { return c.conn.IsConnected() }

// Login switches the session to another trade account.
func (c *Client) Login(ctx context.Context, login int64, password, server string) error {
	return c.conn.Login(ctx, terminal.LoginOptions{
		Login:    login,
		Password: password,
		Server:   server,
	})
}

// TerminalInfo returns state and parameters of the connected terminal.
func (c *Client) TerminalInfo(ctx context.Context) (*domain.TerminalInfo, error) {
	return c.conn.TerminalInfo(ctx)
}

// Version returns the terminal version triple.
func (c *Client) Version(ctx context.Context) (*domain.Version, error) {
	return c.conn.Version(ctx)
}

// Account answers queries about the logged-in trade account.
func (c *Client) Account() *info.Account { return c.account }

// Symbols answers queries about the broker's symbol catalog and quotes.
func (c *Client) Symbols() *info.Symbol { return c.symbols }

// Positions answers queries about open positions and pending orders.
func (c *Client) Positions() *info.Position { return c.positions }

// History answers queries for bars, ticks and the trading history.
func (c *Client) History() *info.History { return c.history }

// Executor sends trade requests.
func (c *Client) Executor() *trade.Executor { return c.executor }

// Calculator answers pre-trade money questions.
func (c *Client) Calculator() *trade.Calculator { return c.calculator }

// Order starts a fluent trade request for one symbol.
//
//	res, err := client.Order("EURUSD").MarketBuy(0.1).WithSLTP(1.08, 1.10).Send(ctx)
func (c *Client) Order(symbol string) *trade.OrderBuilder {
	return trade.NewOrderBuilder(c.executor, symbol)
}

// Close shuts the terminal session down, unless the client was opened with
// KeepAlive.
func (c *Client) Close(ctx context.Context) error {
	if c.keepAlive {
		c.log.Debug("keep-alive set, leaving terminal session open")
		return nil
	}
	return c.conn.Shutdown(ctx)
}
