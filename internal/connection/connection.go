// Package connection manages the terminal session: initialization with a
// fixed-count retry loop, account login, shutdown, and the connected flag
// every query layer checks before touching the terminal.
package connection

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gomt5/internal/domain"
	"gomt5/internal/logging"
	"gomt5/internal/terminal"
	"gomt5/internal/util"
)

const (
	defaultRetries    = 3
	defaultRetryDelay = 2 * time.Second
	defaultSpawnWait  = 5 * time.Second
)

// Options tune the retry loop and terminal process spawning.
type Options struct {
	Retries    int
	RetryDelay time.Duration
	// SpawnWait is how long to wait for a freshly spawned terminal before
	// the next connect attempt.
	SpawnWait time.Duration
	// Spawn launches the terminal executable. Defaults to starting the
	// process detached; overridable in tests.
	Spawn  func(path string) error
	Logger *logrus.Logger
}

// Manager owns the connected/disconnected state of one terminal session.
type Manager struct {
	api  terminal.API
	log  *logrus.Entry
	opts Options

	mu        sync.Mutex
	connected bool
	login     int64
	server    string
}

// NewManager creates a connection manager over the given terminal API.
func NewManager(api terminal.API, opts Options) *Manager {
	if opts.Retries <= 0 {
		opts.Retries = defaultRetries
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.SpawnWait == 0 {
		opts.SpawnWait = defaultSpawnWait
	}
	if opts.Spawn == nil {
		opts.Spawn = spawnProcess
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Manager{
		api:  api,
		log:  opts.Logger.WithField("component", "connection"),
		opts: opts,
	}
}

// Initialize establishes the terminal session, retrying a fixed number of
// times with a fixed delay. When the first attempt fails with an IPC send
// failure and a terminal path is configured, the terminal process is spawned
// and given SpawnWait to come up before the next attempt.
func (m *Manager) Initialize(ctx context.Context, opts terminal.InitOptions) error {
	err := m.api.Initialize(ctx, opts)
	if err == nil {
		m.markConnected(opts)
		return nil
	}
	lastErr := err

	if terminal.ErrorCode(err) == domain.CodeIPCSendFailed && opts.Path != "" {
		m.log.WithField("path", opts.Path).Info("terminal not running, spawning")
		if spawnErr := m.opts.Spawn(opts.Path); spawnErr != nil {
			m.log.WithError(spawnErr).Warn("spawning terminal failed")
		} else if waitErr := sleepCtx(ctx, m.opts.SpawnWait); waitErr != nil {
			return waitErr
		}
	} else {
		m.log.WithError(err).Warnf("initialize failed (attempt 1/%d)", m.opts.Retries)
		if waitErr := sleepCtx(ctx, m.opts.RetryDelay); waitErr != nil {
			return waitErr
		}
	}

	if m.opts.Retries > 1 {
		attempt := 1
		err = util.Retry(ctx, m.opts.Retries-1, m.opts.RetryDelay, func() error {
			attempt++
			if err := m.api.Initialize(ctx, opts); err != nil {
				lastErr = err
				m.log.WithError(err).Warnf("initialize failed (attempt %d/%d)", attempt, m.opts.Retries)
				return err
			}
			return nil
		})
		if err == nil {
			m.markConnected(opts)
			return nil
		}
		if err == ctx.Err() {
			return err
		}
	}

	if te, ok := asTerminalError(lastErr); ok {
		return &terminal.ConnectionError{Err: te}
	}
	return &terminal.ConnectionError{Err: terminal.NewError(0, lastErr.Error())}
}

func (m *Manager) markConnected(opts terminal.InitOptions) {
	m.mu.Lock()
	m.connected = true
	m.login = opts.Login
	m.server = opts.Server
	m.mu.Unlock()
	m.log.Info("connected to terminal")
}

// Login switches the initialized terminal to another trading account.
func (m *Manager) Login(ctx context.Context, opts terminal.LoginOptions) error {
	if !m.IsConnected() {
		return &terminal.ConnectionError{Err: terminal.NewError(0, "terminal not initialized, call Initialize first")}
	}

	if err := m.api.Login(ctx, opts); err != nil {
		m.log.WithError(err).Errorf("login failed for account #%d", opts.Login)
		return err
	}

	m.mu.Lock()
	m.login = opts.Login
	if opts.Server != "" {
		m.server = opts.Server
	}
	m.mu.Unlock()
	m.log.Infof("logged in to account #%d", opts.Login)
	return nil
}

// Shutdown closes the terminal session. It is a no-op when not connected.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	wasConnected := m.connected
	m.connected = false
	m.mu.Unlock()

	if !wasConnected {
		return nil
	}
	if err := m.api.Shutdown(ctx); err != nil {
		return err
	}
	m.log.Info("disconnected from terminal")
	return nil
}

// IsConnected reports whether Initialize has succeeded and Shutdown has not
// been called since.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// LoginNumber returns the account number of the current session, 0 when unknown.
func (m *Manager) LoginNumber() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.login
}

// Server returns the trade server of the current session.
func (m *Manager) Server() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.server
}

// TerminalInfo returns the terminal snapshot; it errors when disconnected.
func (m *Manager) TerminalInfo(ctx context.Context) (*domain.TerminalInfo, error) {
	if !m.IsConnected() {
		return nil, terminal.ErrNotConnected
	}
	return m.api.TerminalInfo(ctx)
}

// Version returns the terminal version; it errors when disconnected.
func (m *Manager) Version(ctx context.Context) (*domain.Version, error) {
	if !m.IsConnected() {
		return nil, terminal.ErrNotConnected
	}
	return m.api.Version(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func asTerminalError(err error) (*terminal.Error, bool) {
	if err == nil {
		return nil, false
	}
	code := terminal.ErrorCode(err)
	if code == 0 {
		return nil, false
	}
	return terminal.NewError(code, err.Error()), true
}
