package gomt5

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Manager holds named terminal sessions and tracks which one is current.
// All methods are safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	clients map[string]*Client
	current string
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{clients: make(map[string]*Client)}
}

// Add connects a new session under opts.Name and registers it. The first
// session added becomes the current one.
func (m *Manager) Add(ctx context.Context, opts Options) (*Client, error) {
	if opts.Name == "" {
		return nil, errors.New("session name is required")
	}

	m.mu.Lock()
	_, exists := m.clients[opts.Name]
	m.mu.Unlock()
	if exists {
		return nil, errors.Errorf("session %q already exists", opts.Name)
	}

	client, err := Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting session %q", opts.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.clients[opts.Name]; exists {
		// Lost the race to a concurrent Add with the same name.
		client.Close(ctx)
		return nil, errors.Errorf("session %q already exists", opts.Name)
	}
	m.clients[opts.Name] = client
	if m.current == "" {
		m.current = opts.Name
	}
	return client, nil
}

// Remove closes a session and drops it. When the removed session was
// current, another one becomes current if any remain.
func (m *Manager) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	client, ok := m.clients[name]
	if ok {
		delete(m.clients, name)
		if m.current == name {
			m.current = ""
			for n := range m.clients {
				m.current = n
				break
			}
		}
	}
	m.mu.Unlock()

	if !ok {
		return errors.Errorf("session %q not found", name)
	}
	return client.Close(ctx)
}

// Switch makes the named session current.
func (m *Manager) Switch(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[name]; !ok {
		return errors.Errorf("session %q not found", name)
	}
	m.current = name
	return nil
}

// Get returns the named session.
func (m *Manager) Get(name string) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	client, ok := m.clients[name]
	if !ok {
		return nil, errors.Errorf("session %q not found", name)
	}
	return client, nil
}

// Current returns the current session.
func (m *Manager) Current() (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == "" {
		return nil, errors.New("no sessions registered")
	}
	return m.clients[m.current], nil
}

// List returns the registered session names, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForEach runs fn on every session in name order and returns the failures
// per session. Disconnected sessions are skipped with an error entry instead
// of being visited. An empty map means every session succeeded.
func (m *Manager) ForEach(fn func(name string, client *Client) error) map[string]error {
	m.mu.Lock()
	snapshot := make(map[string]*Client, len(m.clients))
	for name, client := range m.clients {
		snapshot[name] = client
	}
	m.mu.Unlock()

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	failures := make(map[string]error)
	for _, name := range names {
		client := snapshot[name]
		if !client.IsConnected() {
			failures[name] = errors.Errorf("session %q is not connected", name)
			continue
		}
		if err := fn(name, client); err != nil {
			failures[name] = err
		}
	}
	return failures
}

// ShutdownAll closes every session and empties the manager. Close errors
// are collected; the last one is returned.
func (m *Manager) ShutdownAll(ctx context.Context) error {
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[string]*Client)
	m.current = ""
	m.mu.Unlock()

	var lastErr error
	for name, client := range clients {
		if err := client.Close(ctx); err != nil {
			lastErr = errors.Wrapf(err, "closing session %q", name)
		}
	}
	return lastErr
}
